package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
	"github.com/ironsheep/image-edit-mcp/internal/history"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// DefaultTimeout bounds one edit service call.
const DefaultTimeout = 120 * time.Second

// MaxPixelRatio is the largest device pixel ratio a crop selection accepts.
const MaxPixelRatio = 8.0

// Observer receives a Snapshot after every transition. Observers are
// called outside the session lock, one snapshot at a time, in Seq order.
type Observer func(Snapshot)

// Session is one editing session. It is safe for concurrent use.
type Session struct {
	svc     Service
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
	decoder *imaging.DecodeCache

	mu         sync.Mutex
	history    *history.Store[*imaging.Artifact]
	mode       Mode
	phase      Phase
	busy       bool
	pending    Kind
	generation uint64
	hotspot    *Hotspot
	selection  *Selection
	lastErr    error
	seq        uint64
	observers  []observer
	observerID uint64

	publishMu sync.Mutex
	published uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for artifact names.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeout bounds each edit service call. Zero or negative disables
// the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithDecodeCache shares a bitmap cache with other components.
func WithDecodeCache(c *imaging.DecodeCache) Option {
	return func(s *Session) {
		if c != nil {
			s.decoder = c
		}
	}
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.addObserverLocked(o)
		}
	}
}

// New creates an empty session in retouch mode.
func New(svc Service, opts ...Option) *Session {
	s := &Session{
		svc:     svc,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		timeout: DefaultTimeout,
		decoder: imaging.NewDecodeCache(),
		history: history.New[*imaging.Artifact](),
		mode:    ModeRetouch,
		phase:   PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Session) Subscribe(o Observer) func() {
	s.mu.Lock()
	id := s.addObserverLocked(o)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.observers = slices.DeleteFunc(s.observers, func(e observer) bool { return e.id == id })
			s.mu.Unlock()
		})
	}
}

type observer struct {
	id uint64
	fn Observer
}

func (s *Session) addObserverLocked(o Observer) uint64 {
	s.observerID++
	s.observers = append(s.observers, observer{id: s.observerID, fn: o})
	return s.observerID
}

// Decoder returns the session's bitmap cache.
func (s *Session) Decoder() *imaging.DecodeCache {
	return s.decoder
}

// Snapshot returns the current state without publishing.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Upload replaces the whole history with a. Any pending request's result
// will be discarded.
func (s *Session) Upload(a *imaging.Artifact) (Snapshot, error) {
	if a == nil {
		return Snapshot{}, ErrNoImage
	}

	s.mu.Lock()
	s.history.ReplaceAll(a)
	s.generation++
	s.resetTransientLocked()
	s.mode = ModeRetouch
	if !s.busy {
		s.phase = PhaseIdle
	}
	s.lastErr = nil
	s.decoder.Clear()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info("image uploaded",
		"artifact", a.ID,
		"name", a.Name,
		"mime_type", a.MIMEType,
		"size", a.Size(),
	)
	s.publish(snap)
	return snap, nil
}

// Clear empties the history, returning the session to its initial state
// except for observers.
func (s *Session) Clear() Snapshot {
	s.mu.Lock()
	s.history.Clear()
	s.generation++
	s.resetTransientLocked()
	s.mode = ModeRetouch
	if !s.busy {
		s.phase = PhaseIdle
	}
	s.lastErr = nil
	s.decoder.Clear()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info("session cleared")
	s.publish(snap)
	return snap
}

// Undo moves the cursor one version back.
func (s *Session) Undo() (Snapshot, bool) {
	return s.move("undo", s.history.Undo)
}

// Redo moves the cursor one version forward.
func (s *Session) Redo() (Snapshot, bool) {
	return s.move("redo", s.history.Redo)
}

// Reset moves the cursor to the original version. Later versions stay
// reachable through Redo.
func (s *Session) Reset() (Snapshot, bool) {
	return s.move("reset", s.history.Reset)
}

func (s *Session) move(op string, fn func() bool) (Snapshot, bool) {
	s.mu.Lock()
	moved := fn()
	if !moved {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, false
	}
	s.resetTransientLocked()
	if op == "reset" {
		s.lastErr = nil
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("history moved", "op", op, "cursor", snap.Cursor, "length", snap.Length)
	s.publish(snap)
	return snap, true
}

// SetMode switches the active tool. Leaving retouch drops the hotspot;
// leaving crop drops the selection.
func (s *Session) SetMode(m Mode) (Snapshot, error) {
	if _, err := ParseMode(string(m)); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if m == s.mode {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	s.mode = m
	if m != ModeRetouch {
		s.hotspot = nil
	}
	if m != ModeCrop {
		s.selection = nil
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("mode changed", "mode", m)
	s.publish(snap)
	return snap, nil
}

// DismissError clears LastError.
func (s *Session) DismissError() Snapshot {
	s.mu.Lock()
	if s.lastErr == nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.lastErr = nil
	snap := s.commitLocked()
	s.mu.Unlock()

	s.publish(snap)
	return snap
}

// SelectPoint sets the retouch hotspot from a click on the rendered
// element. It returns coords.ErrNotReady when the element has no client
// size yet; callers ignore that interaction.
func (s *Session) SelectPoint(p coords.Point, clientWidth, clientHeight float64) (Hotspot, error) {
	s.mu.Lock()

	if s.mode != ModeRetouch {
		s.mu.Unlock()
		return Hotspot{}, ErrWrongMode
	}
	layout, err := s.layoutLocked(clientWidth, clientHeight)
	if err != nil {
		s.mu.Unlock()
		return Hotspot{}, err
	}
	if p.X < 0 || p.Y < 0 || p.X > clientWidth || p.Y > clientHeight {
		s.mu.Unlock()
		return Hotspot{}, ErrPointOutside
	}

	px, err := layout.ToNatural(p)
	if err != nil {
		s.mu.Unlock()
		return Hotspot{}, err
	}
	// A click on the far edge rounds to one past the last pixel.
	px.X = min(px.X, layout.NaturalWidth-1)
	px.Y = min(px.Y, layout.NaturalHeight-1)

	h := Hotspot{Display: p, Natural: px}
	s.hotspot = &h
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("hotspot selected", "x", px.X, "y", px.Y)
	s.publish(snap)
	return h, nil
}

// SelectCrop sets the crop selection. The rectangle is clamped to the
// element; a non-free aspect derives the height from the width and shrinks
// the rectangle to fit, keeping the aspect. An empty rectangle clears the
// selection and returns ErrEmptySelection. Pixel ratios outside
// (0, MaxPixelRatio] return ErrPixelRatio.
func (s *Session) SelectCrop(r coords.Rect, clientWidth, clientHeight, pixelRatio float64, aspect imaging.Aspect) (Selection, error) {
	ratio, err := aspect.Ratio()
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if pixelRatio == 0 {
		pixelRatio = 1
	}
	if !(pixelRatio > 0 && pixelRatio <= MaxPixelRatio) {
		return Selection{}, fmt.Errorf("%w: %v, want (0, %v]", ErrPixelRatio, pixelRatio, MaxPixelRatio)
	}

	s.mu.Lock()

	if s.mode != ModeCrop {
		s.mu.Unlock()
		return Selection{}, ErrWrongMode
	}
	layout, err := s.layoutLocked(clientWidth, clientHeight)
	if err != nil {
		s.mu.Unlock()
		return Selection{}, err
	}

	r = imaging.ClampSelection(r, clientWidth, clientHeight, ratio)
	if r.Empty() {
		s.selection = nil
		snap := s.commitLocked()
		s.mu.Unlock()
		s.publish(snap)
		return Selection{}, ErrEmptySelection
	}

	sel := Selection{Rect: r, Layout: layout, PixelRatio: pixelRatio, Aspect: aspect}
	s.selection = &sel
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("crop selected",
		"x", r.X, "y", r.Y, "width", r.Width, "height", r.Height,
		"aspect", aspect,
	)
	s.publish(snap)
	return sel, nil
}

// Submit runs one edit request to completion. On success the new artifact
// is appended to the history and returned; on any failure the history is
// untouched and the error is also kept as the session's LastError.
//
// Submit returns ErrBusy without side effects when another request is
// pending.
func (s *Session) Submit(ctx context.Context, req Request) (*imaging.Artifact, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.phase = PhaseValidating
	s.busy = true
	s.pending = req.Kind

	if req.Kind == KindCrop {
		return s.cropLocked(req)
	}

	sreq, err := s.validateLocked(req)
	if err != nil {
		return nil, s.failLocked(req.Kind, err, false)
	}

	gen := s.generation
	s.phase = PhasePending
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info("edit request submitted",
		"kind", req.Kind,
		"artifact", sreq.Image.ID,
		"preset", req.Preset,
	)
	s.publish(snap)

	start := time.Now()
	img, err := s.call(ctx, sreq)
	elapsed := time.Since(start)

	var a *imaging.Artifact
	if err == nil {
		a = imaging.NewArtifact(img.Data, img.MIMEType, "")
		a.CreatedAt = s.now()
		a.Name = imaging.GeneratedName(req.Kind.namePrefix(), a.MIMEType, a.CreatedAt)
		if _, derr := s.decoder.Decode(a); derr != nil {
			a, err = nil, &TransportError{Err: fmt.Errorf("corrupt image payload: %w", derr)}
		}
	}

	s.mu.Lock()
	if gen != s.generation {
		return nil, s.discardLocked(req.Kind, a, elapsed)
	}
	if err != nil {
		s.logger.Warn("edit request failed",
			"kind", req.Kind,
			"error_kind", KindOf(err),
			"error", err,
			"elapsed", elapsed,
		)
		return nil, s.failLocked(req.Kind, err, true)
	}
	s.succeedLocked(req.Kind, a)
	snap = s.commitLocked()
	s.mu.Unlock()

	s.logger.Info("edit request succeeded",
		"kind", req.Kind,
		"artifact", a.ID,
		"name", a.Name,
		"cursor", snap.Cursor,
		"length", snap.Length,
		"elapsed", elapsed,
	)
	s.publish(snap)
	return a, nil
}

// validateLocked checks preconditions and builds the service request.
func (s *Session) validateLocked(req Request) (*ServiceRequest, error) {
	current, ok := s.history.Current()
	if !ok {
		return nil, ErrNoImage
	}

	sreq := &ServiceRequest{Kind: req.Kind, Image: current}
	prompt := strings.TrimSpace(req.Prompt)

	switch req.Kind {
	case KindPointEdit:
		if prompt == "" {
			return nil, ErrEmptyPrompt
		}
		if s.mode != ModeRetouch {
			return nil, ErrWrongMode
		}
		if s.hotspot == nil {
			return nil, ErrNoHotspot
		}
		hint := s.hotspot.Natural
		sreq.Hint = &hint
		sreq.Instruction = prompt

	case KindFilter, KindAdjustment:
		if req.Preset != "" {
			p, err := LookupPreset(req.Kind, req.Preset)
			if err != nil {
				return nil, err
			}
			prompt = p.Prompt
		}
		if prompt == "" {
			return nil, ErrEmptyPrompt
		}
		sreq.Instruction = prompt

	case KindEnhancement:

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}

	return sreq, nil
}

// call invokes the service under the timeout and classifies its answer.
func (s *Session) call(ctx context.Context, req *ServiceRequest) (*InlineImage, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.svc == nil {
		return nil, &TransportError{Err: ErrNoService}
	}

	resp, err := s.svc.Generate(ctx, req)
	if err != nil {
		if KindOf(err) == ErrorKindInternal {
			err = &TransportError{Err: err}
		}
		return nil, err
	}
	return Classify(resp)
}

// cropLocked rasterizes the selection. Called with s.mu held; releases it.
// The decode and resample run outside the lock, like a service call.
func (s *Session) cropLocked(req Request) (*imaging.Artifact, error) {
	current, ok := s.history.Current()
	if !ok {
		return nil, s.failLocked(req.Kind, ErrNoImage, false)
	}
	if s.mode != ModeCrop {
		return nil, s.failLocked(req.Kind, ErrWrongMode, false)
	}
	if s.selection == nil || s.selection.Rect.Empty() {
		return nil, s.failLocked(req.Kind, ErrEmptySelection, false)
	}
	sel := *s.selection

	gen := s.generation
	s.phase = PhasePending
	snap := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap)

	start := time.Now()
	res, err := s.rasterize(current, sel)
	elapsed := time.Since(start)

	s.mu.Lock()
	if gen != s.generation {
		var a *imaging.Artifact
		if res != nil {
			a = res.Artifact
		}
		return nil, s.discardLocked(req.Kind, a, elapsed)
	}
	if err != nil {
		return nil, s.failLocked(req.Kind, err, false)
	}

	s.succeedLocked(req.Kind, res.Artifact)
	snap = s.commitLocked()
	s.mu.Unlock()

	s.logger.Info("crop applied",
		"artifact", res.Artifact.ID,
		"source", res.Source,
		"width", res.Width,
		"height", res.Height,
		"elapsed", elapsed,
	)
	s.publish(snap)
	return res.Artifact, nil
}

func (s *Session) rasterize(current *imaging.Artifact, sel Selection) (*imaging.CropResult, error) {
	src, err := s.decoder.Decode(current)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imaging.ErrRasterUnavailable, err)
	}

	res, err := imaging.Rasterize(src, sel.Layout, sel.Rect, sel.PixelRatio, s.now())
	if err != nil {
		if errors.Is(err, imaging.ErrEmptySelection) {
			err = ErrEmptySelection
		}
		return nil, err
	}
	res.Artifact.CreatedAt = s.now()
	return res, nil
}

// discardLocked drops the result of a request whose history was replaced
// while it ran. Called with s.mu held; releases it.
func (s *Session) discardLocked(kind Kind, a *imaging.Artifact, elapsed time.Duration) error {
	if a != nil {
		s.decoder.Evict(a.ID)
	}
	s.busy = false
	s.pending = ""
	s.phase = PhaseIdle
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Warn("edit result discarded", "kind", kind, "elapsed", elapsed)
	s.publish(snap)
	return ErrSuperseded
}

// succeedLocked appends a and frees the slot.
func (s *Session) succeedLocked(kind Kind, a *imaging.Artifact) {
	s.phase = PhaseSucceeded
	s.history.Append(a)
	if kind == KindPointEdit {
		s.hotspot = nil
	}
	s.selection = nil
	s.lastErr = nil
	s.busy = false
	s.pending = ""
}

// failLocked records err and frees the slot. Called with s.mu
// held; releases it. The hotspot is dropped only when a point edit
// reached the service.
func (s *Session) failLocked(kind Kind, err error, completed bool) error {
	s.phase = PhaseFailed
	if completed && kind == KindPointEdit {
		s.hotspot = nil
	}
	s.lastErr = err
	s.busy = false
	s.pending = ""
	snap := s.commitLocked()
	s.mu.Unlock()

	s.publish(snap)
	return err
}

// layoutLocked builds the layout of the current version.
func (s *Session) layoutLocked(clientWidth, clientHeight float64) (coords.Layout, error) {
	current, ok := s.history.Current()
	if !ok {
		return coords.Layout{}, ErrNoImage
	}
	if clientWidth <= 0 || clientHeight <= 0 {
		return coords.Layout{}, coords.ErrNotReady
	}
	img, err := s.decoder.Decode(current)
	if err != nil {
		return coords.Layout{}, fmt.Errorf("%w: %w", imaging.ErrRasterUnavailable, err)
	}
	b := img.Bounds()
	return coords.Layout{
		NaturalWidth:  b.Dx(),
		NaturalHeight: b.Dy(),
		ClientWidth:   clientWidth,
		ClientHeight:  clientHeight,
	}, nil
}

func (s *Session) resetTransientLocked() {
	s.hotspot = nil
	s.selection = nil
}

// commitLocked bumps the sequence number and snapshots the state.
func (s *Session) commitLocked() Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Seq:       s.seq,
		Mode:      s.mode,
		Phase:     s.phase,
		Busy:      s.busy,
		Pending:   s.pending,
		Length:    s.history.Len(),
		Cursor:    s.history.Cursor(),
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
		Versions:  s.history.Versions(),
		LastError: s.lastErr,
	}
	snap.Current, _ = s.history.Current()
	snap.Origin, _ = s.history.Origin()
	if s.hotspot != nil {
		h := *s.hotspot
		snap.Hotspot = &h
	}
	if s.selection != nil {
		sel := *s.selection
		snap.Selection = &sel
	}
	return snap
}

// publish delivers snap to observers, dropping snapshots older than one
// already delivered.
func (s *Session) publish(snap Snapshot) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if snap.Seq <= s.published {
		return
	}
	s.published = snap.Seq

	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		if o.fn != nil {
			observers = append(observers, o.fn)
		}
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}
