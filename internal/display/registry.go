// Package display turns artifacts into URLs a client can render.
//
// A Registry hands out one handle per artifact and keeps it alive while
// any holder references it. A Binder holds the two roles a session
// displays (the current version and the original) and keeps the registry
// in step with the session's snapshots.
package display

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// ErrUnknownHandle is returned when releasing a handle that is not live.
var ErrUnknownHandle = errors.New("unknown display handle")

// Handle is a live reference to an artifact's display URL.
type Handle struct {
	ID         string    `json:"id"`
	ArtifactID uuid.UUID `json:"artifact_id"`
	URL        string    `json:"url,omitempty"`
}

type entry struct {
	handle   Handle
	artifact *imaging.Artifact
	refs     int
}

// Registry is a reference-counted set of display handles, safe for
// concurrent use.
type Registry struct {
	baseURL string
	logger  *slog.Logger

	mu         sync.Mutex
	byArtifact map[uuid.UUID]*entry
	byHandle   map[string]*entry
}

// NewRegistry creates a registry whose URLs start with baseURL. An empty
// baseURL yields handles without URLs.
func NewRegistry(baseURL string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		baseURL:    baseURL,
		logger:     logger,
		byArtifact: make(map[uuid.UUID]*entry),
		byHandle:   make(map[string]*entry),
	}
}

// Acquire returns the handle of a, creating it on first use, and adds a
// reference.
func (r *Registry) Acquire(a *imaging.Artifact) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.byArtifact[a.ID]; ok {
		e.refs++
		return e.handle
	}

	id := uuid.NewString()
	h := Handle{ID: id, ArtifactID: a.ID}
	if r.baseURL != "" {
		h.URL = fmt.Sprintf("%s/artifacts/%s", r.baseURL, id)
	}
	e := &entry{handle: h, artifact: a, refs: 1}
	r.byArtifact[a.ID] = e
	r.byHandle[id] = e

	r.logger.Debug("display handle created", "handle", id, "artifact", a.ID)
	return h
}

// Release drops one reference. The handle stops resolving when its last
// reference is released.
func (r *Registry) Release(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byHandle[h.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h.ID)
	}
	e.refs--
	if e.refs > 0 {
		return nil
	}
	delete(r.byHandle, h.ID)
	delete(r.byArtifact, e.handle.ArtifactID)

	r.logger.Debug("display handle released", "handle", h.ID, "artifact", e.handle.ArtifactID)
	return nil
}

// Lookup resolves a live handle ID.
func (r *Registry) Lookup(id string) (*imaging.Artifact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byHandle[id]
	if !ok {
		return nil, false
	}
	return e.artifact, true
}

// Live returns the number of live handles.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHandle)
}

// Handler serves GET /artifacts/{handle}.
func (r *Registry) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/artifacts/{handle}", r.serveArtifact)
	return router
}

func (r *Registry) serveArtifact(w http.ResponseWriter, req *http.Request) {
	a, ok := r.Lookup(chi.URLParam(req, "handle"))
	if !ok {
		http.NotFound(w, req)
		return
	}

	// Artifacts are immutable, so a handle's bytes never change.
	w.Header().Set("Content-Type", a.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(a.Size()))
	w.Header().Set("Cache-Control", "private, max-age=3600, immutable")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", a.Name))
	if _, err := w.Write(a.Data); err != nil {
		r.logger.Warn("failed to write artifact", "artifact", a.ID, "error", err)
	}
}
