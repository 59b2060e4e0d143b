package display

import (
	"sync"

	"github.com/ironsheep/image-edit-mcp/internal/editor"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Binder keeps one handle for the current version and one for the
// original. A role's handle is released exactly once: when the role moves
// to another artifact, when it becomes empty, or on Close.
type Binder struct {
	reg *Registry

	mu      sync.Mutex
	current *Handle
	origin  *Handle
	closed  bool
}

// NewBinder creates an empty binder over reg.
func NewBinder(reg *Registry) *Binder {
	return &Binder{reg: reg}
}

// Bind updates both roles from a session snapshot. It has the signature of
// an editor.Observer.
func (b *Binder) Bind(snap editor.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.current = b.rebind(b.current, snap.Current)
	b.origin = b.rebind(b.origin, snap.Origin)
}

func (b *Binder) rebind(held *Handle, a *imaging.Artifact) *Handle {
	if held != nil && a != nil && held.ArtifactID == a.ID {
		return held
	}
	if held != nil {
		if err := b.reg.Release(*held); err != nil {
			b.reg.logger.Error("display handle release failed", "handle", held.ID, "error", err)
		}
	}
	if a == nil {
		return nil
	}
	h := b.reg.Acquire(a)
	return &h
}

// Current returns the handle of the current version.
func (b *Binder) Current() (Handle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Handle{}, false
	}
	return *b.current, true
}

// Origin returns the handle of the original version.
func (b *Binder) Origin() (Handle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.origin == nil {
		return Handle{}, false
	}
	return *b.origin, true
}

// Close releases both roles. Later Bind calls are ignored.
func (b *Binder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.current = b.rebind(b.current, nil)
	b.origin = b.rebind(b.origin, nil)
	b.closed = true
}
