package server

import (
	"github.com/ironsheep/image-edit-mcp/internal/display"
	"github.com/ironsheep/image-edit-mcp/internal/editor"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// artifactView describes one version for clients.
type artifactView struct {
	*imaging.ArtifactInfo

	// URL is the display handle's URL while the version holds a role.
	URL string `json:"url,omitempty"`
}

type errorView struct {
	Kind    editor.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

type stateView struct {
	Mode    editor.Mode  `json:"mode"`
	Phase   editor.Phase `json:"phase"`
	Busy    bool         `json:"busy"`
	Pending editor.Kind  `json:"pending,omitempty"`

	HasImage bool `json:"has_image"`
	Length   int  `json:"history_length"`
	Cursor   int  `json:"history_index"`
	CanUndo  bool `json:"can_undo"`
	CanRedo  bool `json:"can_redo"`

	Current *artifactView `json:"current,omitempty"`
	Origin  *artifactView `json:"original,omitempty"`

	Hotspot   *editor.Hotspot   `json:"hotspot,omitempty"`
	Selection *editor.Selection `json:"crop_selection,omitempty"`

	Error *errorView `json:"error,omitempty"`
}

// toolResult is a tool answer that also carries images for the client.
type toolResult struct {
	value  interface{}
	images []*imaging.Artifact
}

func newErrorView(err error) *errorView {
	if err == nil {
		return nil
	}
	return &errorView{Kind: editor.KindOf(err), Message: err.Error()}
}

// describe builds the view of a, resolving its display URL when it holds
// the given role handle.
func (s *Server) describe(a *imaging.Artifact, role func() (display.Handle, bool)) *artifactView {
	if a == nil {
		return nil
	}

	v := &artifactView{}
	if img, err := s.session.Decoder().Decode(a); err == nil {
		v.ArtifactInfo = imaging.Describe(a, img)
	} else {
		v.ArtifactInfo = &imaging.ArtifactInfo{
			ID:        a.ID.String(),
			Name:      a.Name,
			MIMEType:  a.MIMEType,
			SizeBytes: a.Size(),
		}
	}

	if role != nil {
		if h, ok := role(); ok && h.ArtifactID == a.ID {
			v.URL = h.URL
		}
	}
	return v
}

func (s *Server) stateOf(snap editor.Snapshot) *stateView {
	return &stateView{
		Mode:      snap.Mode,
		Phase:     snap.Phase,
		Busy:      snap.Busy,
		Pending:   snap.Pending,
		HasImage:  snap.HasImage(),
		Length:    snap.Length,
		Cursor:    snap.Cursor,
		CanUndo:   snap.CanUndo,
		CanRedo:   snap.CanRedo,
		Current:   s.describe(snap.Current, s.binder.Current),
		Origin:    s.describe(snap.Origin, s.binder.Origin),
		Hotspot:   snap.Hotspot,
		Selection: snap.Selection,
		Error:     newErrorView(snap.LastError),
	}
}
