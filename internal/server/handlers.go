package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-units"

	"github.com/ironsheep/image-edit-mcp/internal/coords"
	"github.com/ironsheep/image-edit-mcp/internal/editor"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_upload", "image_edit").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [
//	    {"type": "text", "text": "<JSON result>"},
//	    {"type": "image", "data": "<base64>", "mimeType": "image/png"}
//	  ]
//	}
//
// Image entries are present only for tools that return pictures. Tool
// execution errors return a JSON-RPC error response with code -32000 and
// data {"kind", "message"}.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		kind := editor.KindOf(err)
		s.logger.Warn("tool failed",
			"tool", params.Name,
			"error_kind", kind,
			"error", err,
			"elapsed", time.Since(start),
		)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", newErrorView(err))
	}
	s.logger.Debug("tool succeeded", "tool", params.Name, "elapsed", time.Since(start))

	value := result
	var images []*imaging.Artifact
	if r, ok := result.(*toolResult); ok {
		value = r.value
		images = r.images
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": mustMarshalJSON(value),
		},
	}
	for _, a := range images {
		content = append(content, map[string]interface{}{
			"type":     "image",
			"data":     a.Base64(),
			"mimeType": a.MIMEType,
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls the session
//  4. Returns a view of the outcome or the error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session
	case "image_upload":
		return s.handleImageUpload(args)
	case "image_new":
		return s.stateOf(s.session.Clear()), nil
	case "image_state":
		return s.stateOf(s.session.Snapshot()), nil
	case "image_set_mode":
		return s.handleImageSetMode(args)

	// Selection
	case "image_select_point":
		return s.handleImageSelectPoint(args)
	case "image_select_crop":
		return s.handleImageSelectCrop(args)

	// Edits
	case "image_edit":
		return s.handleImageEdit(ctx, args)
	case "image_filter":
		return s.handlePresetEdit(ctx, editor.KindFilter, args)
	case "image_adjust":
		return s.handlePresetEdit(ctx, editor.KindAdjustment, args)
	case "image_enhance":
		return s.submit(ctx, editor.Request{Kind: editor.KindEnhancement})
	case "image_crop":
		return s.submit(ctx, editor.Request{Kind: editor.KindCrop})
	case "image_presets":
		return map[string]interface{}{
			"filters":     editor.Presets(editor.KindFilter),
			"adjustments": editor.Presets(editor.KindAdjustment),
		}, nil

	// History
	case "history_undo":
		return s.moveResult(s.session.Undo())
	case "history_redo":
		return s.moveResult(s.session.Redo())
	case "history_reset":
		return s.moveResult(s.session.Reset())

	// Viewing
	case "image_current":
		return s.handleImageCurrent()
	case "image_compare":
		return s.handleImageCompare()
	case "image_preview_hotspot":
		return s.handleImagePreviewHotspot(args)
	case "image_grid_overlay":
		return s.handleImageGridOverlay(args)

	case "error_dismiss":
		return s.stateOf(s.session.DismissError()), nil

	default:
		return nil, fmt.Errorf("%w: unknown tool %q", editor.ErrValidation, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes optional arguments; absent arguments leave v zero.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %w", editor.ErrValidation, err)
	}
	return nil
}

// === Session Handlers ===

type imageUploadArgs struct {
	Path    string `json:"path"`
	DataURL string `json:"data_url"`
	Name    string `json:"name"`
}

func (s *Server) handleImageUpload(args json.RawMessage) (interface{}, error) {
	var a imageUploadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		artifact *imaging.Artifact
		err      error
	)
	switch {
	case a.Path != "" && a.DataURL != "":
		return nil, fmt.Errorf("%w: give either path or data_url, not both", editor.ErrValidation)
	case a.Path != "":
		artifact, err = imaging.LoadArtifact(a.Path, s.maxUploadSize)
	case a.DataURL != "":
		if a.Name == "" {
			a.Name = "upload"
		}
		artifact, err = imaging.ParseDataURL(a.DataURL, a.Name)
		if err == nil && s.maxUploadSize > 0 && int64(artifact.Size()) > s.maxUploadSize {
			err = fmt.Errorf("image is %s, the limit is %s",
				units.HumanSize(float64(artifact.Size())), units.HumanSize(float64(s.maxUploadSize)))
		}
	default:
		return nil, fmt.Errorf("%w: path or data_url is required", editor.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", editor.ErrValidation, err)
	}

	snap, err := s.session.Upload(artifact)
	if err != nil {
		return nil, err
	}
	return s.stateOf(snap), nil
}

type imageSetModeArgs struct {
	Mode string `json:"mode"`
}

func (s *Server) handleImageSetMode(args json.RawMessage) (interface{}, error) {
	var a imageSetModeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	mode, err := editor.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	snap, err := s.session.SetMode(mode)
	if err != nil {
		return nil, err
	}
	return s.stateOf(snap), nil
}

// === Selection Handlers ===

type imageSelectPointArgs struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ClientWidth  float64 `json:"client_width"`
	ClientHeight float64 `json:"client_height"`
}

type selectPointResult struct {
	Hotspot *editor.Hotspot `json:"hotspot,omitempty"`

	// Ignored is set when the element had no size yet; nothing changed.
	Ignored bool   `json:"ignored,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (s *Server) handleImageSelectPoint(args json.RawMessage) (interface{}, error) {
	var a imageSelectPointArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	h, err := s.session.SelectPoint(coords.Point{X: a.X, Y: a.Y}, a.ClientWidth, a.ClientHeight)
	if errors.Is(err, coords.ErrNotReady) {
		return &selectPointResult{Ignored: true, Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &selectPointResult{Hotspot: &h}, nil
}

type imageSelectCropArgs struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	ClientWidth  float64 `json:"client_width"`
	ClientHeight float64 `json:"client_height"`
	PixelRatio   float64 `json:"pixel_ratio"`
	Aspect       string  `json:"aspect"`
}

type selectCropResult struct {
	Selection *editor.Selection `json:"crop_selection,omitempty"`

	// Output is the pixel size the crop will produce.
	OutputWidth  int `json:"output_width,omitempty"`
	OutputHeight int `json:"output_height,omitempty"`

	Ignored bool   `json:"ignored,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (s *Server) handleImageSelectCrop(args json.RawMessage) (interface{}, error) {
	var a imageSelectCropArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.PixelRatio == 0 {
		a.PixelRatio = 1.0
	}
	if a.Aspect == "" {
		a.Aspect = string(imaging.AspectFree)
	}

	rect := coords.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
	sel, err := s.session.SelectCrop(rect, a.ClientWidth, a.ClientHeight, a.PixelRatio, imaging.Aspect(a.Aspect))
	if errors.Is(err, coords.ErrNotReady) {
		return &selectCropResult{Ignored: true, Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &selectCropResult{
		Selection:    &sel,
		OutputWidth:  int(sel.Rect.Width*sel.PixelRatio + 0.5),
		OutputHeight: int(sel.Rect.Height*sel.PixelRatio + 0.5),
	}, nil
}

// === Edit Handlers ===

type imageEditArgs struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleImageEdit(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageEditArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.submit(ctx, editor.Request{Kind: editor.KindPointEdit, Prompt: a.Prompt})
}

type presetEditArgs struct {
	Preset string `json:"preset"`
	Prompt string `json:"prompt"`
}

func (s *Server) handlePresetEdit(ctx context.Context, kind editor.Kind, args json.RawMessage) (interface{}, error) {
	var a presetEditArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.submit(ctx, editor.Request{Kind: kind, Preset: a.Preset, Prompt: a.Prompt})
}

type editResult struct {
	Artifact *artifactView `json:"artifact"`
	State    *stateView    `json:"state"`
}

// submit runs a request and returns the new version with its image.
func (s *Server) submit(ctx context.Context, req editor.Request) (interface{}, error) {
	a, err := s.session.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return &toolResult{
		value: &editResult{
			Artifact: s.describe(a, s.binder.Current),
			State:    s.stateOf(s.session.Snapshot()),
		},
		images: []*imaging.Artifact{a},
	}, nil
}

// === History Handlers ===

type moveResult struct {
	Moved bool       `json:"moved"`
	State *stateView `json:"state"`
}

func (s *Server) moveResult(snap editor.Snapshot, moved bool) (interface{}, error) {
	return &moveResult{Moved: moved, State: s.stateOf(snap)}, nil
}

// === Viewing Handlers ===

func (s *Server) handleImageCurrent() (interface{}, error) {
	snap := s.session.Snapshot()
	if snap.Current == nil {
		return nil, editor.ErrNoImage
	}
	return &toolResult{
		value:  s.describe(snap.Current, s.binder.Current),
		images: []*imaging.Artifact{snap.Current},
	}, nil
}

type compareResult struct {
	Original       *artifactView `json:"original"`
	Current        *artifactView `json:"current"`
	ChangedPercent float64       `json:"changed_percent"`
	Resized        bool          `json:"resized"`
}

func (s *Server) handleImageCompare() (interface{}, error) {
	snap := s.session.Snapshot()
	if snap.Current == nil {
		return nil, editor.ErrNoImage
	}

	origin, err := s.session.Decoder().Decode(snap.Origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imaging.ErrRasterUnavailable, err)
	}
	current, err := s.session.Decoder().Decode(snap.Current)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imaging.ErrRasterUnavailable, err)
	}

	cmp := imaging.Compare(origin, current)
	data, err := imaging.EncodePNG(cmp.Diff)
	if err != nil {
		return nil, err
	}
	diff := imaging.NewArtifact(data, imaging.MIMETypePNG, imaging.GeneratedName("diff", imaging.MIMETypePNG, time.Now()))

	return &toolResult{
		value: &compareResult{
			Original:       s.describe(snap.Origin, s.binder.Origin),
			Current:        s.describe(snap.Current, s.binder.Current),
			ChangedPercent: cmp.ChangedPercent,
			Resized:        cmp.Resized,
		},
		images: []*imaging.Artifact{snap.Origin, diff},
	}, nil
}

type imagePreviewHotspotArgs struct {
	Radius int `json:"radius"`

	// ClientWidth and ClientHeight, when given, place the marker in the
	// client's current rendering of the image.
	ClientWidth  float64 `json:"client_width"`
	ClientHeight float64 `json:"client_height"`
}

type previewHotspotResult struct {
	Hotspot *editor.Hotspot `json:"hotspot"`
	Radius  int             `json:"radius"`

	// Display is the marker centre in the given client size.
	Display *coords.Point `json:"display,omitempty"`
}

func (s *Server) handleImagePreviewHotspot(args json.RawMessage) (interface{}, error) {
	var a imagePreviewHotspotArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	snap := s.session.Snapshot()
	if snap.Current == nil {
		return nil, editor.ErrNoImage
	}
	if snap.Hotspot == nil {
		return nil, editor.ErrNoHotspot
	}

	img, err := s.session.Decoder().Decode(snap.Current)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imaging.ErrRasterUnavailable, err)
	}
	if a.Radius <= 0 {
		b := img.Bounds()
		a.Radius = max(6, min(b.Dx(), b.Dy())/50)
	}

	data, err := imaging.EncodePNG(imaging.RenderMarker(img, snap.Hotspot.Natural, a.Radius))
	if err != nil {
		return nil, err
	}
	preview := imaging.NewArtifact(data, imaging.MIMETypePNG, imaging.GeneratedName("hotspot", imaging.MIMETypePNG, time.Now()))

	result := &previewHotspotResult{Hotspot: snap.Hotspot, Radius: a.Radius}
	if a.ClientWidth > 0 && a.ClientHeight > 0 {
		b := img.Bounds()
		layout := coords.Layout{
			NaturalWidth:  b.Dx(),
			NaturalHeight: b.Dy(),
			ClientWidth:   a.ClientWidth,
			ClientHeight:  a.ClientHeight,
		}
		p, err := layout.ToDisplay(snap.Hotspot.Natural)
		if err != nil {
			return nil, err
		}
		result.Display = &p
	}

	return &toolResult{
		value:  result,
		images: []*imaging.Artifact{preview},
	}, nil
}

type imageGridOverlayArgs struct {
	GridSpacing     int      `json:"grid_spacing"`
	ShowCoordinates *bool    `json:"show_coordinates"`
	GridColor       string   `json:"grid_color"`
	Opacity         *float64 `json:"opacity"`
}

type gridOverlayResult struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	GridSpacing int `json:"grid_spacing"`
}

func (s *Server) handleImageGridOverlay(args json.RawMessage) (interface{}, error) {
	var a imageGridOverlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.GridSpacing == 0 {
		a.GridSpacing = 50
	}
	if a.GridColor == "" {
		a.GridColor = "#FF0000"
	}
	opts := imaging.GridOptions{
		Spacing:         a.GridSpacing,
		ShowCoordinates: a.ShowCoordinates == nil || *a.ShowCoordinates,
		Color:           a.GridColor,
		Opacity:         0.6,
	}
	if a.Opacity != nil {
		opts.Opacity = *a.Opacity
	}

	snap := s.session.Snapshot()
	if snap.Current == nil {
		return nil, editor.ErrNoImage
	}
	img, err := s.session.Decoder().Decode(snap.Current)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imaging.ErrRasterUnavailable, err)
	}

	grid, err := imaging.GridOverlay(img, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", editor.ErrValidation, err)
	}
	data, err := imaging.EncodePNG(grid)
	if err != nil {
		return nil, err
	}
	overlay := imaging.NewArtifact(data, imaging.MIMETypePNG, imaging.GeneratedName("grid", imaging.MIMETypePNG, time.Now()))

	return &toolResult{
		value: &gridOverlayResult{
			Width:       grid.Bounds().Dx(),
			Height:      grid.Bounds().Dy(),
			GridSpacing: a.GridSpacing,
		},
		images: []*imaging.Artifact{overlay},
	}, nil
}
