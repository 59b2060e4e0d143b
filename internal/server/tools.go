package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "image_upload",
			Description: "Start a new editing session from an image. Replaces the whole history; any edit still running is discarded when it finishes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"data_url": map[string]interface{}{
						"type":        "string",
						"description": "The image as a base64 data URL (data:image/png;base64,...). Use instead of path.",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Display name for a data URL upload. Default \"upload\"",
					},
				},
			},
		},
		{
			Name:        "image_new",
			Description: "Discard the session and return to the empty state.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_state",
			Description: "Report the session: mode, pending request, history position, current and original versions with display URLs, hotspot, crop selection and the last error.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_set_mode",
			Description: "Switch the active tool. The hotspot only exists in retouch mode and the crop selection only in crop mode; leaving a mode discards its state.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": map[string]interface{}{
						"type": "string",
						"enum": []string{"retouch", "adjust", "filter", "crop"},
					},
				},
				"required": []string{"mode"},
			},
		},

		// Selection
		{
			Name:        "image_select_point",
			Description: "Set the retouch hotspot from a click on the displayed image. Coordinates are in the displayed element's space; they are mapped to image pixels using the client size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Click X relative to the element's left edge",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Click Y relative to the element's top edge",
					},
					"client_width": map[string]interface{}{
						"type":        "number",
						"description": "Rendered width of the image element",
					},
					"client_height": map[string]interface{}{
						"type":        "number",
						"description": "Rendered height of the image element",
					},
				},
				"required": []string{"x", "y", "client_width", "client_height"},
			},
		},
		{
			Name:        "image_select_crop",
			Description: "Set the crop rectangle in the displayed element's space. With a fixed aspect the height is derived from the width.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x":             map[string]interface{}{"type": "number"},
					"y":             map[string]interface{}{"type": "number"},
					"width":         map[string]interface{}{"type": "number"},
					"height":        map[string]interface{}{"type": "number"},
					"client_width":  map[string]interface{}{"type": "number"},
					"client_height": map[string]interface{}{"type": "number"},
					"pixel_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Device pixel ratio of the display. Default 1.0",
						"default":     1.0,
					},
					"aspect": map[string]interface{}{
						"type":    "string",
						"enum":    []string{"free", "1:1", "16:9"},
						"default": "free",
					},
				},
				"required": []string{"x", "y", "width", "height", "client_width", "client_height"},
			},
		},

		// Edits
		{
			Name:        "image_edit",
			Description: "Retouch the area around the hotspot as described. Requires retouch mode and a selected point.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "What to change, e.g. \"remove the person in the background\"",
					},
				},
				"required": []string{"prompt"},
			},
		},
		{
			Name:        "image_filter",
			Description: "Apply a stylistic filter to the whole image. Give a preset name or a custom prompt.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"preset": map[string]interface{}{
						"type": "string",
						"enum": []string{"synthwave", "anime", "lomo", "glitch"},
					},
					"prompt": map[string]interface{}{
						"type": "string",
					},
				},
			},
		},
		{
			Name:        "image_adjust",
			Description: "Apply a global photo adjustment. Give a preset name or a custom prompt.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"preset": map[string]interface{}{
						"type": "string",
						"enum": []string{"blur-background", "enhance-details", "warmer-lighting", "studio-light"},
					},
					"prompt": map[string]interface{}{
						"type": "string",
					},
				},
			},
		},
		{
			Name:        "image_enhance",
			Description: "Automatically retouch a portrait: lighting, color balance, skin and detail.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_crop",
			Description: "Apply the crop selection. Runs locally and adds the cropped PNG as a new version.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_presets",
			Description: "List the filter and adjustment presets with their prompts.",
			InputSchema: emptySchema(),
		},

		// History
		{
			Name:        "history_undo",
			Description: "Step back one version.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "history_redo",
			Description: "Step forward one version.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "history_reset",
			Description: "Go back to the original upload. Later versions stay reachable with redo until a new edit is made.",
			InputSchema: emptySchema(),
		},

		// Viewing
		{
			Name:        "image_current",
			Description: "Return the current version as an image.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_compare",
			Description: "Compare the current version with the original: returns the original and a difference image with the share of changed pixels.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_preview_hotspot",
			Description: "Return the current version with a marker drawn at the hotspot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Marker radius in image pixels. Default 2% of the shorter side",
					},
					"client_width": map[string]interface{}{
						"type":        "number",
						"description": "Rendered width of the image element; with client_height, reports the marker's display position",
					},
					"client_height": map[string]interface{}{
						"type":        "number",
						"description": "Rendered height of the image element",
					},
				},
			},
		},
		{
			Name:        "image_grid_overlay",
			Description: "Return the current version with a pixel-coordinate grid, to help choose points and crop rectangles.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines. Default 50",
						"default":     50,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label intersections with coordinates. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex. Default #FF0000",
						"default":     "#FF0000",
					},
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Grid line opacity 0-1. Default 0.6",
						"default":     0.6,
					},
				},
			},
		},
		{
			Name:        "error_dismiss",
			Description: "Clear the last error.",
			InputSchema: emptySchema(),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
