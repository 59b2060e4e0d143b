package server

import (
	"context"
	"strings"
	"testing"

	"github.com/ironsheep/image-edit-mcp/internal/editor"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_upload",
		"image_new",
		"image_state",
		"image_set_mode",
		"image_select_point",
		"image_select_crop",
		"image_edit",
		"image_filter",
		"image_adjust",
		"image_enhance",
		"image_crop",
		"image_presets",
		"history_undo",
		"history_redo",
		"history_reset",
		"image_current",
		"image_compare",
		"image_preview_hotspot",
		"image_grid_overlay",
		"error_dismiss",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter is declared.
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required parameter %s not in properties", r)
					}
				}
			}
		})
	}
}

// Every advertised tool must be dispatched; unknown names fail validation.
func TestToolDefinitions_Dispatched(t *testing.T) {
	s := New(Config{})

	for _, tool := range GetToolDefinitions() {
		_, err := s.executeTool(context.Background(), tool.Name, nil)
		if err != nil && editor.KindOf(err) == editor.ErrorKindValidation && containsUnknownTool(err) {
			t.Errorf("%s is not dispatched", tool.Name)
		}
	}

	_, err := s.executeTool(context.Background(), "image_load", nil)
	if editor.KindOf(err) != editor.ErrorKindValidation {
		t.Errorf("unknown tool: got kind %q, want validation", editor.KindOf(err))
	}
}

func containsUnknownTool(err error) bool {
	return strings.Contains(err.Error(), "unknown tool")
}

func TestToolDefinitions_PresetEnums(t *testing.T) {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for toolName, kind := range map[string]editor.Kind{
		"image_filter": editor.KindFilter,
		"image_adjust": editor.KindAdjustment,
	} {
		props := toolMap[toolName].InputSchema["properties"].(map[string]interface{})
		enum := props["preset"].(map[string]interface{})["enum"].([]string)

		presets := editor.Presets(kind)
		if len(enum) != len(presets) {
			t.Fatalf("%s: enum has %d presets, want %d", toolName, len(enum), len(presets))
		}
		for i, p := range presets {
			if enum[i] != p.Name {
				t.Errorf("%s: enum[%d] = %s, want %s", toolName, i, enum[i], p.Name)
			}
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"image_select_crop":  {"pixel_ratio": 1.0, "aspect": "free"},
		"image_grid_overlay": {"grid_spacing": 50, "show_coordinates": true, "grid_color": "#FF0000", "opacity": 0.6},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for toolName, expectedDefaults := range toolDefaults {
		props, ok := toolMap[toolName].InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expected := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found", toolName, paramName)
				continue
			}
			if param["default"] != expected {
				t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, param["default"], expected)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(Config{})
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
