// Package server implements the MCP (Model Context Protocol) server for the
// image editor.
//
// This package provides a JSON-RPC 2.0 server that exposes one editing
// session through the MCP protocol. A client uploads a photo, picks a point
// or a crop rectangle on the displayed image, requests generative edits and
// walks the version history.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// tools/call requests run concurrently, so state queries and history moves
// answer while a generative edit is outstanding. Responses carry the
// request ID and may arrive out of order.
//
// # Available Tools
//
// Session:
//   - image_upload: Start a session from a file path or data URL
//   - image_new: Return to the empty state
//   - image_state: Report the session
//   - image_set_mode: Switch between retouch, adjust, filter and crop
//
// Selection:
//   - image_select_point: Set the retouch hotspot from a display click
//   - image_select_crop: Set the crop rectangle in display space
//
// Edits:
//   - image_edit: Localized retouch at the hotspot
//   - image_filter: Stylistic filter, preset or custom
//   - image_adjust: Global adjustment, preset or custom
//   - image_enhance: Automatic portrait retouch
//   - image_crop: Apply the crop selection locally
//   - image_presets: List filter and adjustment presets
//
// History:
//   - history_undo, history_redo, history_reset
//
// Viewing:
//   - image_current: The current version as an image
//   - image_compare: Original and a difference image
//   - image_preview_hotspot: Current version with the hotspot marked
//   - image_grid_overlay: Current version with a coordinate grid
//   - error_dismiss: Clear the last error
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: {"kind": ..., "message": ...} where kind is one of validation,
//     blocked, incomplete, empty, transport, raster_unavailable, busy,
//     superseded or internal
//
// # Usage
//
//	srv := server.New(server.Config{Session: session, Binder: binder, Logger: logger})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
