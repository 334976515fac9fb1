// Package server implements the MCP (Model Context Protocol) server for
// transcribing handwritten notes.
//
// This package provides a JSON-RPC 2.0 server that drives a session.Session:
// a client loads a page, selects one rectangle per handwritten line, and
// asks for the lines to be recognized and saved as a note.
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
// # Available Tools
//
// Credential:
//   - credential_set: Store the recognition API key
//   - credential_status: Report whether a key is configured (redacted)
//
// Image:
//   - image_load: Load a page from disk
//   - image_upload: Load a page sent as base64
//
// Selection (display coordinates):
//   - region_pointer_down, region_pointer_move, region_pointer_up,
//     region_pointer_leave: Drive a drag step by step
//   - region_draw: A whole drag in one call
//   - region_list: Selected regions, numbered from 1
//   - region_clear: Remove every selection
//
// Rendering:
//   - canvas_render: The dimmed page with selections highlighted
//   - line_preview: The enhanced image of one extracted line
//
// Notes:
//   - notes_process: Recognize every line and save a note
//   - notes_list: Notes created so far, most recent first
//
// # Error Handling
//
// Malformed calls return -32602. Tool failures return -32000 with message
// "Tool execution failed" and the user-facing explanation as data, for
// example "Please upload an image first".
//
// # Usage
//
//	srv := server.New(sess, creds, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package server
