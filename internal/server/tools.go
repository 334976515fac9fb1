package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pointSchema is the input schema shared by the pointer tools.
func pointSchema(verb string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "number",
				"description": "X coordinate in display pixels where the pointer was " + verb,
			},
			"y": map[string]interface{}{
				"type":        "number",
				"description": "Y coordinate in display pixels where the pointer was " + verb,
			},
		},
		"required": []string{"x", "y"},
	}
}

// emptySchema is the input schema of tools without arguments.
func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Credential
		{
			Name:        "credential_set",
			Description: "Store the HuggingFace API key used for handwriting recognition. The key is saved to the credential file and never echoed back in full.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"api_key": map[string]interface{}{
						"type":        "string",
						"description": "HuggingFace API token (hf_...)",
					},
				},
				"required": []string{"api_key"},
			},
		},
		{
			Name:        "credential_status",
			Description: "Report whether an API key is configured, showing it redacted, and which recognition backend is active.",
			InputSchema: emptySchema(),
		},

		// Image
		{
			Name:        "image_load",
			Description: "Load an image of handwritten notes from disk and make it the active image. Clears any selected regions. Returns source size, display size and the display-to-source scale factor.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"container_width": map[string]interface{}{
						"type":        "number",
						"description": "Width available for display; the image is fitted to it (default 800)",
						"default":     800,
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Read the file again even if it was loaded before (default false)",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_upload",
			Description: "Upload an image as base64 data and make it the active image. Accepts PNG, JPEG, GIF, BMP, TIFF and WebP up to 10MB.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Original file name",
					},
					"mime_type": map[string]interface{}{
						"type":        "string",
						"description": "Declared content type, e.g. image/png",
					},
					"data_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64 encoded file contents",
					},
					"container_width": map[string]interface{}{
						"type":        "number",
						"description": "Width available for display (default 800)",
						"default":     800,
					},
				},
				"required": []string{"data_base64"},
			},
		},

		// Selection
		{
			Name:        "region_pointer_down",
			Description: "Press the pointer on the displayed image to start selecting a line of text.",
			InputSchema: pointSchema("pressed"),
		},
		{
			Name:        "region_pointer_move",
			Description: "Move the pointer while a selection is being dragged. Ignored when no drag is active.",
			InputSchema: pointSchema("moved to"),
		},
		{
			Name:        "region_pointer_up",
			Description: "Release the pointer to finish the selection. Selections smaller than 5x5 display pixels are discarded; larger ones are extracted immediately.",
			InputSchema: pointSchema("released"),
		},
		{
			Name:        "region_pointer_leave",
			Description: "The pointer left the image. Finishes an active drag at its last position.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "region_draw",
			Description: "Select a line of text in one call by dragging from (x1,y1) to (x2,y2) in display pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x1": map[string]interface{}{"type": "number"},
					"y1": map[string]interface{}{"type": "number"},
					"x2": map[string]interface{}{"type": "number"},
					"y2": map[string]interface{}{"type": "number"},
				},
				"required": []string{"x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "region_list",
			Description: "List the selected regions in selection order, numbered from 1.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "region_clear",
			Description: "Remove every selected region.",
			InputSchema: emptySchema(),
		},

		// Rendering
		{
			Name:        "canvas_render",
			Description: "Render the selection canvas: the image dimmed, selected regions at full brightness with a border, as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Number the regions in selection order (default true)",
						"default":     true,
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a coordinate grid every N display pixels (default 0, no grid)",
						"default":     0,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid color as hex (default #FF000080)",
						"default":     "#FF000080",
					},
				},
			},
		},
		{
			Name:        "line_preview",
			Description: "Return the enhanced line image extracted for a selected region as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Region number as shown by region_list, starting at 1",
					},
				},
				"required": []string{"index"},
			},
		},

		// Notes
		{
			Name:        "notes_process",
			Description: "Recognize every selected line in order and save the result as a new note. Fails without creating a note if any line fails.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "notes_list",
			Description: "List the notes created in this session, most recent first.",
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
