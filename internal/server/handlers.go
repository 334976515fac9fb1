package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/handwrite-mcp/internal/credential"
	"github.com/ironsheep/handwrite-mcp/internal/geometry"
	"github.com/ironsheep/handwrite-mcp/internal/imaging"
	"github.com/ironsheep/handwrite-mcp/internal/notes"
	"github.com/ironsheep/handwrite-mcp/internal/selector"
	"github.com/ironsheep/handwrite-mcp/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "notes_process").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argumentError marks a malformed tool call, reported as -32602.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{err: err}
	}
	return nil
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed calls return -32602. Tool execution errors return -32000 with
// the user-facing message as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", argErr.Error())
		}
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", session.UserMessage(err))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Credential
	case "credential_set":
		return s.handleCredentialSet(args)
	case "credential_status":
		return s.handleCredentialStatus(args)

	// Image
	case "image_load":
		return s.handleImageLoad(args)
	case "image_upload":
		return s.handleImageUpload(args)

	// Selection
	case "region_pointer_down":
		return s.handlePointerDown(args)
	case "region_pointer_move":
		return s.handlePointerMove(args)
	case "region_pointer_up":
		return s.handlePointerUp(args)
	case "region_pointer_leave":
		return s.handlePointerLeave(args)
	case "region_draw":
		return s.handleRegionDraw(args)
	case "region_list":
		return s.handleRegionList(args)
	case "region_clear":
		return s.handleRegionClear(args)

	// Rendering
	case "canvas_render":
		return s.handleCanvasRender(args)
	case "line_preview":
		return s.handleLinePreview(args)

	// Notes
	case "notes_process":
		return s.handleNotesProcess(ctx, args)
	case "notes_list":
		return s.handleNotesList(args)

	default:
		return nil, &argumentError{err: fmt.Errorf("unknown tool: %s", name)}
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Credential Handlers ===

type credentialSetArgs struct {
	APIKey string `json:"api_key"`
}

type credentialStatus struct {
	Backend    string `json:"backend,omitempty"`
	Configured bool   `json:"configured"`
	Key        string `json:"key,omitempty"`
}

func (s *Server) handleCredentialSet(args json.RawMessage) (interface{}, error) {
	var a credentialSetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.credentials == nil {
		return nil, credential.ErrMissing
	}
	if err := s.credentials.Set(a.APIKey); err != nil {
		return nil, err
	}
	s.logger.Info("api key saved", "key", credential.Redact(a.APIKey))
	return s.handleCredentialStatus(nil)
}

func (s *Server) handleCredentialStatus(_ json.RawMessage) (interface{}, error) {
	status := credentialStatus{Backend: s.backend}
	if s.credentials != nil {
		if key, ok := s.credentials.Get(); ok {
			status.Configured = true
			status.Key = credential.Redact(key)
		}
	}
	return status, nil
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path           string  `json:"path"`
	ContainerWidth float64 `json:"container_width"`
	Reload         bool    `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, &argumentError{err: errors.New("path is required")}
	}
	return s.session.LoadFile(a.Path, a.ContainerWidth, a.Reload)
}

type imageUploadArgs struct {
	Name           string  `json:"name"`
	MIMEType       string  `json:"mime_type"`
	DataBase64     string  `json:"data_base64"`
	ContainerWidth float64 `json:"container_width"`
}

func (s *Server) handleImageUpload(args json.RawMessage) (interface{}, error) {
	var a imageUploadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(a.DataBase64)
	if err != nil {
		return nil, &imaging.InvalidImageError{Reason: "Invalid image file", Err: err}
	}
	return s.session.LoadUpload(imaging.Upload{
		Name:     a.Name,
		MIMEType: a.MIMEType,
		Data:     data,
	}, a.ContainerWidth)
}

// === Selection Handlers ===

type pointArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (a pointArgs) point() geometry.Point {
	return geometry.Point{X: a.X, Y: a.Y}
}

type drawArgs struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type pointerResult struct {
	Accepted bool   `json:"accepted"`
	State    string `json:"state"`
}

// commitResult reports the end of a drag.
type commitResult struct {
	Committed bool         `json:"committed"`
	Region    *regionEntry `json:"region,omitempty"`
	Count     int          `json:"count"`
}

// regionEntry is a committed region as reported to the client.
type regionEntry struct {
	Index  int     `json:"index"`
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Failed bool    `json:"failed"`
	Error  string  `json:"error,omitempty"`

	// LineWidth and LineHeight are the extracted line size in pixels.
	LineWidth  int `json:"line_width,omitempty"`
	LineHeight int `json:"line_height,omitempty"`
}

func newRegionEntry(index int, r selector.Region) *regionEntry {
	e := &regionEntry{
		Index:  index,
		ID:     r.ID,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		Failed: r.Failed,
	}
	if r.Err != nil {
		e.Error = session.UserMessage(r.Err)
	}
	if r.Line != nil {
		e.LineWidth = r.Line.Width
		e.LineHeight = r.Line.Height
	}
	return e
}

func (s *Server) pointerResponse(accepted bool) (interface{}, error) {
	state := selector.Idle.String()
	if accepted {
		state = selector.Dragging.String()
	}
	return pointerResult{Accepted: accepted, State: state}, nil
}

func (s *Server) handlePointerDown(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ok, err := s.session.PointerDown(a.point())
	if err != nil {
		return nil, err
	}
	return s.pointerResponse(ok)
}

func (s *Server) handlePointerMove(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ok, err := s.session.PointerMove(a.point())
	if err != nil {
		return nil, err
	}
	return s.pointerResponse(ok)
}

func (s *Server) handlePointerUp(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.commitResponse(s.session.PointerUp(a.point()))
}

func (s *Server) handlePointerLeave(_ json.RawMessage) (interface{}, error) {
	return s.commitResponse(s.session.PointerLeave())
}

func (s *Server) handleRegionDraw(args json.RawMessage) (interface{}, error) {
	var a drawArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.commitResponse(s.session.Draw(
		geometry.Point{X: a.X1, Y: a.Y1},
		geometry.Point{X: a.X2, Y: a.Y2},
	))
}

// commitResponse turns a finished drag into a tool result. An extraction
// failure is returned as the tool error; the region stays committed.
func (s *Server) commitResponse(c selector.Commit, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	regions, err := s.session.Regions()
	if err != nil {
		return nil, err
	}
	res := commitResult{Committed: c.Committed, Count: len(regions)}
	if c.Committed {
		res.Region = newRegionEntry(len(regions), c.Region)
	}
	return res, nil
}

type regionListResult struct {
	Count   int            `json:"count"`
	Regions []*regionEntry `json:"regions"`
}

func (s *Server) handleRegionList(_ json.RawMessage) (interface{}, error) {
	regions, err := s.session.Regions()
	if err != nil {
		return nil, err
	}
	res := regionListResult{Count: len(regions), Regions: make([]*regionEntry, 0, len(regions))}
	for i, r := range regions {
		res.Regions = append(res.Regions, newRegionEntry(i+1, r))
	}
	return res, nil
}

func (s *Server) handleRegionClear(_ json.RawMessage) (interface{}, error) {
	if err := s.session.Clear(); err != nil {
		return nil, err
	}
	return regionListResult{Regions: []*regionEntry{}}, nil
}

// === Rendering Handlers ===

type canvasRenderArgs struct {
	ShowLabels  *bool  `json:"show_labels"`
	GridSpacing int    `json:"grid_spacing"`
	GridColor   string `json:"grid_color"`
}

func (s *Server) handleCanvasRender(args json.RawMessage) (interface{}, error) {
	var a canvasRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	opts := selector.DefaultRenderOptions()
	opts.ShowLabels = true
	if a.ShowLabels != nil {
		opts.ShowLabels = *a.ShowLabels
	}
	if a.GridSpacing < 0 {
		return nil, &argumentError{err: fmt.Errorf("grid_spacing must be positive, got %d", a.GridSpacing)}
	}
	opts.GridSpacing = a.GridSpacing
	if a.GridColor != "" {
		c, err := imaging.ParseColor(a.GridColor)
		if err != nil {
			return nil, &argumentError{err: err}
		}
		opts.GridColor = c
	}

	img, err := s.session.Render(opts)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBase64PNG(img)
}

type linePreviewArgs struct {
	Index int `json:"index"`
}

type linePreviewResult struct {
	Index    int    `json:"index"`
	RegionID string `json:"region_id"`
	*imaging.EncodedImage
}

func (s *Server) handleLinePreview(args json.RawMessage) (interface{}, error) {
	var a linePreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	line, err := s.session.Line(a.Index)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodeBase64PNG(line.Image)
	if err != nil {
		return nil, err
	}
	return linePreviewResult{Index: a.Index, RegionID: line.RegionID, EncodedImage: enc}, nil
}

// === Notes Handlers ===

func (s *Server) handleNotesProcess(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return s.session.Process(ctx)
}

type notesListResult struct {
	Count int           `json:"count"`
	Notes []*notes.Note `json:"notes"`
}

func (s *Server) handleNotesList(_ json.RawMessage) (interface{}, error) {
	list := s.session.Notes()
	return notesListResult{Count: len(list), Notes: list}, nil
}
