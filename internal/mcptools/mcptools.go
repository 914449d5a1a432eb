// Package mcptools exposes a board as Model Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/porticus-lab/tabshot"
)

// Navigator drives the tab that captures are taken from.
type Navigator interface {
	OpenTab(ctx context.Context, url string) error
	URL() string
}

// Register adds the tabshot tools to srv. tab may be nil, in which case
// tabshot_open_tab reports an error.
func Register(srv *mcp.Server, board *tabshot.Board, tab Navigator) {
	t := &tools{board: board, tab: tab}
	t.registerOpenTab(srv)
	t.registerCapture(srv)
	t.registerList(srv)
	t.registerDelete(srv)
	t.registerMove(srv)
	t.registerExport(srv)
}

type tools struct {
	board *tabshot.Board
	tab   Navigator
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool registers a tool whose arguments decode into Req and whose
// response is returned as JSON text.
func addTool[Req any](srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := fn(ctx, &r)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// ItemSummary describes one board item without its image payload.
type ItemSummary struct {
	Index     int    `json:"index"`
	MediaType string `json:"media_type"`
	Bytes     int    `json:"bytes"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// ListResponse is the result of tabshot_list and the mutating tools.
type ListResponse struct {
	URL   string        `json:"url,omitempty"`
	Count int           `json:"count"`
	Items []ItemSummary `json:"items"`
}

func (t *tools) list() *ListResponse {
	items := t.board.Items()
	resp := &ListResponse{Count: len(items), Items: make([]ItemSummary, len(items))}
	if t.tab != nil {
		resp.URL = t.tab.URL()
	}
	for i, it := range items {
		s := ItemSummary{Index: i, MediaType: it.MediaType(), Bytes: it.Size()}
		if cfg, _, err := it.Config(); err == nil {
			s.Width, s.Height = cfg.Width, cfg.Height
		}
		resp.Items[i] = s
	}
	return resp
}

// --- open_tab ---

type openTabRequest struct {
	URL string `json:"url"`
}

func (t *tools) registerOpenTab(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabshot_open_tab",
		Description: "Navigate the capture tab to a URL.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Absolute URL to open"},
		}, []string{"url"}),
	}
	addTool(srv, tool, func(ctx context.Context, r *openTabRequest) (any, error) {
		if t.tab == nil {
			return nil, errors.New("no tab to navigate")
		}
		if r.URL == "" {
			return nil, errors.New("url is required")
		}
		if err := t.tab.OpenTab(ctx, r.URL); err != nil {
			return nil, err
		}
		return t.list(), nil
	})
}

// --- capture ---

type captureRequest struct{}

func (t *tools) registerCapture(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabshot_capture",
		Description: "Capture the visible tab and append it to the board.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	addTool(srv, tool, func(ctx context.Context, _ *captureRequest) (any, error) {
		if _, err := t.board.Capture(ctx); err != nil {
			return nil, err
		}
		return t.list(), nil
	})
}

// --- list ---

type listRequest struct{}

func (t *tools) registerList(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabshot_list",
		Description: "List the screenshots on the board in page order.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	addTool(srv, tool, func(context.Context, *listRequest) (any, error) {
		return t.list(), nil
	})
}

// --- delete ---

type deleteRequest struct {
	Index *int `json:"index"`
}

func (t *tools) registerDelete(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabshot_delete",
		Description: "Remove a screenshot from the board.",
		InputSchema: inputSchema(map[string]any{
			"index": map[string]any{"type": "integer", "description": "Zero-based position of the screenshot"},
		}, []string{"index"}),
	}
	addTool(srv, tool, func(ctx context.Context, r *deleteRequest) (any, error) {
		if r.Index == nil {
			return nil, errors.New("index is required")
		}
		if err := t.board.Delete(ctx, *r.Index); err != nil {
			return nil, err
		}
		return t.list(), nil
	})
}

// --- move ---

type moveRequest struct {
	From   *int `json:"from"`
	Before *int `json:"before"`
}

func (t *tools) registerMove(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabshot_move",
		Description: "Move a screenshot immediately before another one. A before equal to the count moves it to the end.",
		InputSchema: inputSchema(map[string]any{
			"from":   map[string]any{"type": "integer", "description": "Zero-based position of the screenshot to move"},
			"before": map[string]any{"type": "integer", "description": "Zero-based position it is dropped onto"},
		}, []string{"from", "before"}),
	}
	addTool(srv, tool, func(ctx context.Context, r *moveRequest) (any, error) {
		if r.From == nil || r.Before == nil {
			return nil, errors.New("from and before are required")
		}
		if err := t.board.Move(ctx, *r.From, *r.Before); err != nil {
			return nil, err
		}
		return t.list(), nil
	})
}

// --- export ---

type exportRequest struct {
	Dir string `json:"dir"`
}

// ExportResponse is the result of tabshot_export.
type ExportResponse struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Bytes int    `json:"bytes"`
}

func (t *tools) registerExport(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabshot_export",
		Description: "Export the board as a PDF with one screenshot per page and save it to a directory.",
		InputSchema: inputSchema(map[string]any{
			"dir": map[string]any{"type": "string", "description": "Output directory (default: current directory)"},
		}, nil),
	}
	addTool(srv, tool, func(ctx context.Context, r *exportRequest) (any, error) {
		res, err := t.board.Export(ctx)
		if err != nil {
			return nil, err
		}
		dir := r.Dir
		if dir == "" {
			dir = "."
		}
		path, err := res.Save(dir)
		if err != nil {
			return nil, err
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		return &ExportResponse{Path: path, Pages: res.Pages(), Bytes: res.Len()}, nil
	})
}
