// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes memo tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/noteservice"
)

// RecordFormatURI is the resource URI of RecordFormatContract.
const RecordFormatURI = "memo://record-format"

// Server wraps the MCP server with memo tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all memo tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"memo",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	statuses := []string{"undone", "done", "postponed"}

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Append a new undone note. Content is one line of text."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text, no line breaks")),
		mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD; defaults to today")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in file order, optionally filtered by status. "+
			"With latest=n the first n+1 notes are skipped."),
		mcp.WithNumber("latest", mcp.Min(0), mcp.Description("Skip the first latest+1 notes")),
		mcp.WithString("status", mcp.Enum(statuses...), mcp.Description("Keep notes with this status")),
		mcp.WithBoolean("exclude", mcp.Description("Keep notes whose status differs instead")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("notes_by_date",
		mcp.WithDescription("Group notes by date, dates in order of first appearance."),
	), s.notesByDate)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-sensitive substring search over note dates and contents."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to look for")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("match_notes",
		mcp.WithDescription("Case-insensitive regular expression matched at the start of note contents."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression (RE2 syntax)")),
	), s.matchNotes)

	s.mcp.AddTool(mcp.NewTool("mark_note",
		mcp.WithDescription("Set the status of one note, or of every note with all=true."),
		mcp.WithNumber("id", mcp.Description("Note id; ignored when all is true")),
		mcp.WithString("status", mcp.Required(), mcp.Enum(statuses...), mcp.Description("New status")),
		mcp.WithBoolean("all", mcp.Description("Mark every note")),
	), s.markNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete one note by id, or the whole memo file with all=true."),
		mcp.WithNumber("id", mcp.Description("Note id; ignored when all is true")),
		mcp.WithBoolean("all", mcp.Description("Delete every note")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("organize_notes",
		mcp.WithDescription("Renumber notes to 1..N in their current order."),
	), s.organizeNotes)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the memo file record format."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(RecordFormatURI, "Memo Record Format",
			mcp.WithResourceDescription("Line format of the memo file."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError turns engine errors into tool results; the protocol call itself
// succeeds.
func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("memo file not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func notesResult(notes []models.Note) *mcp.CallToolResult {
	if notes == nil {
		notes = []models.Note{}
	}
	return jsonResult(notes)
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date := req.GetString("date", "")
	if date == "" {
		date = s.svc.Today()
	}
	note, err := s.svc.Add(ctx, content, date)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(note), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		notes []models.Note
		err   error
	)
	args := req.GetArguments()
	switch {
	case args["latest"] != nil:
		n, reqErr := req.RequireInt("latest")
		if reqErr != nil {
			return mcp.NewToolResultError(reqErr.Error()), nil
		}
		notes, err = s.svc.ListLatest(ctx, n)
	case req.GetString("status", "") != "":
		status, parseErr := noteservice.ParseStatus(req.GetString("status", ""))
		if parseErr != nil {
			return toolError(parseErr), nil
		}
		notes, err = s.svc.FilterByStatus(ctx, status, req.GetBool("exclude", false))
	default:
		notes, err = s.svc.ListAll(ctx)
	}
	if err != nil {
		return toolError(err), nil
	}
	return notesResult(notes), nil
}

func (s *Server) notesByDate(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.svc.GroupByDate(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if groups == nil {
		groups = []models.DateGroup{}
	}
	return jsonResult(groups), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.SearchSubstring(ctx, query)
	if err != nil {
		return toolError(err), nil
	}
	return notesResult(notes), nil
}

func (s *Server) matchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.SearchPattern(ctx, pattern)
	if err != nil {
		return toolError(err), nil
	}
	return notesResult(notes), nil
}

func (s *Server) markNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := noteservice.ParseStatus(raw)
	if err != nil {
		return toolError(err), nil
	}

	if req.GetBool("all", false) {
		n, err := s.svc.MarkAll(ctx, status)
		if err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("marked %d notes %s", n, status)), nil
	}

	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := s.svc.Mark(ctx, id, status)
	if err != nil {
		return toolError(err), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("note %d not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("marked note %d %s", id, status)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetBool("all", false) {
		if err := s.svc.DeleteAll(ctx); err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText("deleted all notes"), nil
	}

	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := s.svc.Delete(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("note %d not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted note %d", id)), nil
}

func (s *Server) organizeNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.Organize(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return notesResult(notes), nil
}

func (s *Server) getRecordFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RecordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
