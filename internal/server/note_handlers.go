package server

import (
	"fmt"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/localrivet/notesmcp/internal/notestore"
	"github.com/localrivet/notesmcp/internal/tools"
)

// handleCreateNote handles the create_note MCP tool call.
func (s *NoteToolServer) handleCreateNote(ctx *server.Context, req tools.CreateNoteRequest) (tools.NoteResponse, error) {
	start := time.Now()
	s.logger.Info("Processing create_note request", "title_length", len(req.Title))

	var tags []string
	if req.Tags != nil {
		tags = tools.ParseTags(*req.Tags)
	}

	note, err := s.store.Create(req.Title, req.Content, tags)
	if err != nil {
		s.observe(tools.ToolCreateNote, start, false)
		return tools.NoteResponse{Error: s.failureMessage(err)}, nil
	}

	s.refreshNoteCount()
	s.observe(tools.ToolCreateNote, start, true)
	s.logger.Info("Successfully created note", "id", note.ID)
	return tools.NoteResponse{Success: true, Note: &note}, nil
}

// handleUpdateNote handles the update_note MCP tool call.
func (s *NoteToolServer) handleUpdateNote(ctx *server.Context, req tools.UpdateNoteRequest) (tools.NoteResponse, error) {
	start := time.Now()
	s.logger.Info("Processing update_note request", "id", req.NoteID)

	note, err := s.store.Update(req.NoteID, notestore.Patch{
		Title:   req.Title,
		Content: req.Content,
		Tags:    tools.OptionalTags(req.Tags),
	})
	if err != nil {
		s.observe(tools.ToolUpdateNote, start, false)
		return tools.NoteResponse{Error: s.failureMessage(err)}, nil
	}

	s.observe(tools.ToolUpdateNote, start, true)
	s.logger.Info("Successfully updated note", "id", note.ID)
	return tools.NoteResponse{Success: true, Note: &note}, nil
}

// handleDeleteNote handles the delete_note MCP tool call.
func (s *NoteToolServer) handleDeleteNote(ctx *server.Context, req tools.NoteIDRequest) (tools.DeleteNoteResponse, error) {
	start := time.Now()
	s.logger.Info("Processing delete_note request", "id", req.NoteID)

	note, err := s.store.Delete(req.NoteID)
	if err != nil {
		s.observe(tools.ToolDeleteNote, start, false)
		return tools.DeleteNoteResponse{Error: s.failureMessage(err)}, nil
	}

	s.refreshNoteCount()
	s.observe(tools.ToolDeleteNote, start, true)
	s.logger.Info("Successfully deleted note", "id", note.ID)
	return tools.DeleteNoteResponse{
		Success: true,
		Message: fmt.Sprintf("Note '%s' deleted", note.Title),
	}, nil
}

// handleGetNote handles the get_note MCP tool call.
func (s *NoteToolServer) handleGetNote(ctx *server.Context, req tools.NoteIDRequest) (tools.NoteResponse, error) {
	start := time.Now()
	s.logger.Debug("Processing get_note request", "id", req.NoteID)

	note, err := s.store.Get(req.NoteID)
	if err != nil {
		s.observe(tools.ToolGetNote, start, false)
		return tools.NoteResponse{Error: s.failureMessage(err)}, nil
	}

	s.observe(tools.ToolGetNote, start, true)
	return tools.NoteResponse{Success: true, Note: &note}, nil
}

// handleListNotes handles the list_notes MCP tool call.
func (s *NoteToolServer) handleListNotes(ctx *server.Context, req tools.ListNotesRequest) (tools.ListNotesResponse, error) {
	start := time.Now()
	s.logger.Debug("Processing list_notes request", "tag", req.Tag)

	notes, err := s.store.List(req.Tag)
	if err != nil {
		s.observe(tools.ToolListNotes, start, false)
		return tools.ListNotesResponse{Notes: []notestore.Note{}, Error: s.failureMessage(err)}, nil
	}

	s.observe(tools.ToolListNotes, start, true)
	s.logger.Info("Listed notes", "tag", req.Tag, "count", len(notes))
	return tools.ListNotesResponse{Success: true, Notes: notes, Count: len(notes)}, nil
}

// handleSearchNotes handles the search_notes MCP tool call.
func (s *NoteToolServer) handleSearchNotes(ctx *server.Context, req tools.SearchNotesRequest) (tools.SearchNotesResponse, error) {
	start := time.Now()
	s.logger.Debug("Processing search_notes request", "query", req.Query)

	results, err := s.store.Search(req.Query)
	if err != nil {
		s.observe(tools.ToolSearchNotes, start, false)
		return tools.SearchNotesResponse{Results: []notestore.Note{}, Error: s.failureMessage(err)}, nil
	}

	s.observe(tools.ToolSearchNotes, start, true)
	s.logger.Info("Searched notes", "query", req.Query, "count", len(results))
	return tools.SearchNotesResponse{Success: true, Results: results, Count: len(results)}, nil
}
