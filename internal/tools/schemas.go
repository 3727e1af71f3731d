// Package tools defines the tool names and the request/response schemas
// of the notesmcp MCP surface.
package tools

import (
	"github.com/localrivet/notesmcp/internal/notestore"
)

const (
	// ToolCreateNote is the name of the create_note MCP tool
	ToolCreateNote = "create_note"

	// ToolUpdateNote is the name of the update_note MCP tool
	ToolUpdateNote = "update_note"

	// ToolDeleteNote is the name of the delete_note MCP tool
	ToolDeleteNote = "delete_note"

	// ToolGetNote is the name of the get_note MCP tool
	ToolGetNote = "get_note"

	// ToolListNotes is the name of the list_notes MCP tool
	ToolListNotes = "list_notes"

	// ToolSearchNotes is the name of the search_notes MCP tool
	ToolSearchNotes = "search_notes"

	// ToolAdd is the name of the add MCP tool
	ToolAdd = "add"

	// ToolOpenSettings is the name of the open_settings MCP tool
	ToolOpenSettings = "open_settings"

	// ToolSetBrightness is the name of the set_brightness MCP tool
	ToolSetBrightness = "set_brightness"

	// ResourceGreeting is the URI template of the greeting resource
	ResourceGreeting = "/greeting/{name}"

	// PromptGreetUser is the name of the greeting prompt
	PromptGreetUser = "greet_user"
)

// CreateNoteRequest defines the input schema for create_note tool
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`

	// Tags is a comma-separated list of labels
	Tags *string `json:"tags,omitempty"`
}

// UpdateNoteRequest defines the input schema for update_note tool.
// Omitted fields are left unchanged; present fields replace, even when empty.
type UpdateNoteRequest struct {
	NoteID  int64   `json:"note_id"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`

	// Tags is a comma-separated list of labels that replaces the current tags
	Tags *string `json:"tags,omitempty"`
}

// NoteIDRequest defines the input schema for tools addressing one note
type NoteIDRequest struct {
	NoteID int64 `json:"note_id"`
}

// ListNotesRequest defines the input schema for list_notes tool
type ListNotesRequest struct {
	// Tag restricts the listing to notes carrying exactly this tag
	Tag string `json:"tag,omitempty"`
}

// SearchNotesRequest defines the input schema for search_notes tool
type SearchNotesRequest struct {
	Query string `json:"query"`
}

// NoteResponse is returned by create_note, update_note and get_note
type NoteResponse struct {
	Success bool            `json:"success"`
	Note    *notestore.Note `json:"note,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// DeleteNoteResponse is returned by delete_note
type DeleteNoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListNotesResponse is returned by list_notes
type ListNotesResponse struct {
	Success bool             `json:"success"`
	Notes   []notestore.Note `json:"notes"`
	Count   int              `json:"count"`
	Error   string           `json:"error,omitempty"`
}

// SearchNotesResponse is returned by search_notes
type SearchNotesResponse struct {
	Success bool             `json:"success"`
	Results []notestore.Note `json:"results"`
	Count   int              `json:"count"`
	Error   string           `json:"error,omitempty"`
}

// AddRequest defines the input schema for add tool
type AddRequest struct {
	A int `json:"a"`
	B int `json:"b"`
}

// AddResponse is returned by add
type AddResponse struct {
	Result int `json:"result"`
}

// GreetingRequest carries the name segment of the greeting resource URI
type GreetingRequest struct {
	Name string `json:"name" path:"name"`
}

// OpenSettingsRequest defines the (empty) input schema for open_settings tool
type OpenSettingsRequest struct{}

// SetBrightnessRequest defines the input schema for set_brightness tool
type SetBrightnessRequest struct {
	// Percent is clamped to the range 0-100
	Percent int `json:"percent"`
}

// SystemResponse is returned by the OS automation tools
type SystemResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
