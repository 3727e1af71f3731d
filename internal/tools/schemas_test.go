package tools

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/localrivet/gomcp/util/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/notesmcp/internal/notestore"
)

func TestParseTags(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "work", []string{"work"}},
		{"several", "a,b,c", []string{"a", "b", "c"}},
		{"spaces kept", "a, b", []string{"a", " b"}},
		{"empty entries kept", "a,,b", []string{"a", "", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTags(tc.raw))
		})
	}
}

func TestOptionalTags(t *testing.T) {
	assert.Nil(t, OptionalTags(nil))

	empty := ""
	cleared := OptionalTags(&empty)
	require.NotNil(t, cleared)
	assert.Empty(t, *cleared)

	raw := "x,y"
	assert.Equal(t, []string{"x", "y"}, *OptionalTags(&raw))
}

func TestUpdateRequestDistinguishesAbsentFromEmpty(t *testing.T) {
	var req UpdateNoteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"note_id":3,"title":""}`), &req))

	assert.Equal(t, int64(3), req.NoteID)
	require.NotNil(t, req.Title)
	assert.Equal(t, "", *req.Title)
	assert.Nil(t, req.Content)
	assert.Nil(t, req.Tags)
}

// decodeArgs converts tool-call arguments the way gomcp does before invoking
// a handler: against the schema generated from the request struct.
func decodeArgs(t *testing.T, req interface{}, args map[string]interface{}) interface{} {
	t.Helper()
	sch, err := schema.NewGenerator().GenerateSchema(req)
	require.NoError(t, err)
	converted, err := schema.ValidateAndConvertArgs(sch, args, reflect.TypeOf(req))
	require.NoError(t, err)
	return converted
}

func TestUpdateNoteArgumentDecoding(t *testing.T) {
	t.Run("empty tags replace", func(t *testing.T) {
		req := decodeArgs(t, UpdateNoteRequest{}, map[string]interface{}{
			"note_id": float64(4),
			"tags":    "",
		}).(UpdateNoteRequest)

		assert.Equal(t, int64(4), req.NoteID)
		require.NotNil(t, req.Tags)
		assert.Equal(t, "", *req.Tags)
		assert.Nil(t, req.Title)
		assert.Nil(t, req.Content)

		tags := OptionalTags(req.Tags)
		require.NotNil(t, tags)
		assert.Empty(t, *tags)
	})

	t.Run("absent tags unchanged", func(t *testing.T) {
		req := decodeArgs(t, UpdateNoteRequest{}, map[string]interface{}{
			"note_id": float64(4),
			"title":   "renamed",
		}).(UpdateNoteRequest)

		assert.Nil(t, req.Tags)
		assert.Nil(t, OptionalTags(req.Tags))
		require.NotNil(t, req.Title)
		assert.Equal(t, "renamed", *req.Title)
	})
}

func TestNoteResponseShape(t *testing.T) {
	data, err := json.Marshal(NoteResponse{
		Success: true,
		Note:    &notestore.Note{ID: 1, Title: "t", Tags: []string{}},
	})
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, true, m["success"])
	assert.NotContains(t, m, "error")

	note := m["note"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, note["tags"])
	assert.Contains(t, note, "created_at")
	assert.Contains(t, note, "updated_at")
}

func TestFailureResponseOmitsPayload(t *testing.T) {
	data, err := json.Marshal(NoteResponse{Error: "Note 4 not found"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Note 4 not found"}`, string(data))
}

func TestGreetingPrompt(t *testing.T) {
	assert.Equal(t, "Please write a formal, professional greeting for someone named Ada.",
		GreetingPrompt("Ada", StyleFormal))
	assert.Equal(t, "Please write a warm, friendly greeting for someone named Bo.",
		GreetingPrompt("Bo", "unknown"))
	assert.Equal(t, "Hello, Ada!", Greeting("Ada"))
}
