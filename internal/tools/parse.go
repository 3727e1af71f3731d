package tools

import (
	"fmt"
	"strings"
)

// ParseTags splits a comma-separated tag list. Entries are kept verbatim,
// including surrounding spaces; an empty string yields no tags.
func ParseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

// OptionalTags parses tags when present and returns nil when absent, so the
// store can tell "leave unchanged" apart from "clear".
func OptionalTags(raw *string) *[]string {
	if raw == nil {
		return nil
	}
	tags := ParseTags(*raw)
	return &tags
}

// Greeting styles accepted by the greet_user prompt.
const (
	StyleFriendly = "friendly"
	StyleFormal   = "formal"
	StyleCasual   = "casual"
)

var greetingStyles = map[string]string{
	StyleFriendly: "Please write a warm, friendly greeting",
	StyleFormal:   "Please write a formal, professional greeting",
	StyleCasual:   "Please write a casual, relaxed greeting",
}

// GreetingInstruction returns the instruction for style, falling back to
// the friendly style for unknown values.
func GreetingInstruction(style string) string {
	if instruction, ok := greetingStyles[style]; ok {
		return instruction
	}
	return greetingStyles[StyleFriendly]
}

// GreetingPrompt renders the full greet_user prompt text.
func GreetingPrompt(name, style string) string {
	return fmt.Sprintf("%s for someone named %s.", GreetingInstruction(style), name)
}

// Greeting renders the greeting resource body.
func Greeting(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}
