package runner

import "encoding/json"

// SearchResult is one hit returned by a search callback.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// SearchCallback serves web-search requests issued by the model.
type SearchCallback func(query string) ([]SearchResult, error)

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolCallback executes one tool call and returns its textual result.
type ToolCallback func(call ToolCall) (string, error)

// Tool describes a callable tool advertised to the model.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolCallbackWithTool pairs a callback with the tool definition it serves.
// Only vision models register these.
type ToolCallbackWithTool struct {
	Callback ToolCallback
	Tool     Tool
}
