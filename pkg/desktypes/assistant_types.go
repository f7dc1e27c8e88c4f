package desktypes

import "time"

// Assistant is a configured conversational agent bound to one uploaded,
// indexed document and a theme. An assistant belongs implicitly to whichever
// project was active when the directory was loaded. Token and cost totals are
// backend-maintained aggregates and may lag behind the cached history.
type Assistant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Theme          string    `json:"theme"`
	FileName       string    `json:"file_name,omitempty"`
	FileType       string    `json:"file_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	MessageCount   int       `json:"message_count"`
	TotalTokens    int       `json:"total_tokens"`
	TotalCostEuros float64   `json:"total_cost_euros"`
}

// CreationSpec describes the inputs to the assistant creation workflow:
// a display name, a theme the system prompt is built around, and the source
// document that gets indexed server-side.
type CreationSpec struct {
	Name  string
	Theme string
}
