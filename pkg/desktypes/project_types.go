// Package desktypes defines the shared data types for assistdesk.
package desktypes

import "time"

// Project is a named upstream credential plus the capability count recorded
// when the credential was last validated. Exactly one project is active at a
// time; the default project is synthesized from the environment credential and
// can never be deleted.
type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	APIKey     string    `json:"api_key"`
	CreatedAt  time.Time `json:"created_at"`
	ModelCount int       `json:"model_count"` // relevant models counted by the capability probe
	IsDefault  bool      `json:"is_default"`
}

// DefaultProjectID is the fixed id of the project synthesized from the
// environment fallback credential.
const DefaultProjectID = "default"

// MaskedKey returns the credential with everything after the first ten
// characters hidden, for display and logging.
func (p Project) MaskedKey() string {
	if len(p.APIKey) <= 10 {
		return p.APIKey
	}
	return p.APIKey[:10] + "..."
}
