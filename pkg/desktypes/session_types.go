// Package desktypes defines the shared data types for assistdesk.
// This file contains the conversation types: message roles, chat messages,
// and the serializable snapshot format used for session export and import.
package desktypes

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies the author of a chat message. It is a closed enum rather
// than a free-form string so that a typo cannot silently create a third role.
type Role int

const (
	// RoleUser marks a message written by the operator.
	RoleUser Role = iota
	// RoleAssistant marks a message produced by the hosted assistant.
	RoleAssistant
)

// String returns the wire representation of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a wire role string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	default:
		return RoleUser, fmt.Errorf("unknown message role %q", s)
	}
}

// MarshalJSON encodes the role as its wire string.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a wire role string.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML encodes the role as its wire string for session export.
func (r Role) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// UnmarshalYAML decodes a wire role string from a session export file.
func (r *Role) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ChatMessage represents a single entry in an assistant's conversation
// history. The ID identifies the exact entry so an optimistic append can be
// rolled back without touching neighbouring messages. Messages are ordered by
// insertion, not timestamp: optimistic entries are inserted before the
// authoritative timestamp is known.
type ChatMessage struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// SessionSnapshot is the on-disk format produced by session export.
type SessionSnapshot struct {
	AssistantID   string        `yaml:"assistant_id"`
	AssistantName string        `yaml:"assistant_name,omitempty"`
	ExportedAt    time.Time     `yaml:"exported_at"`
	Messages      []ChatMessage `yaml:"messages"`
}
