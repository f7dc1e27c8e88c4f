// Package desktypes defines the shared data types for assistdesk.
// This file contains the analytics view types: authoritative backend
// aggregates and the derived snapshot the aggregator builds from them.
package desktypes

import "time"

// Pricing constants for the hosted model, per 1000 tokens, converted from USD
// at an approximate fixed rate.
const (
	InputCostPer1KTokensEuros  = 0.0023
	OutputCostPer1KTokensEuros = 0.0092
	USDToEuroRate              = 0.92
)

// DashboardStats is the authoritative aggregate returned by the backend.
// All fields fall back to zero when the backend is unreachable.
type DashboardStats struct {
	TotalMessages   int     `json:"total_messages"`
	TotalTokens     int     `json:"total_tokens"`
	TotalCostEuros  float64 `json:"total_cost_euros"`
	TotalAssistants int     `json:"total_assistants"`
}

// AssistantCost is a per-assistant cost breakdown row.
type AssistantCost struct {
	Name           string  `json:"name"`
	Theme          string  `json:"theme"`
	TotalTokens    int     `json:"total_tokens"`
	TotalCostEuros float64 `json:"total_cost_euros"`
	MessageCount   int     `json:"message_count"`
}

// DailyCost is one day of the backend's cost series.
type DailyCost struct {
	Date       string  `json:"date"`
	CostEuros  float64 `json:"cost_euros"`
	TokensUsed int     `json:"tokens_used"`
}

// AnalyticsData is the optional detailed breakdown endpoint payload. Both
// slices may be empty when the endpoint is unavailable or restricted.
type AnalyticsData struct {
	CostByAssistant []AssistantCost `json:"cost_by_assistant"`
	DailyCosts      []DailyCost     `json:"daily_costs"`
}

// DayActivity is one bar of the trailing seven-day activity series.
//
// The series is an approximation: when the backend provides no per-day
// breakdown the aggregator distributes the authoritative message total across
// seven days with random jitter around an even split. It is illustrative
// only and must never be treated as auditable.
type DayActivity struct {
	Date     string `json:"date"`
	Messages int    `json:"messages"`
}

// ConversationSummary is one row of the recent-conversations view: the last
// cached message of an assistant with a non-empty history, content truncated
// for preview.
type ConversationSummary struct {
	AssistantID    string    `json:"assistant_id"`
	AssistantName  string    `json:"assistant_name"`
	AssistantTheme string    `json:"assistant_theme"`
	LastMessage    string    `json:"last_message"`
	Timestamp      time.Time `json:"timestamp"`
	MessageCount   int       `json:"message_count"`
	Tokens         int       `json:"tokens"`
	CostEuros      float64   `json:"cost_euros"`
}

// AnalyticsSnapshot is the derived usage/cost view. It is recomputed on
// demand, never persisted, and degrades to zero/derived values when the
// authoritative fetch fails.
type AnalyticsSnapshot struct {
	TotalMessages           int                   `json:"total_messages"`
	TotalAssistants         int                   `json:"total_assistants"`
	TotalTokens             int                   `json:"total_tokens"`
	TotalCostEuros          float64               `json:"total_cost_euros"`
	AvgMessagesPerAssistant int                   `json:"avg_messages_per_assistant"`
	MostActiveAssistant     *Assistant            `json:"most_active_assistant,omitempty"`
	MessagesByTheme         map[string]int        `json:"messages_by_theme"`
	RecentConversations     []ConversationSummary `json:"recent_conversations"`
	DailyActivity           []DayActivity         `json:"daily_activity"`
	CostByAssistant         []AssistantCost       `json:"cost_by_assistant"`
	DailyCosts              []DailyCost           `json:"daily_costs"`
}
