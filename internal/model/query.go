// Package model defines domain types for pulse usage analytics.
package model

import "time"

// Model identifiers that never produce billable usage.
const (
	SyntheticModel = "<synthetic>"
	UnknownModel   = "unknown"
)

// QueryRecord is one reconciled assistant turn: the final emission of a
// message.id paired with the user prompt that triggered it.
//
// The JSON form is the persisted cache schema; changing a tag invalidates
// every cached file.
type QueryRecord struct {
	MessageID          string    `json:"messageId"`
	UserPrompt         *string   `json:"userPrompt"`
	UserTimestamp      time.Time `json:"userTimestamp,omitzero"`
	AssistantTimestamp time.Time `json:"assistantTimestamp,omitzero"`
	Model              string    `json:"model"`

	InputTokens         int64 `json:"inputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	OutputTokens        int64 `json:"outputTokens"`
	TotalTokens         int64 `json:"totalTokens"`

	Cost        float64  `json:"cost"`
	Tools       []string `json:"tools"`
	HasThinking bool     `json:"hasThinking"`
}

// Prompt returns the paired prompt text, or "" when there is none.
func (q QueryRecord) Prompt() string {
	if q.UserPrompt == nil {
		return ""
	}
	return *q.UserPrompt
}

// SumTokens returns input + cache creation + cache read + output.
func SumTokens(input, cacheCreation, cacheRead, output int64) int64 {
	return input + cacheCreation + cacheRead + output
}
