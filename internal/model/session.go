package model

import "time"

// DateUnknown is the date bucket for sessions without any timestamp.
const DateUnknown = "unknown"

// SessionSummary holds aggregated metrics for a single session file.
// Every token and cost field is the sum over the session's QueryRecords.
type SessionSummary struct {
	SessionID   string    `json:"sessionId"`
	Project     string    `json:"project"`     // decoded project path
	ProjectName string    `json:"projectName"` // short display name
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
	FirstPrompt string    `json:"firstPrompt"`
	Model       string    `json:"model"`
	QueryCount  int       `json:"queryCount"`

	InputTokens         int64 `json:"inputTokens"`
	OutputTokens        int64 `json:"outputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	TotalTokens         int64 `json:"totalTokens"`

	Cost           float64 `json:"cost"`
	ThinkingTurns  int     `json:"thinkingTurns"`
	TotalToolCalls int     `json:"totalToolCalls"`
	ToolDensity    float64 `json:"toolDensity"`
}

// PromptCostRecord is the cost of one user instruction: a contiguous run of
// query records sharing the same prompt text.
type PromptCostRecord struct {
	Prompt              string  `json:"prompt"`
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	Cost                float64 `json:"cost"`
	Date                string  `json:"date"`
	SessionID           string  `json:"sessionId"`
	Model               string  `json:"model"`
}
