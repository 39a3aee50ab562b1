package source

import (
	"bytes"
	"encoding/json"
	"time"
)

// RawEntry represents a single line in a Claude Code JSONL session file.
type RawEntry struct {
	Type        string      `json:"type"`
	UUID        string      `json:"uuid,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
	SessionID   string      `json:"sessionId,omitempty"`
	IsSidechain bool        `json:"isSidechain,omitempty"`
	IsMeta      bool        `json:"isMeta,omitempty"`
	Message     *RawMessage `json:"message,omitempty"`
}

// RawMessage is the message envelope shared by user and assistant lines.
type RawMessage struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"`
	Model   string    `json:"model"`
	Usage   *RawUsage `json:"usage,omitempty"`
	Content Content   `json:"content"`
}

// RawUsage holds token counts from the API response.
type RawUsage struct {
	InputTokens              int64          `json:"input_tokens"`
	OutputTokens             int64          `json:"output_tokens"`
	CacheCreationInputTokens int64          `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64          `json:"cache_read_input_tokens"`
	CacheCreation            *CacheCreation `json:"cache_creation,omitempty"`
}

// CacheCreation holds the breakdown of cache write tokens by TTL bucket.
type CacheCreation struct {
	Ephemeral5mInputTokens int64 `json:"ephemeral_5m_input_tokens"`
	Ephemeral1hInputTokens int64 `json:"ephemeral_1h_input_tokens"`
}

// CacheCreationTokens returns the cache write total. Older transcripts only
// carry the TTL breakdown, so it is summed when the flat counter is absent.
func (u RawUsage) CacheCreationTokens() int64 {
	if u.CacheCreationInputTokens == 0 && u.CacheCreation != nil {
		return u.CacheCreation.Ephemeral5mInputTokens + u.CacheCreation.Ephemeral1hInputTokens
	}
	return u.CacheCreationInputTokens
}

// ContentBlock is one element of a structured message body.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"` // tool_use
}

// Content block types the reconciler cares about.
const (
	BlockText     = "text"
	BlockToolUse  = "tool_use"
	BlockThinking = "thinking"
)

// Content is a message body, which is either a plain string or an array of
// typed blocks. Any other JSON shape decodes as empty content.
type Content struct {
	Text    string
	IsPlain bool
	Blocks  []ContentBlock
}

// UnmarshalJSON accepts a string or an array of blocks. Blocks that fail to
// decode are dropped individually.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		c.IsPlain = true
		return json.Unmarshal(data, &c.Text)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		c.Blocks = make([]ContentBlock, 0, len(raw))
		for _, r := range raw {
			var b ContentBlock
			if err := json.Unmarshal(r, &b); err != nil {
				continue
			}
			c.Blocks = append(c.Blocks, b)
		}
	}
	return nil
}

// EntryKind distinguishes the two entry types that carry accounting data.
type EntryKind int

const (
	KindUser EntryKind = iota + 1
	KindAssistant
)

// LogEntry is a validated transcript line: a user or assistant entry with a
// message payload, not part of a sidechain.
type LogEntry struct {
	Kind      EntryKind
	UUID      string
	Timestamp time.Time // zero when absent or unparseable
	IsMeta    bool
	Message   RawMessage
}

// Entries is the output of reading one session file, split by channel.
// Assistant entries are in file order and may repeat a message id.
type Entries struct {
	Assistant   []LogEntry
	User        []LogEntry
	ParseErrors int
}

// DiscoveredFile represents a session file found during directory scanning.
type DiscoveredFile struct {
	Path        string // absolute
	Project     string // raw encoded directory name, e.g. "-Users-me-src-app"
	ProjectPath string // decoded path, e.g. "/Users/me/src/app"
	ProjectName string // short display name, e.g. "app"
	SessionID   string // filename stem
}
