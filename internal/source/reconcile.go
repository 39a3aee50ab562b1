package source

import (
	"strings"
	"time"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/model"
)

// Prefixes of user entries that are local slash-command plumbing rather than
// something the user typed to the model.
var commandMarkers = []string{"<local-command", "<command-name"}

// userTurn is one entry on the user timeline used for pairing.
type userTurn struct {
	text      *string
	timestamp time.Time
}

// Reconcile turns a file's entries into query records:
//
//  1. Assistant entries are upserted by message.id. A streamed response is
//     written several times and only the last copy has final usage, so the
//     last line in the file wins. File order is authoritative; embedded
//     timestamps are never used to pick a winner. Each id keeps the position
//     of its first appearance.
//  2. Each surviving entry is paired with the latest user prompt whose
//     timestamp is at or before its own, using a cursor that only moves
//     forward.
//  3. Entries without usage or from the synthetic model yield no record.
func Reconcile(entries Entries, prices *config.PriceTable) []model.QueryRecord {
	assistant := dedupeByMessageID(entries.Assistant)
	timeline := buildUserTimeline(entries.User)

	records := make([]model.QueryRecord, 0, len(assistant))
	cursor := -1

	for _, entry := range assistant {
		msg := entry.Message
		if msg.Usage == nil {
			continue
		}
		modelName := msg.Model
		if modelName == "" {
			modelName = model.UnknownModel
		}
		if modelName == model.SyntheticModel {
			continue
		}

		for cursor+1 < len(timeline) && !timeline[cursor+1].timestamp.After(entry.Timestamp) {
			cursor++
		}

		rec := model.QueryRecord{
			MessageID:          msg.ID,
			AssistantTimestamp: entry.Timestamp,
			Model:              modelName,
			Tools:              []string{},
		}
		if cursor >= 0 {
			rec.UserPrompt = timeline[cursor].text
			rec.UserTimestamp = timeline[cursor].timestamp
		}

		rec.InputTokens = msg.Usage.InputTokens
		rec.CacheCreationTokens = msg.Usage.CacheCreationTokens()
		rec.CacheReadTokens = msg.Usage.CacheReadInputTokens
		rec.OutputTokens = msg.Usage.OutputTokens
		rec.TotalTokens = model.SumTokens(rec.InputTokens, rec.CacheCreationTokens, rec.CacheReadTokens, rec.OutputTokens)
		rec.Cost = recordCost(rec, prices)

		for _, b := range msg.Content.Blocks {
			switch b.Type {
			case BlockToolUse:
				if b.Name != "" {
					rec.Tools = append(rec.Tools, b.Name)
				}
			case BlockThinking:
				rec.HasThinking = true
			}
		}

		records = append(records, rec)
	}

	return records
}

// Reprice recomputes every record's Cost from its token counts in place.
// Cached records carry the cost from the table in effect when they were
// parsed, so they are repriced whenever they are reused.
func Reprice(records []model.QueryRecord, prices *config.PriceTable) {
	for i := range records {
		records[i].Cost = recordCost(records[i], prices)
	}
}

func recordCost(rec model.QueryRecord, prices *config.PriceTable) float64 {
	return prices.Cost(rec.Model, config.Usage{
		InputTokens:         rec.InputTokens,
		CacheCreationTokens: rec.CacheCreationTokens,
		CacheReadTokens:     rec.CacheReadTokens,
		OutputTokens:        rec.OutputTokens,
	})
}

// dedupeByMessageID keeps the last entry for each message id, ordered by the
// id's first appearance. Entries without an id cannot be deduplicated and
// are dropped.
func dedupeByMessageID(entries []LogEntry) []LogEntry {
	index := make(map[string]int, len(entries))
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		id := e.Message.ID
		if id == "" {
			continue
		}
		if i, ok := index[id]; ok {
			out[i] = e
			continue
		}
		index[id] = len(out)
		out = append(out, e)
	}
	return out
}

func buildUserTimeline(entries []LogEntry) []userTurn {
	timeline := make([]userTurn, 0, len(entries))
	for _, e := range entries {
		if e.IsMeta || e.Message.Role != "user" {
			continue
		}
		text := userText(e.Message.Content)
		if isCommandText(text) {
			continue
		}
		turn := userTurn{timestamp: e.Timestamp}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			turn.text = &trimmed
		}
		timeline = append(timeline, turn)
	}
	return timeline
}

// userText returns the plain-string body, or all text blocks joined by
// newlines. Tool results and images contribute nothing.
func userText(c Content) string {
	if c.IsPlain {
		return c.Text
	}
	var parts []string
	for _, b := range c.Blocks {
		if b.Type == BlockText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func isCommandText(text string) bool {
	text = strings.TrimLeft(text, " \t\r\n")
	for _, m := range commandMarkers {
		if strings.HasPrefix(text, m) {
			return true
		}
	}
	return false
}

// ParseResult holds the output of parsing a single session file.
type ParseResult struct {
	Records     []model.QueryRecord
	ParseErrors int
	Err         error
}

// ParseFile reads a session file and reconciles it into query records.
func ParseFile(df DiscoveredFile, prices *config.PriceTable) ParseResult {
	entries, err := ReadLog(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	return ParseResult{
		Records:     Reconcile(entries, prices),
		ParseErrors: entries.ParseErrors,
	}
}
