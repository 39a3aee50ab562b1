package pipeline

import (
	"time"
	"unicode/utf8"

	"github.com/theirongolddev/pulse/internal/model"
	"github.com/theirongolddev/pulse/internal/source"
)

const (
	firstPromptMaxRunes = 200
	promptGroupMaxRunes = 300
	noPrompt            = "(no prompt)"
)

// SessionResult is everything one session file contributes to the rollups.
type SessionResult struct {
	Summary model.SessionSummary
	Prompts []model.PromptCostRecord
	Tools   map[string]int
	Records []model.QueryRecord
}

// SummarizeSession folds a file's query records into a session summary, its
// prompt cost groups and its tool tally. history may be nil.
func SummarizeSession(file source.DiscoveredFile, records []model.QueryRecord, history source.PromptHistory) SessionResult {
	s := model.SessionSummary{
		SessionID:   file.SessionID,
		Project:     file.ProjectPath,
		ProjectName: file.ProjectName,
		QueryCount:  len(records),
	}
	tools := make(map[string]int)

	for _, q := range records {
		s.InputTokens += q.InputTokens
		s.OutputTokens += q.OutputTokens
		s.CacheCreationTokens += q.CacheCreationTokens
		s.CacheReadTokens += q.CacheReadTokens
		s.Cost += q.Cost
		if q.HasThinking {
			s.ThinkingTurns++
		}
		s.TotalToolCalls += len(q.Tools)
		for _, name := range q.Tools {
			tools[name]++
		}
	}
	s.TotalTokens = model.SumTokens(s.InputTokens, s.CacheCreationTokens, s.CacheReadTokens, s.OutputTokens)
	if s.QueryCount > 0 {
		s.ToolDensity = float64(s.TotalToolCalls) / float64(s.QueryCount)
	}

	s.Timestamp = sessionStart(records)
	s.Date = model.DateUnknown
	if !s.Timestamp.IsZero() {
		s.Date = s.Timestamp.Format("2006-01-02")
	}
	s.Model = primaryModel(records)
	s.FirstPrompt = truncateRunes(firstPrompt(file.SessionID, records, history), firstPromptMaxRunes)

	return SessionResult{
		Summary: s,
		Prompts: groupPrompts(records, s),
		Tools:   tools,
		Records: records,
	}
}

// sessionStart returns the earliest assistant timestamp, falling back to the
// earliest user timestamp when no record has one.
func sessionStart(records []model.QueryRecord) time.Time {
	var earliest time.Time
	for _, q := range records {
		if ts := q.AssistantTimestamp; !ts.IsZero() && (earliest.IsZero() || ts.Before(earliest)) {
			earliest = ts
		}
	}
	if !earliest.IsZero() {
		return earliest
	}
	for _, q := range records {
		if ts := q.UserTimestamp; !ts.IsZero() && (earliest.IsZero() || ts.Before(earliest)) {
			earliest = ts
		}
	}
	return earliest
}

// primaryModel returns the model with the most records. On a tie the model
// seen first wins.
func primaryModel(records []model.QueryRecord) string {
	counts := make(map[string]int)
	var order []string
	for _, q := range records {
		if _, ok := counts[q.Model]; !ok {
			order = append(order, q.Model)
		}
		counts[q.Model]++
	}

	best, bestCount := model.UnknownModel, 0
	for _, m := range order {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best
}

func firstPrompt(sessionID string, records []model.QueryRecord, history source.PromptHistory) string {
	if p, ok := history.FirstPrompt(sessionID); ok && p != "" {
		return p
	}
	for _, q := range records {
		if q.UserPrompt != nil && *q.UserPrompt != "" {
			return *q.UserPrompt
		}
	}
	return noPrompt
}

// groupPrompts splits records into runs sharing the same prompt. A record
// with a different prompt, or with no prompt at all, closes the current run;
// records without a prompt are not attributed to any run. Runs that used no
// tokens are dropped.
//
// Tool results arrive as user entries with no text, so the turns that follow
// a tool call carry a nil prompt and end the run. A group therefore covers
// the turns answered directly from the typed prompt, not the tool-driven
// continuation; that split is intentional and matches the documented
// grouping rule.
func groupPrompts(records []model.QueryRecord, s model.SessionSummary) []model.PromptCostRecord {
	var out []model.PromptCostRecord
	var cur *model.PromptCostRecord
	var curText string

	flush := func() {
		if cur != nil && cur.TotalTokens > 0 {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, q := range records {
		if q.UserPrompt == nil {
			flush()
			continue
		}
		if cur == nil || *q.UserPrompt != curText {
			flush()
			curText = *q.UserPrompt
			cur = &model.PromptCostRecord{
				Prompt:    truncateRunes(curText, promptGroupMaxRunes),
				Date:      s.Date,
				SessionID: s.SessionID,
				Model:     s.Model,
			}
		}
		cur.InputTokens += q.InputTokens
		cur.OutputTokens += q.OutputTokens
		cur.CacheCreationTokens += q.CacheCreationTokens
		cur.CacheReadTokens += q.CacheReadTokens
		cur.TotalTokens += q.TotalTokens
		cur.Cost += q.Cost
	}
	flush()

	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
