package source

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"
)

// historyEntry is one line of ~/.claude/history.jsonl.
type historyEntry struct {
	Display   string `json:"display"`
	SessionID string `json:"sessionId"`
}

// PromptHistory maps session id to the first prompt the user typed in it.
type PromptHistory map[string]string

// FirstPrompt returns the recorded first prompt for a session.
func (h PromptHistory) FirstPrompt(sessionID string) (string, bool) {
	p, ok := h[sessionID]
	return p, ok
}

// ReadHistory streams the prompt history file. Short slash commands
// ("/clear", "/model") are not real prompts and are passed over, so the
// next typed line becomes the session's first prompt. A missing file
// yields an empty history.
func ReadHistory(path string) (PromptHistory, error) {
	h := make(PromptHistory)

	f, err := os.Open(path) //nolint:gosec // path is under the Claude data dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return h, nil
		}
		return h, err
	}
	defer func() { _ = f.Close() }()

	_, err = forEachLine(f, maxLineBytes, func(line []byte) {
		var e historyEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return
		}
		if e.SessionID == "" || e.Display == "" {
			return
		}
		if _, seen := h[e.SessionID]; seen {
			return
		}
		display := strings.TrimSpace(e.Display)
		if display == "" || (strings.HasPrefix(display, "/") && utf8.RuneCountInString(display) < 30) {
			return
		}
		h[e.SessionID] = display
	})

	return h, err
}
