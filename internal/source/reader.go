// Package source discovers, reads, and reconciles Claude Code JSONL session files.
package source

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"
)

// maxLineBytes bounds a single transcript line. Lines carrying pasted files
// or large tool results can run to several megabytes.
const maxLineBytes = 16 * 1024 * 1024

// ReadLog streams a session file line by line and returns its validated
// entries. Only one line is held in memory at a time. Malformed and
// oversized lines are skipped and counted; the returned error is reserved
// for open/read failures.
func ReadLog(path string) (Entries, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from directory discovery
	if err != nil {
		return Entries{}, err
	}
	defer func() { _ = f.Close() }()

	return readEntries(f, maxLineBytes)
}

func readEntries(r io.Reader, maxLine int) (Entries, error) {
	var out Entries

	overlong, err := forEachLine(r, maxLine, func(line []byte) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			return
		}

		// Cheap routing first: progress, system and summary lines make up most
		// of a transcript and never need a full decode.
		if extractTopLevelType(line) == "" {
			return
		}

		var raw RawEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			out.ParseErrors++
			return
		}

		entry, ok := validateEntry(raw)
		if !ok {
			return
		}
		switch entry.Kind {
		case KindAssistant:
			out.Assistant = append(out.Assistant, entry)
		case KindUser:
			out.User = append(out.User, entry)
		}
	})
	if err != nil {
		return Entries{}, err
	}
	out.ParseErrors += overlong
	return out, nil
}

// validateEntry applies the boundary checks that turn a decoded line into a
// LogEntry: known type, no sidechain, message present.
func validateEntry(raw RawEntry) (LogEntry, bool) {
	if raw.IsSidechain || raw.Message == nil {
		return LogEntry{}, false
	}

	var kind EntryKind
	switch raw.Type {
	case "user":
		kind = KindUser
	case "assistant":
		kind = KindAssistant
	default:
		return LogEntry{}, false
	}

	return LogEntry{
		Kind:      kind,
		UUID:      raw.UUID,
		Timestamp: parseTimestamp(raw.Timestamp),
		IsMeta:    raw.IsMeta,
		Message:   *raw.Message,
	}, true
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line and
// returns it when it is "user" or "assistant".
// Tracks brace depth and string boundaries so nested "type" keys (content
// blocks, tool inputs) are ignored.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value, not a key.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	switch v := string(line[i : i+end]); v {
	case "assistant", "user":
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
