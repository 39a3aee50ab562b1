package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/pulse/internal/model"
)

// writeFile writes lines under dataDir/projects/<project>/<session>.jsonl.
func writeFile(t *testing.T, dataDir, project, session string, lines ...string) string {
	t.Helper()
	dir := filepath.Join(dataDir, "projects", project)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, session+".jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func userLine(ts, text string) string {
	return fmt.Sprintf(`{"type":"user","timestamp":%q,"message":{"role":"user","content":%q}}`, ts, text)
}

func assistantLine(ts, id, modelName string, input, output int) string {
	return fmt.Sprintf(`{"type":"assistant","timestamp":%q,"message":{"id":%q,"model":%q,"usage":{"input_tokens":%d,"output_tokens":%d}}}`,
		ts, id, modelName, input, output)
}

func strPtr(s string) *string { return &s }

// rec builds a query record with only the fields the aggregation reads.
func rec(prompt *string, modelName string, input, output int64) model.QueryRecord {
	return model.QueryRecord{
		MessageID:    fmt.Sprintf("m-%d-%d", input, output),
		UserPrompt:   prompt,
		Model:        modelName,
		InputTokens:  input,
		OutputTokens: output,
		TotalTokens:  input + output,
		Cost:         float64(input+output) / 1e6,
		Tools:        []string{},
	}
}
