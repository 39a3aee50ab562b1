package source

import (
	"math"
	"strings"
	"testing"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/model"
)

func reconcileLines(t *testing.T, lines ...string) []model.QueryRecord {
	t.Helper()
	entries, err := readEntries(strings.NewReader(strings.Join(lines, "\n")), maxLineBytes)
	if err != nil {
		t.Fatalf("readEntries: %v", err)
	}
	return Reconcile(entries, config.DefaultPriceTable)
}

func TestReconcile_SinglePair(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":"fix bug"}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:01Z","message":{"id":"m1","model":"sonnet","usage":{"input_tokens":100,"output_tokens":50}}}`,
	)

	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Prompt() != "fix bug" {
		t.Errorf("prompt = %q, want %q", r.Prompt(), "fix bug")
	}
	if r.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", r.TotalTokens)
	}
	want := 100*3.0/1e6 + 50*15.0/1e6
	if math.Abs(r.Cost-want) > 1e-12 {
		t.Errorf("Cost = %g, want %g", r.Cost, want)
	}
	if r.Tools == nil {
		t.Error("Tools should be non-nil")
	}
}

func TestReconcile_DedupLastWins(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"id":"m1","model":"sonnet","usage":{"output_tokens":10}}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:05Z","message":{"id":"m2","model":"sonnet","usage":{"output_tokens":1}}}`,
		`{"type":"assistant","timestamp":"2025-06-01T09:00:00Z","message":{"id":"m1","model":"sonnet","usage":{"output_tokens":40}}}`,
	)

	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	// m1 keeps its first position but carries the later line's usage, even
	// though that line's timestamp is earlier.
	if recs[0].MessageID != "m1" || recs[0].OutputTokens != 40 {
		t.Errorf("recs[0] = %s/%d, want m1/40", recs[0].MessageID, recs[0].OutputTokens)
	}
	if recs[1].MessageID != "m2" {
		t.Errorf("recs[1] = %s, want m2", recs[1].MessageID)
	}
}

func TestReconcile_PairingCursor(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"assistant","timestamp":"2025-06-01T09:59:00Z","message":{"id":"early","model":"sonnet","usage":{"output_tokens":1}}}`,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":"first"}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"id":"a","model":"sonnet","usage":{"output_tokens":1}}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:30Z","message":{"id":"b","model":"sonnet","usage":{"output_tokens":1}}}`,
		`{"type":"user","timestamp":"2025-06-01T10:01:00Z","message":{"role":"user","content":"second"}}`,
		`{"type":"user","timestamp":"2025-06-01T10:02:00Z","message":{"role":"user","content":"third"}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:02:01Z","message":{"id":"c","model":"sonnet","usage":{"output_tokens":1}}}`,
	)

	want := map[string]string{"early": "", "a": "first", "b": "first", "c": "third"}
	if len(recs) != len(want) {
		t.Fatalf("records = %d, want %d", len(recs), len(want))
	}
	for _, r := range recs {
		if got := r.Prompt(); got != want[r.MessageID] {
			t.Errorf("%s prompt = %q, want %q", r.MessageID, got, want[r.MessageID])
		}
	}
	if recs[0].UserPrompt != nil {
		t.Error("assistant before any user entry should have nil prompt")
	}
	if !recs[0].UserTimestamp.IsZero() {
		t.Error("unpaired record should have zero user timestamp")
	}
}

func TestReconcile_UserTimelineFilters(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":"  real prompt  "}}`,
		`{"type":"user","timestamp":"2025-06-01T10:00:01Z","isMeta":true,"message":{"role":"user","content":"caveat"}}`,
		`{"type":"user","timestamp":"2025-06-01T10:00:02Z","message":{"role":"user","content":"<command-name>/clear</command-name>"}}`,
		`{"type":"user","timestamp":"2025-06-01T10:00:03Z","message":{"role":"user","content":[{"type":"text","text":"<local-command-stdout>ok</local-command-stdout>"}]}}`,
		`{"type":"user","timestamp":"2025-06-01T10:00:04Z","message":{"role":"assistant","content":"not a user"}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:05Z","message":{"id":"m1","model":"sonnet","usage":{"output_tokens":1}}}`,
	)

	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if got := recs[0].Prompt(); got != "real prompt" {
		t.Errorf("prompt = %q, want %q", got, "real prompt")
	}
}

func TestReconcile_ToolResultClosesPrompt(t *testing.T) {
	// A tool_result-only user entry stays on the timeline with no text, so
	// the following assistant turn pairs with a nil prompt.
	recs := reconcileLines(t,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":[{"type":"text","text":"line one"},{"type":"text","text":"line two"}]}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:01Z","message":{"id":"m1","model":"sonnet","usage":{"output_tokens":1},"content":[{"type":"tool_use","name":"Read"},{"type":"tool_use","name":"Bash"}]}}`,
		`{"type":"user","timestamp":"2025-06-01T10:00:02Z","message":{"role":"user","content":[{"type":"tool_result","content":"file"}]}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:03Z","message":{"id":"m2","model":"sonnet","usage":{"output_tokens":1},"content":[{"type":"thinking"},{"type":"text","text":"done"}]}}`,
	)

	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if got := recs[0].Prompt(); got != "line one\nline two" {
		t.Errorf("m1 prompt = %q", got)
	}
	if strings.Join(recs[0].Tools, ",") != "Read,Bash" {
		t.Errorf("m1 tools = %v, want [Read Bash]", recs[0].Tools)
	}
	if recs[0].HasThinking {
		t.Error("m1 should not have thinking")
	}
	if recs[1].UserPrompt != nil {
		t.Errorf("m2 prompt = %q, want nil", recs[1].Prompt())
	}
	if !recs[1].HasThinking {
		t.Error("m2 should have thinking")
	}
}

func TestReconcile_SkipsSyntheticAndMissingUsage(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"id":"s","model":"<synthetic>","usage":{"output_tokens":9}}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:01Z","message":{"id":"n","model":"sonnet"}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:02Z","message":{"model":"sonnet","usage":{"output_tokens":9}}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:03Z","message":{"id":"u","usage":{"input_tokens":3}}}`,
	)

	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Model != model.UnknownModel {
		t.Errorf("model = %q, want %q", recs[0].Model, model.UnknownModel)
	}
	// Unknown models are priced at the fallback rate.
	if want := 3 * 3.0 / 1e6; math.Abs(recs[0].Cost-want) > 1e-12 {
		t.Errorf("cost = %g, want %g", recs[0].Cost, want)
	}
}

func TestReconcile_MalformedLineDoesNotAbort(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"id":"m1","model":"sonnet","usage":{"output_tokens":1}}}`,
		`{"type":"assistant","message":{"id":`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:02Z","message":{"id":"m2","model":"sonnet","usage":{"output_tokens":2}}}`,
	)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
}

func TestReconcile_TotalIsSumOfParts(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"id":"m1","model":"claude-opus-4-6","usage":{"input_tokens":7,"cache_creation_input_tokens":11,"cache_read_input_tokens":13,"output_tokens":17}}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"id":"m2","model":"claude-haiku-4-5","usage":{"input_tokens":1,"cache_creation":{"ephemeral_5m_input_tokens":2,"ephemeral_1h_input_tokens":3},"output_tokens":4}}}`,
	)
	for _, r := range recs {
		sum := r.InputTokens + r.CacheCreationTokens + r.CacheReadTokens + r.OutputTokens
		if r.TotalTokens != sum {
			t.Errorf("%s: total %d != sum %d", r.MessageID, r.TotalTokens, sum)
		}
		if r.Cost < 0 {
			t.Errorf("%s: negative cost", r.MessageID)
		}
	}
	if recs[1].CacheCreationTokens != 5 {
		t.Errorf("m2 cache creation = %d, want 5", recs[1].CacheCreationTokens)
	}
}

func TestParseFile(t *testing.T) {
	df := writeSession(t,
		`{"type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":"go"}}`,
		`garbage`,
		`{"type":"user","message":`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:01Z","message":{"id":"m1","model":"sonnet","usage":{"output_tokens":5}}}`,
	)

	res := ParseFile(df, config.DefaultPriceTable)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Records) != 1 {
		t.Errorf("records = %d, want 1", len(res.Records))
	}
	if res.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", res.ParseErrors)
	}
}

func TestReprice(t *testing.T) {
	recs := reconcileLines(t,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"id":"m1","model":"claude-sonnet-4-6","usage":{"input_tokens":1000000,"output_tokens":1000000}}}`,
		`{"type":"assistant","timestamp":"2025-06-01T10:00:01Z","message":{"id":"m2","usage":{"input_tokens":1000000}}}`,
	)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}

	input, output := 1.0, 2.0
	table := config.NewPriceTable(map[string]config.ModelPricingOverride{
		config.KeySonnet: {InputPerMTok: &input, OutputPerMTok: &output},
	})
	Reprice(recs, table)

	if math.Abs(recs[0].Cost-3.0) > 1e-9 {
		t.Errorf("sonnet cost = %v, want 3", recs[0].Cost)
	}
	// Records without a model price at the fallback rate.
	if math.Abs(recs[1].Cost-1.0) > 1e-9 {
		t.Errorf("unknown-model cost = %v, want 1", recs[1].Cost)
	}
	if recs[0].TotalTokens != 2_000_000 {
		t.Errorf("TotalTokens changed to %d", recs[0].TotalTokens)
	}
}
