package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/pulse/internal/model"
	"github.com/theirongolddev/pulse/internal/source"
)

func session(id, project, date string, recs ...model.QueryRecord) SessionResult {
	df := source.DiscoveredFile{SessionID: id, ProjectPath: project, ProjectName: project}
	sr := SummarizeSession(df, recs, nil)
	sr.Summary.Date = date
	return sr
}

func TestRollup_Build(t *testing.T) {
	r := NewRollup()
	r.AddSession(session("s1", "/p/a", "2025-06-02",
		rec(strPtr("x"), "claude-opus-4-6", 100, 10),
		rec(strPtr("x"), model.UnknownModel, 5, 5),
	))
	r.AddSession(session("s2", "/p/b", "2025-06-01",
		rec(strPtr("y"), "claude-sonnet-4-6", 1000, 0),
	))
	r.AddSession(session("s3", "/p/a", model.DateUnknown,
		rec(nil, "claude-sonnet-4-6", 1, 1),
	))

	agg := r.Build(50)

	if len(agg.Sessions) != 3 || agg.Sessions[0].SessionID != "s2" {
		t.Errorf("sessions not sorted by tokens: %+v", agg.Sessions)
	}

	if len(agg.DailyUsage) != 2 {
		t.Fatalf("daily = %d, want 2 (unknown excluded)", len(agg.DailyUsage))
	}
	if agg.DailyUsage[0].Date != "2025-06-01" || agg.DailyUsage[1].Date != "2025-06-02" {
		t.Errorf("daily order = %s, %s", agg.DailyUsage[0].Date, agg.DailyUsage[1].Date)
	}
	if agg.DailyUsage[1].Queries != 2 || agg.DailyUsage[1].Sessions != 1 {
		t.Errorf("daily[1] = %+v", agg.DailyUsage[1])
	}

	for _, m := range agg.ModelBreakdown {
		if m.Model == model.UnknownModel || m.Model == model.SyntheticModel {
			t.Errorf("model %q should be excluded", m.Model)
		}
	}
	if len(agg.ModelBreakdown) != 2 || agg.ModelBreakdown[0].Model != "claude-sonnet-4-6" {
		t.Errorf("models = %+v", agg.ModelBreakdown)
	}
	if agg.ModelBreakdown[0].QueryCount != 2 {
		t.Errorf("sonnet queries = %d, want 2", agg.ModelBreakdown[0].QueryCount)
	}

	if len(agg.Projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(agg.Projects))
	}
	a := agg.Projects[1]
	if a.Project != "/p/a" || a.SessionCount != 2 || a.QueryCount != 3 {
		t.Errorf("project /p/a = %+v", a)
	}

	if len(agg.TopPrompts) != 2 || agg.TopPrompts[0].Prompt != "y" {
		t.Errorf("prompts = %+v", agg.TopPrompts)
	}

	tot := agg.Totals
	if tot.TotalSessions != 3 || tot.TotalQueries != 4 {
		t.Errorf("totals sessions/queries = %d/%d", tot.TotalSessions, tot.TotalQueries)
	}
	if tot.TotalTokens != 1122 {
		t.Errorf("TotalTokens = %d, want 1122", tot.TotalTokens)
	}
	if tot.AvgTokensPerSession != 374 {
		t.Errorf("AvgTokensPerSession = %d, want 374", tot.AvgTokensPerSession)
	}
	if tot.AvgTokensPerQuery != 281 { // 280.5 rounds up
		t.Errorf("AvgTokensPerQuery = %d, want 281", tot.AvgTokensPerQuery)
	}
	if tot.CacheHitRate != 0 {
		t.Errorf("CacheHitRate = %v, want 0 with no cache tokens", tot.CacheHitRate)
	}
}

func TestRollup_CacheHitRate(t *testing.T) {
	q := rec(strPtr("x"), "m", 100, 0)
	q.CacheReadTokens = 300
	q.CacheCreationTokens = 100
	q.TotalTokens = 500

	r := NewRollup()
	r.AddSession(session("s", "/p", "2025-01-01", q))
	got := r.Build(50).Totals.CacheHitRate

	if math.Abs(got-0.6) > 1e-12 {
		t.Errorf("CacheHitRate = %v, want 0.6", got)
	}
}

func TestRollup_Empty(t *testing.T) {
	agg := NewRollup().Build(50)
	if agg.Sessions == nil || agg.DailyUsage == nil || agg.ToolStats == nil || agg.TopPrompts == nil {
		t.Error("empty aggregate lists should be non-nil")
	}
	if agg.Totals != (model.Totals{}) {
		t.Errorf("totals = %+v, want zero", agg.Totals)
	}
}

func TestRollup_TopPromptsLimit(t *testing.T) {
	r := NewRollup()
	for i := 0; i < 5; i++ {
		r.AddSession(session("s", "/p", "2025-01-01", rec(strPtr(string(rune('a'+i))), "m", int64(i+1), 0)))
	}
	agg := r.Build(3)
	if len(agg.TopPrompts) != 3 {
		t.Fatalf("prompts = %d, want 3", len(agg.TopPrompts))
	}
	if agg.TopPrompts[0].Prompt != "e" {
		t.Errorf("top prompt = %q, want e", agg.TopPrompts[0].Prompt)
	}
}

func TestRollup_ToolStatsOrder(t *testing.T) {
	q := rec(nil, "m", 1, 0)
	q.Tools = []string{"Edit", "Read", "Read", "Bash", "Bash"}

	r := NewRollup()
	r.AddSession(session("s", "/p", "2025-01-01", q))
	stats := r.Build(50).ToolStats

	want := []model.ToolStat{{Name: "Bash", Count: 2}, {Name: "Read", Count: 2}, {Name: "Edit", Count: 1}}
	if len(stats) != len(want) {
		t.Fatalf("tool stats = %+v", stats)
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], want[i])
		}
	}
}

func TestRollup_MergeMatchesSequential(t *testing.T) {
	s1 := session("s1", "/p/a", "2025-06-01", rec(strPtr("x"), "m1", 3, 4))
	s2 := session("s2", "/p/a", "2025-06-01", rec(strPtr("y"), "m1", 5, 6))
	s3 := session("s3", "/p/b", "2025-06-02", rec(strPtr("z"), "m2", 7, 8))

	seq := NewRollup()
	seq.AddSession(s1)
	seq.AddSession(s2)
	seq.AddSession(s3)

	merged := NewRollup()
	for _, s := range []SessionResult{s1, s2, s3} {
		part := NewRollup()
		part.AddSession(s)
		merged.Merge(part)
	}

	a, b := seq.Build(50), merged.Build(50)
	if a.Totals != b.Totals {
		t.Errorf("totals differ: %+v vs %+v", a.Totals, b.Totals)
	}
	if len(a.DailyUsage) != len(b.DailyUsage) || a.DailyUsage[0] != b.DailyUsage[0] {
		t.Errorf("daily differs: %+v vs %+v", a.DailyUsage, b.DailyUsage)
	}
	if len(a.ModelBreakdown) != len(b.ModelBreakdown) || a.ModelBreakdown[0] != b.ModelBreakdown[0] {
		t.Errorf("models differ")
	}
	if len(a.Projects) != len(b.Projects) || a.Projects[0] != b.Projects[0] {
		t.Errorf("projects differ")
	}
}
