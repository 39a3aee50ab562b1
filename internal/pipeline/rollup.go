package pipeline

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/theirongolddev/pulse/internal/model"
)

// Rollup accumulates session results into the daily, model, project and tool
// breakdowns. Every field is an additive fold, so rollups built over disjoint
// file sets can be combined with Merge.
type Rollup struct {
	sessions []model.SessionSummary
	prompts  []model.PromptCostRecord
	daily    map[string]*model.DailyRollup
	models   map[string]*model.ModelRollup
	projects map[string]*model.ProjectRollup
	tools    map[string]int
}

// NewRollup returns an empty accumulator.
func NewRollup() *Rollup {
	return &Rollup{
		daily:    make(map[string]*model.DailyRollup),
		models:   make(map[string]*model.ModelRollup),
		projects: make(map[string]*model.ProjectRollup),
		tools:    make(map[string]int),
	}
}

// AddSession folds one session into the accumulator.
func (r *Rollup) AddSession(sr SessionResult) {
	s := sr.Summary
	r.sessions = append(r.sessions, s)
	r.prompts = append(r.prompts, sr.Prompts...)

	for name, n := range sr.Tools {
		r.tools[name] += n
	}

	if s.Date != model.DateUnknown {
		d := r.daily[s.Date]
		if d == nil {
			d = &model.DailyRollup{Date: s.Date}
			r.daily[s.Date] = d
		}
		d.InputTokens += s.InputTokens
		d.OutputTokens += s.OutputTokens
		d.CacheCreationTokens += s.CacheCreationTokens
		d.CacheReadTokens += s.CacheReadTokens
		d.TotalTokens += s.TotalTokens
		d.Cost += s.Cost
		d.Sessions++
		d.Queries += s.QueryCount
	}

	p := r.projects[s.Project]
	if p == nil {
		p = &model.ProjectRollup{Project: s.Project, Name: s.ProjectName}
		r.projects[s.Project] = p
	}
	p.InputTokens += s.InputTokens
	p.OutputTokens += s.OutputTokens
	p.CacheCreationTokens += s.CacheCreationTokens
	p.CacheReadTokens += s.CacheReadTokens
	p.TotalTokens += s.TotalTokens
	p.Cost += s.Cost
	p.SessionCount++
	p.QueryCount += s.QueryCount

	for _, q := range sr.Records {
		if q.Model == model.SyntheticModel || q.Model == model.UnknownModel {
			continue
		}
		m := r.models[q.Model]
		if m == nil {
			m = &model.ModelRollup{Model: q.Model}
			r.models[q.Model] = m
		}
		m.InputTokens += q.InputTokens
		m.OutputTokens += q.OutputTokens
		m.CacheCreationTokens += q.CacheCreationTokens
		m.CacheReadTokens += q.CacheReadTokens
		m.TotalTokens += q.TotalTokens
		m.Cost += q.Cost
		m.QueryCount++
	}
}

// Merge folds other into r. other must not be used afterwards.
func (r *Rollup) Merge(other *Rollup) {
	r.sessions = append(r.sessions, other.sessions...)
	r.prompts = append(r.prompts, other.prompts...)

	for name, n := range other.tools {
		r.tools[name] += n
	}

	for key, od := range other.daily {
		d := r.daily[key]
		if d == nil {
			r.daily[key] = od
			continue
		}
		d.InputTokens += od.InputTokens
		d.OutputTokens += od.OutputTokens
		d.CacheCreationTokens += od.CacheCreationTokens
		d.CacheReadTokens += od.CacheReadTokens
		d.TotalTokens += od.TotalTokens
		d.Cost += od.Cost
		d.Sessions += od.Sessions
		d.Queries += od.Queries
	}

	for key, om := range other.models {
		m := r.models[key]
		if m == nil {
			r.models[key] = om
			continue
		}
		m.InputTokens += om.InputTokens
		m.OutputTokens += om.OutputTokens
		m.CacheCreationTokens += om.CacheCreationTokens
		m.CacheReadTokens += om.CacheReadTokens
		m.TotalTokens += om.TotalTokens
		m.Cost += om.Cost
		m.QueryCount += om.QueryCount
	}

	for key, op := range other.projects {
		p := r.projects[key]
		if p == nil {
			r.projects[key] = op
			continue
		}
		p.InputTokens += op.InputTokens
		p.OutputTokens += op.OutputTokens
		p.CacheCreationTokens += op.CacheCreationTokens
		p.CacheReadTokens += op.CacheReadTokens
		p.TotalTokens += op.TotalTokens
		p.Cost += op.Cost
		p.SessionCount += op.SessionCount
		p.QueryCount += op.QueryCount
	}
}

// Build produces the sorted aggregate, keeping at most topPrompts prompt
// groups. All orderings break ties on a key so output is deterministic.
func (r *Rollup) Build(topPrompts int) model.Aggregate {
	agg := model.EmptyAggregate()

	// Totals are summed in accumulation order, before any sorting, so the
	// float sums do not depend on how ties happened to sort.
	agg.Totals = computeTotals(r.sessions)

	agg.Sessions = append(agg.Sessions, r.sessions...)
	sort.SliceStable(agg.Sessions, func(i, j int) bool {
		a, b := agg.Sessions[i], agg.Sessions[j]
		if a.TotalTokens != b.TotalTokens {
			return a.TotalTokens > b.TotalTokens
		}
		return a.SessionID < b.SessionID
	})

	agg.DailyUsage = append(agg.DailyUsage, lo.Map(lo.Values(r.daily), func(d *model.DailyRollup, _ int) model.DailyRollup {
		return *d
	})...)
	sort.Slice(agg.DailyUsage, func(i, j int) bool {
		return agg.DailyUsage[i].Date < agg.DailyUsage[j].Date
	})

	agg.ModelBreakdown = append(agg.ModelBreakdown, lo.Map(lo.Values(r.models), func(m *model.ModelRollup, _ int) model.ModelRollup {
		return *m
	})...)
	sort.Slice(agg.ModelBreakdown, func(i, j int) bool {
		a, b := agg.ModelBreakdown[i], agg.ModelBreakdown[j]
		if a.TotalTokens != b.TotalTokens {
			return a.TotalTokens > b.TotalTokens
		}
		return a.Model < b.Model
	})

	agg.Projects = append(agg.Projects, lo.Map(lo.Values(r.projects), func(p *model.ProjectRollup, _ int) model.ProjectRollup {
		return *p
	})...)
	sort.Slice(agg.Projects, func(i, j int) bool {
		a, b := agg.Projects[i], agg.Projects[j]
		if a.TotalTokens != b.TotalTokens {
			return a.TotalTokens > b.TotalTokens
		}
		return a.Project < b.Project
	})

	agg.ToolStats = append(agg.ToolStats, lo.MapToSlice(r.tools, func(name string, n int) model.ToolStat {
		return model.ToolStat{Name: name, Count: n}
	})...)
	sort.Slice(agg.ToolStats, func(i, j int) bool {
		a, b := agg.ToolStats[i], agg.ToolStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	prompts := append([]model.PromptCostRecord(nil), r.prompts...)
	sort.SliceStable(prompts, func(i, j int) bool {
		return prompts[i].TotalTokens > prompts[j].TotalTokens
	})
	if topPrompts >= 0 && len(prompts) > topPrompts {
		prompts = prompts[:topPrompts]
	}
	agg.TopPrompts = append(agg.TopPrompts, prompts...)

	return agg
}

func computeTotals(sessions []model.SessionSummary) model.Totals {
	t := model.Totals{
		TotalInput:         lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.InputTokens }),
		TotalOutput:        lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.OutputTokens }),
		TotalCacheCreation: lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.CacheCreationTokens }),
		TotalCacheRead:     lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.CacheReadTokens }),
		TotalCost:          lo.SumBy(sessions, func(s model.SessionSummary) float64 { return s.Cost }),
		TotalSessions:      len(sessions),
		TotalQueries:       lo.SumBy(sessions, func(s model.SessionSummary) int { return s.QueryCount }),
		TotalThinkingTurns: lo.SumBy(sessions, func(s model.SessionSummary) int { return s.ThinkingTurns }),
	}
	t.TotalTokens = model.SumTokens(t.TotalInput, t.TotalCacheCreation, t.TotalCacheRead, t.TotalOutput)

	if cached := t.TotalCacheRead + t.TotalCacheCreation; cached > 0 {
		t.CacheHitRate = float64(t.TotalCacheRead) / float64(cached+t.TotalInput)
	}
	if t.TotalSessions > 0 {
		t.AvgTokensPerSession = int64(math.Round(float64(t.TotalTokens) / float64(t.TotalSessions)))
	}
	if t.TotalQueries > 0 {
		t.AvgTokensPerQuery = int64(math.Round(float64(t.TotalTokens) / float64(t.TotalQueries)))
	}
	return t
}
