package pipeline

import (
	"strings"

	"github.com/samber/lo"

	"github.com/theirongolddev/pulse/internal/model"
)

// FilterByProject returns sessions whose project path or name contains the
// substring, case-insensitively.
func FilterByProject(sessions []model.SessionSummary, project string) []model.SessionSummary {
	if project == "" {
		return sessions
	}
	return lo.Filter(sessions, func(s model.SessionSummary, _ int) bool {
		return containsIgnoreCase(s.Project, project) || containsIgnoreCase(s.ProjectName, project)
	})
}

// FilterByModel returns sessions whose primary model contains the substring.
func FilterByModel(sessions []model.SessionSummary, modelFilter string) []model.SessionSummary {
	if modelFilter == "" {
		return sessions
	}
	return lo.Filter(sessions, func(s model.SessionSummary, _ int) bool {
		return containsIgnoreCase(s.Model, modelFilter)
	})
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
