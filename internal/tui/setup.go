package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/tui/theme"
)

// setupValues holds the form's bound values.
type setupValues struct {
	claudeDir  string
	topPrompts string
	theme      string
	useCache   bool
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		claudeDir:  cfg.ClaudeDir(),
		topPrompts: strconv.Itoa(cfg.General.TopPrompts),
		theme:      theme.ByName(cfg.Appearance.Theme).Name,
		useCache:   !cfg.Cache.Disabled,
	}
}

// apply copies the form values onto cfg.
func (v *setupValues) apply(cfg *config.Config) {
	dir := strings.TrimSpace(v.claudeDir)
	if dir == config.DefaultClaudeDir() {
		dir = ""
	}
	cfg.General.ClaudeDir = dir
	if n, err := strconv.Atoi(strings.TrimSpace(v.topPrompts)); err == nil && n > 0 {
		cfg.General.TopPrompts = n
	}
	cfg.Appearance.Theme = v.theme
	cfg.Cache.Disabled = !v.useCache
}

func validateTopPrompts(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive whole number")
	}
	return nil
}

func newSetupForm(v *setupValues, sessions, projects int) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to pulse").
				Description(fmt.Sprintf("Found %d sessions across %d projects.", sessions, projects)),
			huh.NewInput().
				Title("Claude data directory").
				Value(&v.claudeDir),
			huh.NewInput().
				Title("Prompts to keep in the top list").
				Value(&v.topPrompts).
				Validate(validateTopPrompts),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.theme),
			huh.NewConfirm().
				Title("Cache parsed sessions between runs?").
				Value(&v.useCache),
		),
	)
}

// RunSetup shows the setup form and applies the answers to cfg. It returns
// huh.ErrUserAborted if the user quits the form.
func RunSetup(cfg *config.Config, sessions, projects int) error {
	v := newSetupValues(*cfg)
	if err := newSetupForm(v, sessions, projects).Run(); err != nil {
		return err
	}
	v.apply(cfg)
	theme.SetActive(cfg.Appearance.Theme)
	return nil
}
