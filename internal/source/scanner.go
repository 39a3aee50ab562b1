package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScanDir lists the session files under <claudeDir>/projects. Each direct
// subdirectory is a project; each *.jsonl file directly inside it is one
// session. A missing projects directory yields no files and no error.
// Unreadable project directories are skipped.
func ScanDir(claudeDir string) ([]DiscoveredFile, error) {
	absDir, err := filepath.Abs(claudeDir)
	if err != nil {
		return nil, err
	}
	projectsDir := ProjectsDir(absDir)

	info, err := os.Stat(projectsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	projects, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, err
	}

	var files []DiscoveredFile
	for _, p := range projects {
		if !p.IsDir() {
			continue
		}
		projectDir := p.Name()
		entries, err := os.ReadDir(filepath.Join(projectsDir, projectDir))
		if err != nil {
			continue
		}

		projectPath := DecodeProjectPath(projectDir)
		projectName := decodeProjectName(projectDir)

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || filepath.Ext(name) != ".jsonl" {
				continue
			}
			files = append(files, DiscoveredFile{
				Path:        filepath.Join(projectsDir, projectDir, name),
				Project:     projectDir,
				ProjectPath: projectPath,
				ProjectName: projectName,
				SessionID:   strings.TrimSuffix(name, ".jsonl"),
			})
		}
	}

	return files, nil
}

// ProjectsDir returns the directory holding one subdirectory per project.
func ProjectsDir(claudeDir string) string {
	return filepath.Join(claudeDir, "projects")
}

// HasProjectsDir reports whether claudeDir contains a projects directory,
// even an empty one.
func HasProjectsDir(claudeDir string) bool {
	info, err := os.Stat(ProjectsDir(claudeDir))
	return err == nil && info.IsDir()
}

// DecodeProjectPath maps an encoded project directory back to a path-like
// display form. Claude Code encodes absolute paths by replacing "/" with
// "-", so the inverse is lossy for names that contained a dash:
//
//	"-Users-me-src-app" -> "/Users/me/src/app"
func DecodeProjectPath(dirName string) string {
	return strings.ReplaceAll(dirName, "-", "/")
}

// decodeProjectName extracts a short project name from the encoded directory name:
//
//	"-Users-me-projects-gitlore"         -> "gitlore"
//	"-Users-me-projects-my-cool-project" -> "my-cool-project"
//
// We find the last known parent component ("projects", "repos", "src", ...)
// and take everything after it. Falls back to the last non-empty segment.
func decodeProjectName(dirName string) string {
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			name := strings.Join(parts[i+1:], "-")
			if name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}

	return dirName
}

// CountProjects returns the number of unique projects in a set of discovered files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Project] = struct{}{}
	}
	return len(seen)
}
