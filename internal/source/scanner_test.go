package source

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel string) {
		t.Helper()
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("projects/-Users-me-projects-gitlore/aaa.jsonl")
	mustWrite("projects/-Users-me-projects-gitlore/bbb.jsonl")
	mustWrite("projects/-Users-me-projects-gitlore/notes.txt")
	mustWrite("projects/-Users-me-projects-gitlore/aaa/subagents/agent-1.jsonl")
	mustWrite("projects/-tmp-x/ccc.jsonl")
	mustWrite("projects/stray.jsonl")

	files, err := ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %d, want 3: %+v", len(files), files)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].SessionID < files[j].SessionID })
	f := files[0]
	if f.SessionID != "aaa" {
		t.Errorf("SessionID = %q, want aaa", f.SessionID)
	}
	if f.ProjectPath != "/Users/me/projects/gitlore" {
		t.Errorf("ProjectPath = %q", f.ProjectPath)
	}
	if f.ProjectName != "gitlore" {
		t.Errorf("ProjectName = %q, want gitlore", f.ProjectName)
	}
	if !filepath.IsAbs(f.Path) {
		t.Errorf("Path %q is not absolute", f.Path)
	}

	if got := CountProjects(files); got != 2 {
		t.Errorf("CountProjects = %d, want 2", got)
	}
}

func TestScanDir_MissingProjects(t *testing.T) {
	files, err := ScanDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %d, want 0", len(files))
	}
}

func TestDecodeProjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-Users-me-projects-gitlore", "gitlore"},
		{"-Users-me-projects-my-cool-project", "my-cool-project"},
		{"-home-me-src-app", "app"},
		{"-tmp-x", "x"},
		{"-", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := decodeProjectName(tt.in); got != tt.want {
				t.Errorf("decodeProjectName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeProjectPath(t *testing.T) {
	if got := DecodeProjectPath("-Users-me-src-app"); got != "/Users/me/src/app" {
		t.Errorf("DecodeProjectPath = %q", got)
	}
}
