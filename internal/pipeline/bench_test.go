package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/source"
)

func BenchmarkRun(b *testing.B) {
	homeDir, _ := os.UserHomeDir()
	claudeDir := filepath.Join(homeDir, ".claude")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Run(Options{DataDir: claudeDir})
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkParseFile(b *testing.B) {
	homeDir, _ := os.UserHomeDir()
	claudeDir := filepath.Join(homeDir, ".claude")

	files, err := source.ScanDir(claudeDir)
	if err != nil {
		b.Fatal(err)
	}
	if len(files) == 0 {
		b.Skip("no session files")
	}

	// Find the largest file for worst-case benchmarking
	var biggest source.DiscoveredFile
	var biggestSize int64
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		if info.Size() > biggestSize {
			biggestSize = info.Size()
			biggest = f
		}
	}

	b.Logf("Benchmarking largest file: %s (%.1f KB)", biggest.Path, float64(biggestSize)/1024)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		result := source.ParseFile(biggest, config.DefaultPriceTable)
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkScanDir(b *testing.B) {
	homeDir, _ := os.UserHomeDir()
	claudeDir := filepath.Join(homeDir, ".claude")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		files, err := source.ScanDir(claudeDir)
		if err != nil {
			b.Fatal(err)
		}
		_ = files
	}
}

func BenchmarkRunWithCache(b *testing.B) {
	homeDir, _ := os.UserHomeDir()
	claudeDir := filepath.Join(homeDir, ".claude")
	cachePath := filepath.Join(b.TempDir(), "cache.db")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cr, err := Run(Options{DataDir: claudeDir, UseCache: true, CachePath: cachePath})
		if err != nil {
			b.Fatal(err)
		}
		_ = cr
	}
}
