package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "config.yaml", "output_dir: public\nstatic_dirs: [images]\n")
	writeFile(t, root, "content/index.md", "---\ntitle: Home\n---\nWelcome\n")
	writeFile(t, root, "content/images/logo.png", "png")
	writeFile(t, root, "theme/index.html", "<h1>{{title}}</h1>{{{content}}}")
	writeFile(t, root, "theme/base.html", "{{{content}}}")
	return root
}

func parse(t *testing.T, args ...string) (*CLI, *bytes.Buffer, int) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	exitCode := -1
	parser, err := newParser(&cli, kong.Writers(&out, &out), kong.Exit(func(code int) { exitCode = code }))
	require.NoError(t, err)
	_, _ = parser.Parse(args)
	return &cli, &out, exitCode
}

func TestVersionFlag(t *testing.T) {
	_, out, code := parse(t, "--version")
	require.Equal(t, 0, code)
	require.Equal(t, "elucidator 0.3\n", out.String())
}

func TestDefaultRoot(t *testing.T) {
	cli, _, _ := parse(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, wd, cli.Root)
	require.False(t, cli.Watch)
}

func TestExecute_Build(t *testing.T) {
	root := newSite(t)
	metricsFile := filepath.Join(t.TempDir(), "elucidator.prom")
	cli, _, _ := parse(t, root, "--metrics-file", metricsFile)

	var stdout bytes.Buffer
	require.Equal(t, 0, cli.Execute(context.Background(), &stdout))
	require.Equal(t, "Starting site generation...\nGeneration finished!\n", stdout.String())

	page, err := os.ReadFile(filepath.Join(root, "public", "index.html"))
	require.NoError(t, err)
	require.Equal(t, "<h1>Home</h1><p>Welcome</p>\n", string(page))
	require.FileExists(t, filepath.Join(root, "public", "images", "logo.png"))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `elucidator_pages_rendered_total{template="index"} 1`)
	require.Contains(t, string(prom), `elucidator_build_outcomes_total{outcome="success"} 1`)
}

func TestExecute_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		want  int
	}{
		{
			name:  "missing config",
			setup: func(t *testing.T, root string) { require.NoError(t, os.Remove(filepath.Join(root, "config.yaml"))) },
			want:  7,
		},
		{
			name: "missing static directory",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.RemoveAll(filepath.Join(root, "content", "images")))
			},
			want: 8,
		},
		{
			name: "malformed page",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "content/broken.md", "---\ntitle: no end\n")
			},
			want: 9,
		},
		{
			name: "invalid template",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "theme/base.html", "{{#open}}never closed")
			},
			want: 11,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newSite(t)
			tt.setup(t, root)
			cli, _, _ := parse(t, root)

			var stdout bytes.Buffer
			require.Equal(t, tt.want, cli.Execute(context.Background(), &stdout))
		})
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), "Starting site generation...")
}

// watchSite runs Execute in watch mode until the test ends.
func watchSite(t *testing.T, args ...string) *syncBuffer {
	t.Helper()
	cli, _, _ := parse(t, append(args, "--watch")...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	stdout := &syncBuffer{}
	go func() { done <- cli.Execute(ctx, stdout) }()
	t.Cleanup(func() {
		cancel()
		select {
		case code := <-done:
			require.Equal(t, 0, code)
		case <-time.After(5 * time.Second):
			t.Error("watch mode did not stop after cancel")
		}
	})
	return stdout
}

// requireSettled fails when builds keep starting without further edits.
func requireSettled(t *testing.T, stdout *syncBuffer) {
	t.Helper()
	time.Sleep(time.Second)
	settled := stdout.builds()
	time.Sleep(1500 * time.Millisecond)
	require.Equal(t, settled, stdout.builds(), "builds kept running without any edit")
}

func TestExecute_WatchIgnoresMetricsFileUnderRoot(t *testing.T) {
	root := newSite(t)
	stdout := watchSite(t, root, "--metrics-file", filepath.Join(root, "build.prom"))

	require.Eventually(t, func() bool {
		if stdout.builds() >= 2 {
			return true
		}
		_ = os.WriteFile(filepath.Join(root, "content", "index.md"), []byte("---\ntitle: Edited\n---\nWelcome\n"), 0o644)
		return false
	}, 10*time.Second, 500*time.Millisecond)

	requireSettled(t, stdout)
}

func TestExecute_WatchIgnoresOutputOnceConfigIsFixed(t *testing.T) {
	root := newSite(t)
	writeFile(t, root, "config.yaml", "static_dirs: [images]\n")
	stdout := watchSite(t, root)

	index := filepath.Join(root, "public", "index.html")
	require.Eventually(t, func() bool {
		if _, err := os.Stat(index); err == nil {
			return true
		}
		_ = os.WriteFile(filepath.Join(root, "config.yaml"), []byte("output_dir: public\nstatic_dirs: [images]\n"), 0o644)
		return false
	}, 10*time.Second, 500*time.Millisecond)

	requireSettled(t, stdout)
}
