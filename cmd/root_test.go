package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sidediff/internal/config"
	"github.com/zjrosen/sidediff/internal/presentation"
)

// isolate runs the test in an empty working directory with an empty home, so
// no developer config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SIDEDIFF_DEBUG", "")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root, a := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	require.NoError(t, a.teardown())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func TestCompute_JSON(t *testing.T) {
	isolate(t)
	writeFile(t, "old.txt", "keep\nold line")
	writeFile(t, "new.txt", "keep\nnew line\nmore")

	out, err := execute(t, "", "compute", "--method", "diffWords", "old.txt", "new.txt")
	require.NoError(t, err)

	var dto presentation.ResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	require.Len(t, dto.Lines, 3)
	assert.Equal(t, []int{1}, dto.DiffBlockStarts)
	assert.Equal(t, []presentation.TokenDTO{{Type: "added", Text: "new"}, {Type: "default", Text: " line"}}, dto.Lines[1].Right.Tokens)
}

func TestCompute_StdinAndOffset(t *testing.T) {
	isolate(t)
	writeFile(t, "old.txt", "a\nb")

	out, err := execute(t, "a\nc", "compute", "--offset", "10", "--no-word-diff", "--format", "yaml", "old.txt", "-")
	require.NoError(t, err)

	var dto presentation.ResultDTO
	require.NoError(t, yaml.Unmarshal([]byte(out), &dto))
	require.Len(t, dto.Lines, 2)
	assert.Equal(t, 11, dto.Lines[0].Right.LineNumber)
	assert.Empty(t, dto.Lines[1].Right.Tokens)
	assert.Equal(t, "c", dto.Lines[1].Right.Text)
}

func TestCompute_Fold(t *testing.T) {
	isolate(t)
	writeFile(t, "old.txt", "a\nb\nc\nd\ne")
	writeFile(t, "new.txt", "a\nb\nc\nd\nE")

	out, err := execute(t, "", "compute", "--fold", "--context", "1", "old.txt", "new.txt")
	require.NoError(t, err)
	var plan presentation.PlanDTO
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan.Rows, 3)
	assert.Equal(t, "fold", plan.Rows[0].Kind)

	out, err = execute(t, "", "compute", "--context", "1", "--expand", "0", "old.txt", "new.txt")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan.Rows, 5, "--expand implies folding and opens fold 0")
}

func TestCompute_ConfigDefaults(t *testing.T) {
	isolate(t)
	writeFile(t, filepath.Join(".sidediff", "config.yaml"), "diff:\n  method: words\n  lines_offset: 4\noutput:\n  format: yaml\n")
	writeFile(t, "old.txt", "one two")
	writeFile(t, "new.txt", "one three")

	out, err := execute(t, "", "compute", "old.txt", "new.txt")
	require.NoError(t, err)
	var dto presentation.ResultDTO
	require.NoError(t, yaml.Unmarshal([]byte(out), &dto))
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, 5, dto.Lines[0].Left.LineNumber)
	assert.Equal(t, []presentation.TokenDTO{{Type: "default", Text: "one "}, {Type: "removed", Text: "two"}}, dto.Lines[0].Left.Tokens)
}

func TestCompute_Errors(t *testing.T) {
	isolate(t)
	writeFile(t, "old.txt", "x")

	_, err := execute(t, "", "compute", "--method", "bogus", "old.txt", "old.txt")
	require.ErrorContains(t, err, `unknown method "bogus"`)

	_, err = execute(t, "", "compute", "-", "-")
	require.ErrorContains(t, err, "only one of OLD and NEW")

	_, err = execute(t, "", "compute", "old.txt", "missing.txt")
	require.ErrorContains(t, err, "reading missing.txt")

	_, err = execute(t, "", "compute", "old.txt")
	require.Error(t, err)
}

func TestCompute_Rev(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := isolate(t)
	git := func(args ...string) {
		t.Helper()
		c := exec.Command("git", args...)
		c.Dir = dir
		c.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
			"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1",
		)
		out, err := c.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	git("init", "-q")
	writeFile(t, "src/main.txt", "keep\nold")
	git("add", ".")
	git("commit", "-q", "-m", "initial")
	writeFile(t, "src/main.txt", "keep\nnew")

	out, err := execute(t, "", "compute", "--rev", "HEAD", "src/main.txt")
	require.NoError(t, err)
	var dto presentation.ResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	require.Len(t, dto.Lines, 2)
	assert.Equal(t, "old", dto.Lines[1].Left.Text)
	assert.Equal(t, "new", dto.Lines[1].Right.Text)

	_, err = execute(t, "", "compute", "--rev", "HEAD", "src/main.txt", "other.txt")
	require.ErrorContains(t, err, "exactly one FILE")

	_, err = execute(t, "", "compute", "--rev", "HEAD", "-")
	require.ErrorContains(t, err, "not stdin")

	_, err = execute(t, "", "compute", "--rev", "nope", "src/main.txt")
	require.ErrorContains(t, err, "reading src/main.txt at nope")
}

func TestCompute_NegativeOffsetAndLatin1(t *testing.T) {
	isolate(t)
	writeFile(t, "old.txt", "caf\xe9\nend")
	writeFile(t, "new.txt", "cafe\nend")

	out, err := execute(t, "", "compute", "--offset", "-2", "old.txt", "new.txt")
	require.NoError(t, err)
	var dto presentation.ResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	require.Len(t, dto.Lines, 2)
	assert.Equal(t, "removed", dto.Lines[0].Left.Type)
	assert.Equal(t, -1, dto.Lines[0].Left.LineNumber)
	assert.Equal(t, 0, dto.Lines[1].Right.LineNumber)
	assert.False(t, dto.Lines[1].Right.Placeholder)
}

func TestCompute_InvalidConfigFails(t *testing.T) {
	isolate(t)
	writeFile(t, "bad.yaml", "fold:\n  context_lines: -1\n")
	writeFile(t, "old.txt", "x")

	_, err := execute(t, "", "--config", "bad.yaml", "compute", "old.txt", "old.txt")
	require.ErrorContains(t, err, "invalid configuration")
}

func TestMethods(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "methods", "--format", "yaml")
	require.NoError(t, err)

	var methods []presentation.MethodDTO
	require.NoError(t, yaml.Unmarshal([]byte(out), &methods))
	assert.Equal(t, presentation.FromMethods(), methods)
}

func TestBatch(t *testing.T) {
	isolate(t)
	writeFile(t, filepath.Join("reqs", "left.txt"), "l1\nl2")
	writeFile(t, filepath.Join("reqs", "batch.yaml"), `requests:
  - id: files
    old_file: left.txt
    new_file: left.txt
  - id: broken
    old: 5
    new: "5"
  - id: inline
    old: "a"
    new: "b"
`)

	out, err := execute(t, "", "batch", "--workers", "2", filepath.Join("reqs", "batch.yaml"))
	require.ErrorContains(t, err, "1 of 3 requests failed")

	// Cobra appends the error after the JSON document on the shared buffer.
	dec := json.NewDecoder(strings.NewReader(out))
	var items []presentation.BatchItemDTO
	require.NoError(t, dec.Decode(&items))
	require.Len(t, items, 3)
	assert.Equal(t, "files", items[0].ID)
	require.NotNil(t, items[0].Result)
	assert.True(t, items[0].Result.Summary.Identical())
	assert.Contains(t, items[1].Error, "old value is int")
	assert.Nil(t, items[1].Result)
	require.NotNil(t, items[2].Result)
}

func TestBatch_Fold(t *testing.T) {
	isolate(t)
	writeFile(t, "batch.json", `{"requests": [{"id": "x", "old": "a\nb\nc", "new": "a\nb\nC"}]}`)

	out, err := execute(t, "", "batch", "--fold", "--context", "0", "batch.json")
	require.NoError(t, err)
	var items []presentation.BatchItemDTO
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.NotNil(t, items[0].Plan)
	assert.Nil(t, items[0].Result)
	assert.Len(t, items[0].Plan.Rows, 2)
}

func TestConfigInit(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "config:init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+config.LocalConfigPath)

	data, err := os.ReadFile(config.LocalConfigPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigTemplate(), string(data))

	_, err = execute(t, "", "config:init")
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "", "config:init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_SkipsBrokenConfig(t *testing.T) {
	isolate(t)
	writeFile(t, "broken.yaml", "output:\n  format: xml\n")

	_, err := execute(t, "", "--config", "broken.yaml", "config:init", "--path", "fresh.yaml")
	require.NoError(t, err, "config:init must not need a valid config")
	_, err = os.Stat("fresh.yaml")
	require.NoError(t, err)
}

func TestConfigDiffAndFlag(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "config:init")
	require.NoError(t, err)

	out, err := execute(t, "", "config:diff", "--method", "diffSentences", "--offset", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved diff defaults to "+config.LocalConfigPath)

	out, err = execute(t, "", "config:flag", "result-cache", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "Set result-cache=true")

	cfg, _, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sentences", cfg.Diff.Method)
	assert.Equal(t, 7, cfg.Diff.LinesOffset)
	assert.True(t, cfg.Flags["result-cache"])
	assert.False(t, cfg.Flags["semantic-cleanup"])

	data, err := os.ReadFile(config.LocalConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# In-memory result cache", "comments in other sections survive")

	_, err = execute(t, "", "config:flag", "warp-drive", "true")
	require.ErrorContains(t, err, "unknown flag")
	_, err = execute(t, "", "config:flag", "result-cache", "maybe")
	require.ErrorContains(t, err, "true or false")
	_, err = execute(t, "", "config:diff", "--method", "nope")
	require.ErrorContains(t, err, "unknown method")
}

// syncBuffer is a bytes.Buffer safe for one writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := strings.TrimSpace(b.buf.String())
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestWatchLoop(t *testing.T) {
	dir := isolate(t)
	oldPath := writeFile(t, filepath.Join(dir, "old.txt"), "a\nb")
	newPath := writeFile(t, filepath.Join(dir, "new.txt"), "a\nb")

	a := &app{}
	require.NoError(t, a.setup())
	defer func() { require.NoError(t, a.teardown()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan struct{})
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- a.watchLoop(ctx, &out, oldPath, newPath, a.options(), changes) }()

	// Each edit waits for the previous report so the loop never reads a file
	// mid-change.
	waitReports := func(n int) {
		t.Helper()
		require.Eventually(t, func() bool { return len(out.lines()) == n }, 5*time.Second, 10*time.Millisecond)
	}
	waitReports(1)

	require.NoError(t, os.WriteFile(newPath, []byte("a\nB\nc"), 0644))
	changes <- struct{}{}
	waitReports(2)

	require.NoError(t, os.Remove(oldPath))
	changes <- struct{}{}
	waitReports(3)

	require.NoError(t, os.WriteFile(oldPath, []byte("a\nB\nc"), 0644))
	changes <- struct{}{}
	waitReports(4)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}

	lines := out.lines()
	require.Len(t, lines, 4)
	label := oldPath + " -> " + newPath
	assert.Equal(t, label+": identical, 0 blocks, 0 changed, 0 removed, 0 added, 2 unchanged", lines[0])
	assert.Equal(t, label+": differ, 1 blocks, 1 changed, 0 removed, 1 added, 1 unchanged", lines[1])
	assert.Contains(t, lines[2], label+": error: reading "+oldPath)
	assert.Equal(t, label+": identical, 0 blocks, 0 changed, 0 removed, 0 added, 3 unchanged", lines[3])
}

func TestWatch_RejectsStdin(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "watch", "-", "b.txt")
	require.ErrorContains(t, err, "not stdin")
}
