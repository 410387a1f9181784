package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sidediff/internal/diff"
)

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`requests:
  - id: inline
    old: "a\nb"
    new: "a\nc"
    method: diffWords
  - old_file: left.txt
    new_file: /abs/right.txt
    disable_word_diff: true
    lines_offset: 4
  - id: number
    old: 12
    new: "12"
`), 0644))

	reqs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	require.Equal(t, "inline", reqs[0].ID)
	require.Equal(t, "a\nb", reqs[0].Old)
	require.Equal(t, diff.MethodWords, reqs[0].Options(diff.Options{}).CompareMethod)

	require.Equal(t, filepath.Join(dir, "left.txt"), reqs[1].OldFile)
	require.Equal(t, "/abs/right.txt", reqs[1].NewFile)
	opts := reqs[1].Options(diff.Options{CompareMethod: diff.MethodCSS})
	require.Equal(t, diff.Options{CompareMethod: diff.MethodCSS, DisableWordDiff: true, LinesOffset: 4}, opts)

	require.Equal(t, 12, reqs[2].Old, "YAML scalars keep their decoded type")
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.JSON")
	require.NoError(t, os.WriteFile(path, []byte(`{
	"requests": [
		{"id": "j", "old": "x", "new": "y", "lines_offset": 0},
		{"old": ["not", "text"], "new": "y"}
	]
}`), 0644))

	reqs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	require.NotNil(t, reqs[0].LinesOffset)
	require.Zero(t, *reqs[0].LinesOffset)
	require.Equal(t, []any{"not", "text"}, reqs[1].Old)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "reading batch file")

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("requests:\n  - olde: typo\n"), 0644))
	_, err = Load(unknown)
	require.ErrorContains(t, err, "parsing")

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{"requests": [`), 0644))
	_, err = Load(badJSON)
	require.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	reqs, err := Parse(nil, false)
	require.NoError(t, err)
	require.Empty(t, reqs)
}

func TestRequest_Texts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "side.txt")
	require.NoError(t, os.WriteFile(file, []byte("from file"), 0644))

	tests := []struct {
		name    string
		req     Request
		wantOld string
		wantNew string
		wantErr string
	}{
		{name: "inline", req: Request{Old: "a", New: "b"}, wantOld: "a", wantNew: "b"},
		{name: "files", req: Request{OldFile: file, New: ""}, wantOld: "from file", wantNew: ""},
		{name: "missing side", req: Request{Old: "a"}, wantErr: "new value is <nil>"},
		{name: "non-string", req: Request{Old: true, New: "b"}, wantErr: "old value is bool"},
		{name: "both forms", req: Request{Old: "a", OldFile: file, New: "b"}, wantErr: "both old and old_file"},
		{name: "unreadable", req: Request{Old: "a", NewFile: filepath.Join(dir, "nope")}, wantErr: "reading new file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldText, newText, err := tt.req.Texts()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOld, oldText)
			require.Equal(t, tt.wantNew, newText)
		})
	}
}

func TestRequest_OptionsUnknownMethodFallsBack(t *testing.T) {
	opts := Request{Method: "diffBogus"}.Options(diff.Options{CompareMethod: diff.MethodJSON})
	require.Equal(t, diff.DefaultMethod, opts.CompareMethod)
}
