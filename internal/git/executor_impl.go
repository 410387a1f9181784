package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	// ErrNotGitRepo indicates the directory is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrUnknownRevision indicates the revision does not resolve to a commit.
	ErrUnknownRevision = errors.New("unknown revision")

	// ErrPathNotInRevision indicates the file does not exist at the revision.
	ErrPathNotInRevision = errors.New("path does not exist at revision")
)

// Compile-time check that RealExecutor implements Reader.
var _ Reader = (*RealExecutor)(nil)

// RealExecutor implements Reader by executing git commands.
type RealExecutor struct {
	workDir string
}

// NewRealExecutor creates a new RealExecutor rooted at workDir.
// An empty workDir uses the process working directory.
func NewRealExecutor(workDir string) *RealExecutor {
	return &RealExecutor{workDir: workDir}
}

// runGitOutput executes a git command and returns raw stdout.
func (e *RealExecutor) runGitOutput(ctx context.Context, args ...string) (string, error) {
	//nolint:gosec // G204: args come from controlled sources
	cmd := exec.CommandContext(ctx, "git", args...)
	if e.workDir != "" {
		cmd.Dir = e.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", parseGitError(stderrStr, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

// parseGitError converts git stderr messages to specific error types.
func parseGitError(stderr string, originalErr error) error {
	stderrLower := strings.ToLower(stderr)

	if strings.Contains(stderrLower, "not a git repository") {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, stderr)
	}

	// fatal: path 'x' does not exist in 'HEAD'
	// fatal: path 'x' exists on disk, but not in 'HEAD'
	if strings.Contains(stderrLower, "does not exist in") ||
		strings.Contains(stderrLower, "exists on disk, but not in") {
		return fmt.Errorf("%w: %s", ErrPathNotInRevision, stderr)
	}

	// fatal: invalid object name 'nope'.
	// fatal: ambiguous argument 'nope': unknown revision or path not in the working tree.
	if strings.Contains(stderrLower, "invalid object name") ||
		strings.Contains(stderrLower, "unknown revision") ||
		strings.Contains(stderrLower, "bad revision") {
		return fmt.Errorf("%w: %s", ErrUnknownRevision, stderr)
	}

	return fmt.Errorf("git error: %s: %w", stderr, originalErr)
}

// ShowFile returns the contents of path at rev, HEAD when rev is empty.
// Absolute paths are made relative to workDir; the "./" prefix makes git
// resolve path against workDir instead of the repository root.
func (e *RealExecutor) ShowFile(ctx context.Context, rev, path string) (string, error) {
	if rev == "" {
		rev = "HEAD"
	}
	if strings.HasPrefix(rev, "-") {
		return "", fmt.Errorf("%w: %s", ErrUnknownRevision, rev)
	}
	if filepath.IsAbs(path) {
		base := e.workDir
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("resolving %s: %w", path, err)
			}
			base = wd
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", path, err)
		}
		path = rel
	}
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "../") {
		path = "./" + path
	}
	return e.runGitOutput(ctx, "show", rev+":"+path)
}

// IsGitRepo reports whether workDir is inside a git repository.
func (e *RealExecutor) IsGitRepo(ctx context.Context) bool {
	_, err := e.runGitOutput(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// GetRepoRoot returns the root directory of the git repository.
func (e *RealExecutor) GetRepoRoot(ctx context.Context) (string, error) {
	out, err := e.runGitOutput(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
