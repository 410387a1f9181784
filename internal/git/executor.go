// Package git reads file contents from git revisions so a working copy can
// be compared against a committed version.
package git

import "context"

// Reader loads file contents from a repository.
type Reader interface {
	// ShowFile returns the contents of path as of rev. path is relative to
	// the working directory of the reader.
	ShowFile(ctx context.Context, rev, path string) (string, error)
	IsGitRepo(ctx context.Context) bool
	GetRepoRoot(ctx context.Context) (string, error)
}
