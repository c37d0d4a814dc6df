package vcs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git checks working tree state by shelling out to the git binary.
type Git struct {
	binary string
}

func NewGit() *Git {
	return &Git{binary: "git"}
}

// HasUncommittedChanges reports whether path has unstaged or staged edits,
// via `git diff --quiet` against the index and then against HEAD. Exit status 1
// means the file differs; any other failure (no repository, no git binary) is
// returned as an error.
func (g *Git) HasUncommittedChanges(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	for _, args := range [][]string{
		{"diff", "--quiet"},
		{"diff", "--cached", "--quiet"},
	} {
		differs, err := g.differs(ctx, abs, args)
		if err != nil || differs {
			return differs, err
		}
	}
	return false, nil
}

func (g *Git) differs(ctx context.Context, abs string, args []string) (bool, error) {
	cmd := exec.CommandContext(ctx, g.binary, append(args, "--", filepath.Base(abs))...)
	cmd.Dir = filepath.Dir(abs)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	name := "git " + strings.Join(args, " ")
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return false, fmt.Errorf("%s %s: %s", name, abs, msg)
	}
	return false, fmt.Errorf("%s %s: %w", name, abs, err)
}
