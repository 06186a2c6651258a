package worldrepo

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

var zeroTime time.Time

// Open opens the repository at dir, initialising it when missing.
func Open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open world repository: %w", err)
	}
	return repo, nil
}

// Stage adds the patterns (or the whole tree when none are given) of the
// repository at dir to its index.
func Stage(dir string, update bool, patterns ...string) (*index.Index, error) {
	repo, err := Open(dir)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cmd := NewAddCommand(repo).SetUpdate(update)
	for _, p := range patterns {
		if _, err := cmd.AddFilepattern(p); err != nil {
			return nil, err
		}
	}
	return cmd.Call()
}
