package worldrepo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

var (
	ErrNoFilepattern = errors.New("at least one pattern is required")
	ErrNotCallable   = errors.New("command was already called")
	ErrAddFailed     = errors.New("exception caught during execution of add command")
)

// AddCommand stages files into the index like "git add", except that
// .gitignore rules are not applied: world data is usually ignored for
// developers but must still be versioned by the map repository.
// An AddCommand can only be called once.
type AddCommand struct {
	repo     *git.Repository
	patterns []string
	update   bool
	called   bool
}

func NewAddCommand(repo *git.Repository) *AddCommand {
	return &AddCommand{repo: repo}
}

// AddFilepattern adds a repository relative path. A directory adds everything
// below it; "." adds the whole working tree. Globs are not supported.
func (c *AddCommand) AddFilepattern(pattern string) (*AddCommand, error) {
	if c.called {
		return c, ErrNotCallable
	}
	c.patterns = append(c.patterns, pattern)
	return c, nil
}

// SetUpdate makes the command drop index entries whose file is gone from the
// working tree. Submodule entries are always kept.
func (c *AddCommand) SetUpdate(update bool) *AddCommand {
	c.update = update
	return c
}

func (c *AddCommand) IsUpdate() bool { return c.update }

// worktreeNode is a file, symlink or submodule found in the working tree.
type worktreeNode struct {
	info    os.FileInfo
	gitlink bool
}

// Call stages the matching files and writes the new index.
func (c *AddCommand) Call() (*index.Index, error) {
	if len(c.patterns) == 0 {
		return nil, ErrNoFilepattern
	}
	if c.called {
		return nil, ErrNotCallable
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddFailed, err)
	}
	current, err := c.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("%w: read index: %w", ErrAddFailed, err)
	}

	existing := make(map[string][]*index.Entry)
	for _, e := range current.Entries {
		existing[e.Name] = append(existing[e.Name], e)
	}

	nodes := make(map[string]worktreeNode)
	if err := walk(wt.Filesystem, "", existing, nodes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddFailed, err)
	}

	paths := make(map[string]struct{}, len(existing)+len(nodes))
	for p := range existing {
		paths[p] = struct{}{}
	}
	for p := range nodes {
		paths[p] = struct{}{}
	}

	matcher := newMatcher(c.patterns)
	var entries []*index.Entry
	for p := range paths {
		old := existing[p]
		node, inTree := nodes[p]

		if !matcher.match(p) {
			entries = append(entries, old...)
			continue
		}
		if !inTree {
			if len(old) > 0 && (!c.update || old[0].Mode == filemode.Submodule) {
				entries = append(entries, old...)
			}
			continue
		}
		if len(old) == 1 && old[0].Stage == index.Merged && old[0].SkipWorktree {
			entries = append(entries, old[0])
			continue
		}

		entry, err := c.stage(wt.Filesystem, p, node, old)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrAddFailed, p, err)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Stage < entries[j].Stage
	})

	version := current.Version
	if version == 0 {
		version = 2
	}
	idx := &index.Index{Version: version, Entries: entries}
	if err := c.repo.Storer.SetIndex(idx); err != nil {
		return nil, fmt.Errorf("%w: write index: %w", ErrAddFailed, err)
	}
	c.called = true
	return idx, nil
}

// stage builds the stage 0 entry for p. Conflicting stages collapse into it.
func (c *AddCommand) stage(fs billy.Filesystem, p string, node worktreeNode, old []*index.Entry) (*index.Entry, error) {
	entry := &index.Entry{Name: p}
	if len(old) == 1 && old[0].Stage == index.Merged {
		cp := *old[0]
		entry = &cp
	}

	if node.gitlink {
		hash, err := submoduleHead(fs, p, old)
		if err != nil {
			return nil, err
		}
		entry.Mode = filemode.Submodule
		entry.Hash = hash
		entry.Size = 0
		entry.ModifiedAt = zeroTime
		return entry, nil
	}

	mode, err := filemode.NewFromOSFileMode(node.info.Mode())
	if err != nil {
		return nil, err
	}
	hash, err := c.insertBlob(fs, p, node.info)
	if err != nil {
		return nil, err
	}
	entry.Mode = mode
	entry.Hash = hash
	entry.Size = uint32(node.info.Size())
	entry.ModifiedAt = node.info.ModTime()
	entry.Stage = index.Merged
	return entry, nil
}

func (c *AddCommand) insertBlob(fs billy.Filesystem, p string, info os.FileInfo) (plumbing.Hash, error) {
	obj := c.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer w.Close()

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := fs.Readlink(p)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		obj.SetSize(int64(len(target)))
		if _, err := io.WriteString(w, target); err != nil {
			return plumbing.ZeroHash, err
		}
	} else {
		f, err := fs.Open(p)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		defer f.Close()
		obj.SetSize(info.Size())
		if _, err := io.Copy(w, f); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}
	return c.repo.Storer.SetEncodedObject(obj)
}

// walk collects files below dir. Directories holding a nested repository
// become submodule nodes unless the index tracks files inside them.
func walk(fs billy.Filesystem, dir string, existing map[string][]*index.Entry, nodes map[string]worktreeNode) error {
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, info := range infos {
		name := info.Name()
		if name == git.GitDirName {
			continue
		}
		p := name
		if dir != "" {
			p = path.Join(dir, name)
		}

		if !info.IsDir() {
			nodes[p] = worktreeNode{info: info}
			continue
		}
		if isSubmodule(fs, p, existing) {
			nodes[p] = worktreeNode{info: info, gitlink: true}
			continue
		}
		if err := walk(fs, p, existing, nodes); err != nil {
			return err
		}
	}
	return nil
}

func isSubmodule(fs billy.Filesystem, p string, existing map[string][]*index.Entry) bool {
	if old := existing[p]; len(old) > 0 && old[0].Mode == filemode.Submodule {
		return true
	}
	if _, err := fs.Lstat(path.Join(p, git.GitDirName)); err != nil {
		return false
	}
	prefix := p + "/"
	for name := range existing {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	return true
}

// submoduleHead resolves the HEAD commit of the nested repository at p.
func submoduleHead(fs billy.Filesystem, p string, old []*index.Entry) (plumbing.Hash, error) {
	sub, err := git.PlainOpen(path.Join(fs.Root(), p))
	if err != nil {
		if len(old) > 0 {
			return old[0].Hash, nil
		}
		return plumbing.ZeroHash, err
	}
	head, err := sub.Head()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return head.Hash(), nil
}

type matcher struct {
	all      bool
	patterns []string
}

func newMatcher(patterns []string) matcher {
	m := matcher{}
	for _, p := range patterns {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "./"), "/")
		if p == "." || p == "" {
			m.all = true
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

func (m matcher) match(p string) bool {
	if m.all {
		return true
	}
	for _, pattern := range m.patterns {
		if p == pattern || strings.HasPrefix(p, pattern+"/") {
			return true
		}
	}
	return false
}
