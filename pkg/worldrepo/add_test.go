package worldrepo_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib/pkg/worldrepo"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func names(idx *index.Index) []string {
	out := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		out = append(out, e.Name)
	}
	return out
}

func TestAddCommand_RequiresPattern(t *testing.T) {
	_, repo := initRepo(t)
	_, err := worldrepo.NewAddCommand(repo).Call()
	assert.ErrorIs(t, err, worldrepo.ErrNoFilepattern)
}

func TestAddCommand_StagesIgnoredFiles(t *testing.T) {
	dir, repo := initRepo(t)
	writeFile(t, dir, ".gitignore", "*.mca\nlevel.dat\n")
	writeFile(t, dir, "world/region/r.0.0.mca", "region-data")
	writeFile(t, dir, "world/level.dat", "level")
	writeFile(t, dir, "map.yml", "name: Arena\n")

	cmd, err := worldrepo.NewAddCommand(repo).AddFilepattern(".")
	require.NoError(t, err)
	staged, err := cmd.Call()
	require.NoError(t, err)

	assert.Equal(t, []string{".gitignore", "map.yml", "world/level.dat", "world/region/r.0.0.mca"}, names(staged))
	for _, e := range staged.Entries {
		assert.Equal(t, index.Merged, e.Stage)
		assert.NotContains(t, e.Name, ".git/")
	}

	region, err := staged.Entry("world/region/r.0.0.mca")
	require.NoError(t, err)
	assert.Equal(t, plumbing.ComputeHash(plumbing.BlobObject, []byte("region-data")), region.Hash)
	assert.Equal(t, uint32(len("region-data")), region.Size)

	_, err = repo.BlobObject(region.Hash)
	assert.NoError(t, err, "blob must be written to the object database")

	stored, err := repo.Storer.Index()
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 4)
}

func TestAddCommand_PatternLimitsPaths(t *testing.T) {
	dir, repo := initRepo(t)
	writeFile(t, dir, "world/a.dat", "a")
	writeFile(t, dir, "world_nether/b.dat", "b")
	writeFile(t, dir, "other.txt", "c")

	cmd := worldrepo.NewAddCommand(repo)
	_, err := cmd.AddFilepattern("world")
	require.NoError(t, err)
	idx, err := cmd.Call()
	require.NoError(t, err)
	assert.Equal(t, []string{"world/a.dat"}, names(idx))

	_, err = cmd.AddFilepattern("other.txt")
	assert.ErrorIs(t, err, worldrepo.ErrNotCallable)
	_, err = cmd.Call()
	assert.ErrorIs(t, err, worldrepo.ErrNotCallable)
}

func TestAddCommand_MissingFilesAndUpdate(t *testing.T) {
	dir, _ := initRepo(t)
	writeFile(t, dir, "world/a.dat", "a")
	writeFile(t, dir, "world/b.dat", "b")

	_, err := worldrepo.Stage(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "world", "b.dat")))

	kept, err := worldrepo.Stage(dir, false, "world")
	require.NoError(t, err)
	assert.Equal(t, []string{"world/a.dat", "world/b.dat"}, names(kept), "without update missing files stay staged")

	updated, err := worldrepo.Stage(dir, true, "world")
	require.NoError(t, err)
	assert.Equal(t, []string{"world/a.dat"}, names(updated))
}

func TestAddCommand_RestagesModifiedContent(t *testing.T) {
	dir, _ := initRepo(t)
	writeFile(t, dir, "level.dat", "v1")
	_, err := worldrepo.Stage(dir, false, "level.dat")
	require.NoError(t, err)

	writeFile(t, dir, "level.dat", "version-2")
	idx, err := worldrepo.Stage(dir, false, "level.dat")
	require.NoError(t, err)
	e, err := idx.Entry("level.dat")
	require.NoError(t, err)
	assert.Equal(t, plumbing.ComputeHash(plumbing.BlobObject, []byte("version-2")), e.Hash)
}

func TestAddCommand_SkipWorktreeEntriesUntouched(t *testing.T) {
	dir, repo := initRepo(t)
	writeFile(t, dir, "level.dat", "v1")
	_, err := worldrepo.Stage(dir, false)
	require.NoError(t, err)

	idx, err := repo.Storer.Index()
	require.NoError(t, err)
	idx.Version = 3
	idx.Entries[0].SkipWorktree = true
	original := idx.Entries[0].Hash
	require.NoError(t, repo.Storer.SetIndex(idx))

	writeFile(t, dir, "level.dat", "changed")
	staged, err := worldrepo.Stage(dir, false)
	require.NoError(t, err)
	e, err := staged.Entry("level.dat")
	require.NoError(t, err)
	assert.Equal(t, original, e.Hash)
}

func TestAddCommand_CollapsesConflictStages(t *testing.T) {
	dir, repo := initRepo(t)
	writeFile(t, dir, "level.dat", "resolved")

	conflict := &index.Index{Version: 2}
	for _, stage := range []index.Stage{index.AncestorMode, index.OurMode, index.TheirMode} {
		conflict.Entries = append(conflict.Entries, &index.Entry{Name: "level.dat", Stage: stage, Hash: plumbing.NewHash("1111111111111111111111111111111111111111")})
	}
	require.NoError(t, repo.Storer.SetIndex(conflict))

	staged, err := worldrepo.Stage(dir, false, "level.dat")
	require.NoError(t, err)
	require.Len(t, staged.Entries, 1)
	assert.Equal(t, index.Merged, staged.Entries[0].Stage)
	assert.Equal(t, plumbing.ComputeHash(plumbing.BlobObject, []byte("resolved")), staged.Entries[0].Hash)
}

// nestedRepo creates a repository with one commit at root/name and returns its HEAD.
func nestedRepo(t *testing.T, root, name string) plumbing.Hash {
	t.Helper()
	dir := filepath.Join(root, name)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	writeFile(t, dir, "schematic.nbt", "blocks")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("schematic.nbt")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "builder", Email: "builder@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func entry(idx *index.Index, name string) *index.Entry {
	for _, e := range idx.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func TestAddCommand_NestedRepositoryBecomesGitlink(t *testing.T) {
	dir, repo := initRepo(t)
	writeFile(t, dir, "map.yml", "name: Arena\n")
	head := nestedRepo(t, dir, "lobby")

	staged, err := worldrepo.Stage(dir, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"lobby", "map.yml"}, names(staged))
	link := entry(staged, "lobby")
	require.NotNil(t, link)
	assert.Equal(t, filemode.Submodule, link.Mode)
	assert.Equal(t, head, link.Hash)
	assert.Zero(t, link.Size)
	for _, name := range names(staged) {
		assert.False(t, name == ".git" || strings.HasPrefix(name, ".git/") || strings.Contains(name, "/.git"), name)
	}

	stored, err := repo.Storer.Index()
	require.NoError(t, err)
	assert.Equal(t, filemode.Submodule, entry(stored, "lobby").Mode)
}

func TestAddCommand_UpdateKeepsMissingGitlink(t *testing.T) {
	dir, _ := initRepo(t)
	writeFile(t, dir, "old.yml", "name: Old\n")
	head := nestedRepo(t, dir, "lobby")
	_, err := worldrepo.Stage(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "lobby")))
	require.NoError(t, os.Remove(filepath.Join(dir, "old.yml")))
	writeFile(t, dir, "new.yml", "name: New\n")

	staged, err := worldrepo.Stage(dir, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"lobby", "new.yml"}, names(staged), "deleted files drop, gitlinks stay, new files are added")
	link := entry(staged, "lobby")
	assert.Equal(t, filemode.Submodule, link.Mode)
	assert.Equal(t, head, link.Hash)
}

func TestAddCommand_TrackedFilesInsideNestedRepository(t *testing.T) {
	dir, _ := initRepo(t)
	writeFile(t, dir, "vendor/readme.txt", "tracked before the nested repo appeared")
	_, err := worldrepo.Stage(dir, false)
	require.NoError(t, err)

	nestedRepo(t, dir, "vendor")
	staged, err := worldrepo.Stage(dir, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"vendor/readme.txt", "vendor/schematic.nbt"}, names(staged))
}
