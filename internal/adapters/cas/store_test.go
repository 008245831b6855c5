package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weave/internal/adapters/cas"
	"go.trai.ch/weave/internal/adapters/fs"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore(fs.NewHasher())

	rec := domain.Record{
		BuildFile:   filepath.Join(root, "built", "build.ninja"),
		Digest:      "0123456789abcdef",
		Changed:     true,
		Inputs:      []string{filepath.Join(root, "weave.work.yaml")},
		Variants:    []string{"linux-gcc-amd64-dbg-dcrt"},
		Projects:    []string{"app linux-gcc-amd64-dbg-dcrt"},
		Edges:       7,
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.Put(root, rec))

	got, err := store.Get(root, rec.BuildFile)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	rec.Edges = 9
	require.NoError(t, store.Put(root, rec))
	got, err = store.Get(root, rec.BuildFile)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Edges)

	entries, err := os.ReadDir(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "records are keyed by build file")
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	got, err := cas.NewStore(fs.NewHasher()).Get(t.TempDir(), "/nowhere/build.ninja")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().Digest([]byte("/ws/built/build.ninja")).Return("corrupt").AnyTimes()

	path := filepath.Join(root, domain.DefaultStorePath(), "corrupt.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), domain.FilePerm))

	_, err := cas.NewStore(hasher).Get(root, "/ws/built/build.ninja")
	require.ErrorIs(t, err, domain.ErrStoreUnmarshalFailed)
}
