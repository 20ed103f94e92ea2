package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScopeReleasesInReverseOrder(t *testing.T) {
	scope := NewScope(zap.NewNop())

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		scope.Register(KindBlob, name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	require.Equal(t, 3, scope.Len())

	scope.Release(context.Background())
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Equal(t, 0, scope.Len())
}

func TestScopeContinuesAfterFailure(t *testing.T) {
	scope := NewScope(zap.NewNop())

	var failures []string
	scope.OnFailure = func(kind string) { failures = append(failures, kind) }

	var released []string
	scope.Register(KindLocalDir, "first", func(context.Context) error {
		released = append(released, "first")
		return nil
	})
	scope.Register(KindBlob, "broken", func(context.Context) error {
		return errors.New("bucket unreachable")
	})
	scope.Register(KindModelFile, "panics", func(context.Context) error {
		panic("boom")
	})
	scope.Register(KindLocalFile, "last", func(context.Context) error {
		released = append(released, "last")
		return nil
	})

	assert.NotPanics(t, func() { scope.Release(context.Background()) })
	assert.Equal(t, []string{"last", "first"}, released)
	assert.Equal(t, []string{KindModelFile, KindBlob}, failures)
}

func TestScopeReleaseIsIdempotent(t *testing.T) {
	scope := NewScope(zap.NewNop())

	calls := 0
	scope.Register(KindBlob, "x", func(context.Context) error {
		calls++
		return nil
	})

	scope.Release(context.Background())
	scope.Release(context.Background())
	assert.Equal(t, 1, calls)
}

func TestScopeFilesAlreadyGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	file := filepath.Join(dir, "frame_0001.jpg")
	require.NoError(t, os.WriteFile(file, []byte("jpeg"), 0o644))

	scope := NewScope(zap.NewNop())
	failed := 0
	scope.OnFailure = func(string) { failed++ }

	scope.RegisterDir(dir)
	scope.RegisterFile(file)
	scope.RegisterFile(filepath.Join(dir, "never-created.jpg"))

	require.NoError(t, os.Remove(file))
	scope.Release(context.Background())

	assert.Zero(t, failed)
	assert.NoDirExists(t, dir)
}
