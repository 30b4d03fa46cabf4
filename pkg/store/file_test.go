package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestFileStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s, dir := newFileStore(t)

	require.NoError(t, s.Create(ctx, "users", "a@b.com", record{Name: "A", Count: 1}))
	assert.FileExists(t, filepath.Join(dir, "users", "a@b.com.json"))

	var got record
	require.NoError(t, s.Read(ctx, "users", "a@b.com", &got))
	assert.Equal(t, record{Name: "A", Count: 1}, got)

	require.NoError(t, s.Update(ctx, "users", "a@b.com", record{Name: "A", Count: 2}))
	require.NoError(t, s.Read(ctx, "users", "a@b.com", &got))
	assert.Equal(t, 2, got.Count)

	ok, err := s.Exists(ctx, "users", "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "users", "a@b.com"))
	ok, err = s.Exists(ctx, "users", "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_Errors(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	require.NoError(t, s.Create(ctx, "tokens", "abc", record{Name: "x"}))

	err := s.Create(ctx, "tokens", "abc", record{Name: "y"})
	assert.ErrorIs(t, err, ErrExists)

	var got record
	err = s.Read(ctx, "tokens", "missing", &got)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "tokens/missing")

	assert.ErrorIs(t, s.Update(ctx, "tokens", "missing", record{}), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "tokens", "missing"), ErrNotFound)
}

func TestFileStore_UpdateLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	s, dir := newFileStore(t)

	require.NoError(t, s.Create(ctx, "menu", "menu", []string{"a"}))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Update(ctx, "menu", "menu", []string{"a", "b"}))
	}

	entries, err := os.ReadDir(filepath.Join(dir, "menu"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_CanceledContext(t *testing.T) {
	s, _ := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Create(ctx, "users", "a", record{}), context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		collection string
		key        string
		wantErr    bool
	}{
		{"users", "a@b.com", false},
		{"tokens", "0123456789abcdef01234567", false},
		{"users", "", true},
		{"", "key", true},
		{"users", "../etc/passwd", true},
		{"users", "a/b", true},
		{"users", `a\b`, true},
		{"users", "..", true},
		{"users", "a:b", true},
	}

	for _, tt := range tests {
		err := ValidateKey(tt.collection, tt.key)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidKey, "%q/%q", tt.collection, tt.key)
		} else {
			assert.NoError(t, err, "%q/%q", tt.collection, tt.key)
		}
	}
}

func TestWithLogging_PassesErrorsThrough(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)
	s := WithLogging(fs, zap.NewNop())

	require.NoError(t, s.Create(ctx, "users", "a", record{Name: "A"}))
	assert.ErrorIs(t, s.Create(ctx, "users", "a", record{}), ErrExists)

	var got record
	assert.ErrorIs(t, s.Read(ctx, "users", "b", &got), ErrNotFound)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())
}
