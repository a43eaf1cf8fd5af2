package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formauth-server/internal/domain/auth"
)

func exerciseRegistry(t *testing.T, r auth.EmailRegistry) {
	t.Helper()
	ctx := context.Background()

	taken, err := r.Contains(ctx, "Test@Example.com")
	require.NoError(t, err)
	assert.True(t, taken, "seeded email should match case-insensitively")

	taken, err = r.Contains(ctx, "new@example.com")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, r.Add(ctx, "New@Example.com"))
	taken, err = r.Contains(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, r.Add(ctx, "new@example.com"), "adding twice is not an error")
	assert.ErrorIs(t, r.Add(ctx, "   "), ErrInvalidEmail)

	taken, err = r.Contains(ctx, "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestMemoryRegistry(t *testing.T) {
	r := NewMemoryRegistry(SeedEmails...)
	exerciseRegistry(t, r)
	assert.Len(t, r.emails, len(SeedEmails)+1, "duplicates are not stored twice")
}

func TestSQLiteRegistry(t *testing.T) {
	r, err := OpenSQLiteRegistry(":memory:", SeedEmails...)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	exerciseRegistry(t, r)
}

func TestSQLiteRegistry_PersistsAcrossOpen(t *testing.T) {
	path := t.TempDir() + "/registry.db"
	r, err := OpenSQLiteRegistry(path)
	require.NoError(t, err)
	require.NoError(t, r.Add(context.Background(), "kept@example.com"))
	require.NoError(t, r.Close())

	r, err = OpenSQLiteRegistry(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	taken, err := r.Contains(context.Background(), "KEPT@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestSQLiteRegistry_Ping(t *testing.T) {
	r, err := OpenSQLiteRegistry(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Ping(context.Background()); err != nil {
		t.Errorf("ping open registry: %v", err)
	}
	r.Close()
	if err := r.Ping(context.Background()); err == nil {
		t.Error("expected ping on closed registry to fail")
	}
}
