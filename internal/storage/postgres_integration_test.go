//go:build integration

package storage

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Run with: FINANZE_TEST_POSTGRES_URL=postgres://... go test -tags integration ./internal/storage/
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("FINANZE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("FINANZE_TEST_POSTGRES_URL not set")
	}

	repo, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	// A fresh user per run keeps reruns against the same database independent.
	exerciseRepository(t, repo, "pg-"+uuid.NewString())
}
