package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-mentor/api/internal/hint"
)

func TestCodeHash(t *testing.T) {
	req := hint.Request{Problem: hint.Problem{Name: "Two Sum"}, Language: "go", UserCode: "x"}
	same := req
	other := req
	other.CodeOutput = "panic"

	assert.Equal(t, CodeHash(req), CodeHash(same))
	assert.NotEqual(t, CodeHash(req), CodeHash(other))
}

// Интеграционный тест: нужен живой Postgres в TEST_DATABASE_URL.
func openTestRepo(t *testing.T) *HintRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewHintRepo(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestHintRepoRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	session := uuid.NewString()
	hash := "hash-" + session
	resp := hint.Response{
		Hints:         []string{"Use a map."},
		Encouragement: "Nice.",
		NextSteps:     []string{"Store complements."},
	}
	require.NoError(t, repo.Insert(ctx, HintRow{
		SessionID: session, CodeHash: hash, Problem: "Two Sum", Language: "go",
		Engine: "gemini", Model: "gemini-2.5-flash", Response: resp,
	}))

	got, err := repo.FindFresh(ctx, hash, "gemini", "gemini-2.5-flash", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, resp, got)

	_, err = repo.FindFresh(ctx, hash, "gpt", "gpt-4o-mini", time.Hour)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	rows, err := repo.Recent(ctx, session, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Two Sum", rows[0].Problem)
	assert.Equal(t, resp, rows[0].Response)
}
