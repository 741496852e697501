package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/saldo/internal/category"
	categorystore "github.com/MrJamesThe3rd/saldo/internal/category/store"
	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/matching"
	"github.com/MrJamesThe3rd/saldo/internal/matching/store"
	"github.com/MrJamesThe3rd/saldo/internal/testutil"
)

func setup(t *testing.T) (*matching.Service, *store.Store) {
	t.Helper()

	ctx := context.Background()
	db := testutil.NewSQLite(t)

	for _, id := range []string{"ana", "bob"} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, username, email, balance, created_at) VALUES (?1, ?1, ?2, 0, ?3)`,
			id, id+"@example.com", time.Now().UTC())
		require.NoError(t, err)
	}

	categories := category.NewService(categorystore.New(db, database.SQLite))
	for _, name := range []string{"food", "groceries"} {
		_, err := categories.Create(ctx, category.CreateParams{Name: name})
		require.NoError(t, err)
	}

	st := store.New(db, database.SQLite)

	return matching.NewService(st, categories), st
}

func TestStore_LearnListForget(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	first, err := svc.Learn(ctx, "ana", "mercado", "food")
	require.NoError(t, err)

	// same pattern in another case updates the existing rule
	second, err := svc.Learn(ctx, "ana", "MERCADO", "groceries")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.Learn(ctx, "bob", "MERCADO", "food")
	require.NoError(t, err)

	rules, err := svc.List(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "groceries", rules[0].Category)
	assert.Equal(t, "MERCADO", rules[0].Pattern)

	got, err := svc.Suggest(ctx, "ana", "COMPRA MERCADO CENTRAL")
	require.NoError(t, err)
	assert.Equal(t, "groceries", got)

	assert.ErrorIs(t, svc.Forget(ctx, "bob", first.ID), matching.ErrNotFound)
	require.NoError(t, svc.Forget(ctx, "ana", first.ID))
	assert.ErrorIs(t, svc.Forget(ctx, "ana", uuid.New()), matching.ErrNotFound)

	rules, err = svc.List(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestStore_UnknownCategory(t *testing.T) {
	svc, st := setup(t)

	_, err := svc.Learn(context.Background(), "ana", "YACHT CLUB", "yachts")
	assert.ErrorIs(t, err, matching.ErrUnknownCategory)

	rules, err := st.ListRules(context.Background(), "ana")
	require.NoError(t, err)
	assert.Empty(t, rules)
}
