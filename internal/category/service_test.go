package category_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/saldo/internal/category"
	"github.com/MrJamesThe3rd/saldo/internal/category/store"
	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/testutil"
)

func newService(t *testing.T) *category.Service {
	t.Helper()

	return category.NewService(store.New(testutil.NewSQLite(t), database.SQLite))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	c, err := svc.Create(ctx, category.CreateParams{Name: "  food ", Default: true})
	require.NoError(t, err)
	assert.Equal(t, "food", c.Name)
	assert.True(t, c.Default)

	got, err := svc.Get(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, "food", got.Name)
	assert.True(t, got.Default)
}

func TestService_CreateUpserts(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Create(ctx, category.CreateParams{Name: "rent", Default: true})
	require.NoError(t, err)

	_, err = svc.Create(ctx, category.CreateParams{Name: "rent"})
	require.NoError(t, err)

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.False(t, cats[0].Default)
}

func TestService_CreateMissingName(t *testing.T) {
	_, err := newService(t).Create(context.Background(), category.CreateParams{Name: "   "})
	assert.ErrorIs(t, err, category.ErrMissingName)
}

func TestService_Exists(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Create(ctx, category.CreateParams{Name: "food"})
	require.NoError(t, err)

	ok, err := svc.Exists(ctx, "food")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, "yachts")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Get(ctx, "yachts")
	assert.ErrorIs(t, err, category.ErrNotFound)
}

func TestService_ListSorted(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	n, err := svc.Seed(ctx, []category.CreateParams{{Name: "transport"}, {Name: "food"}, {Name: "rent"}})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cats, err := svc.List(ctx)
	require.NoError(t, err)

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}

	assert.Equal(t, []string{"food", "rent", "transport"}, names)
}

func TestService_SeedStopsOnInvalidEntry(t *testing.T) {
	n, err := newService(t).Seed(context.Background(), []category.CreateParams{{Name: "food"}, {Name: ""}})
	assert.ErrorIs(t, err, category.ErrMissingName)
	assert.Equal(t, 1, n)
}
