package genres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/testutil"
)

func TestSummary(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	a := testutil.SeedBook(t, d, author, "Uno")
	b := testutil.SeedBook(t, d, author, "Dos")
	testutil.SeedInventory(t, d, a, 3, 2, 1)
	testutil.SeedInventory(t, d, b, 4, 4, 0)
	_, err := d.Exec(`INSERT INTO books (title, genre, editorial, publication_date, author_id) VALUES (?, ?, ?, ?, ?)`,
		"Tres", "Cuento", "Alfaguara", testutil.Today, author)
	require.NoError(t, err)
	svc := NewService(d)
	ctx := context.Background()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Genre{
		{Name: "Cuento", BookCount: 1},
		{Name: "Novela", BookCount: 2, TotalCopies: 7, AvailableCopies: 6},
	}, all)

	g, err := svc.Get(ctx, " Novela ")
	require.NoError(t, err)
	assert.Equal(t, 2, g.BookCount)

	_, err = svc.Get(ctx, "Poesia")
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}
