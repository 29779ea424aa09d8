package books

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
	"library-backend/internal/testutil"
)

func request(author int64) BookRequest {
	return BookRequest{
		Title:           "Rayuela",
		Genre:           "Novela",
		Editorial:       "Sudamericana",
		PublicationDate: "1963-06-28",
		AuthorID:        author,
	}
}

func TestCreate(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "julio.cortazar@mail.com")
	svc := NewService(d, testutil.Clock())
	ctx := context.Background()

	res, err := svc.Create(ctx, request(author))
	require.NoError(t, err)
	assert.Equal(t, "1963-06-28", res.PublicationDate)
	assert.Equal(t, "Gabriel Garcia", res.AuthorName)

	_, err = svc.Create(ctx, request(author))
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err), "duplicate title for the same author")

	tests := []struct {
		name   string
		mutate func(r *BookRequest)
		code   apierr.Code
	}{
		{"published before the author was born", func(r *BookRequest) { r.PublicationDate = "1900-01-01" }, apierr.CodeInvalidArgument},
		{"published in the future", func(r *BookRequest) { r.PublicationDate = testutil.Date(1) }, apierr.CodeInvalidArgument},
		{"published before 868", func(r *BookRequest) { r.PublicationDate = "0867-12-31" }, apierr.CodeInvalidArgument},
		{"malformed date", func(r *BookRequest) { r.PublicationDate = "28/06/1963" }, apierr.CodeInvalidArgument},
		{"unknown author", func(r *BookRequest) { r.AuthorID = 999 }, apierr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(author)
			req.Title = "Otro"
			tt.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.Equal(t, tt.code, apierr.CodeOf(err))
		})
	}
}

func TestUpdateKeepsAuthor(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "julio.cortazar@mail.com")
	other := testutil.SeedAuthor(t, d, "otro.autor@mail.com")
	svc := NewService(d, testutil.Clock())
	ctx := context.Background()
	created, err := svc.Create(ctx, request(author))
	require.NoError(t, err)

	req := request(other)
	_, err = svc.Update(ctx, created.BookID, req)
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

	req = request(author)
	req.Genre = "Cuento"
	res, err := svc.Update(ctx, created.BookID, req)
	require.NoError(t, err)
	assert.Equal(t, "Cuento", res.Genre)

	_, err = svc.Update(ctx, 999, req)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}

func TestDeleteBlockedThenCascades(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	book := testutil.SeedBook(t, d, author, "Cien Anos")
	student := testutil.SeedStudent(t, d, "ABC1234567", "ana.lopez@mail.com", "70001111")
	testutil.SeedInventory(t, d, book, 3, 2, 1)
	active := testutil.SeedLoan(t, d, student, book, rules.StateActive)
	returned := testutil.SeedLoan(t, d, student, book, rules.StateReturned)
	_, err := d.Exec(`INSERT INTO returns (return_ulid, loan_id, date_return, penalty) VALUES (?, ?, ?, ?)`,
		"R0000000000000000000000001", returned, testutil.Today, "0")
	require.NoError(t, err)
	svc := NewService(d, testutil.Clock())
	ctx := context.Background()

	err = svc.Delete(ctx, book)
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

	_, err = d.Exec(`UPDATE loans SET state = ? WHERE loan_id = ?`, rules.StateReturned, active)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, book))

	for _, table := range []string{"returns", "loans", "inventories", "books"} {
		var n int
		require.NoError(t, d.Get(&n, "SELECT COUNT(*) FROM "+table))
		assert.Zero(t, n, table)
	}
}

func TestListFilters(t *testing.T) {
	d := testutil.TempDB(t)
	a := testutil.SeedAuthor(t, d, "a@mail.com")
	b := testutil.SeedAuthor(t, d, "b@mail.com")
	testutil.SeedBook(t, d, a, "Uno")
	testutil.SeedBook(t, d, b, "Dos")
	svc := NewService(d, testutil.Clock())

	all, err := svc.List(context.Background(), BookFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(context.Background(), BookFilter{AuthorID: &b})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dos", mine[0].Title)
}

func TestDeleteGuardReadsInsideTransaction(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	book := testutil.SeedBook(t, d, author, "Cien Anos")
	student := testutil.SeedStudent(t, d, "ABC1234567", "ana.lopez@mail.com", "70001111")
	store := NewStore(d)
	ctx := context.Background()

	// Tx 内でまだコミットしていない貸出もガードに数えられること
	err := db.RunInTx(ctx, d, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		require.NoError(t, store.lockByID(ctx, tx, book))
		_, err := tx.ExecContext(ctx, `
			INSERT INTO loans (loan_ulid, student_id, book_id, date_loan, due_date, amount, state)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"W0000000000000000000000001", student, book, testutil.Today, testutil.Today, "0", rules.StateActive)
		require.NoError(t, err)

		n, err := store.CountActiveLoans(ctx, tx, book)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return errors.New("rollback")
	})
	require.Error(t, err)

	n, err := store.CountActiveLoans(ctx, d, book)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteMissingBook(t *testing.T) {
	svc := NewService(testutil.TempDB(t), testutil.Clock())

	err := svc.Delete(context.Background(), 999)

	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}
