package authors

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

func request(email string) AuthorRequest {
	return AuthorRequest{
		FirstName: "Isabel",
		LastName:  "Allende",
		Email:     email,
		BirthDate: "1942-08-02",
	}
}

func TestCreateBirthDateRules(t *testing.T) {
	tests := []struct {
		name  string
		birth string
		ok    bool
	}{
		{"regular", "1942-08-02", true},
		{"exactly five years ago", "2020-10-15", true},
		{"younger than five", "2020-10-16", false},
		{"future", testutil.Date(1), false},
		{"before 1500", "1499-12-31", false},
		{"not a date", "02-08-1942", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(testutil.TempDB(t), testutil.Clock())
			req := request("isabel@mail.com")
			req.BirthDate = tt.birth

			res, err := svc.Create(context.Background(), req)

			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.birth, res.BirthDate)
				assert.Empty(t, res.BookIDs)
				return
			}
			var api *apierr.APIError
			require.ErrorAs(t, err, &api)
			assert.Equal(t, apierr.CodeInvalidArgument, api.Code)
			assert.Contains(t, api.Fields, "birth_date")
		})
	}
}

func TestEmailIsUnique(t *testing.T) {
	svc := NewService(testutil.TempDB(t), testutil.Clock())
	ctx := context.Background()
	first, err := svc.Create(ctx, request("isabel@mail.com"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, request("otra@mail.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, request("isabel@mail.com"))
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

	_, err = svc.Update(ctx, second.AuthorID, request("isabel@mail.com"))
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

	// 自分自身のメールはそのまま使える
	req := request("isabel@mail.com")
	req.LastName = "Llona"
	res, err := svc.Update(ctx, first.AuthorID, req)
	require.NoError(t, err)
	assert.Equal(t, "Llona", res.LastName)
}

func TestGetListsBookIDs(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	b1 := testutil.SeedBook(t, d, author, "Uno")
	b2 := testutil.SeedBook(t, d, author, "Dos")
	svc := NewService(d, testutil.Clock())

	res, err := svc.Get(context.Background(), author)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{b1, b2}, res.BookIDs)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].BookIDs, 2)
}

func TestDelete(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	book := testutil.SeedBook(t, d, author, "Cien Anos")
	student := testutil.SeedStudent(t, d, "ABC1234567", "ana.lopez@mail.com", "70001111")
	loan := testutil.SeedLoan(t, d, student, book, rules.StateActive)
	svc := NewService(d, testutil.Clock())
	ctx := context.Background()

	err := svc.Delete(ctx, author)
	require.Error(t, err)
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))
	assert.Contains(t, err.Error(), "active loans")

	_, err = d.Exec(`UPDATE loans SET state = ? WHERE loan_id = ?`, rules.StateReturned, loan)
	require.NoError(t, err)
	err = svc.Delete(ctx, author)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete the books first")

	lonely := testutil.SeedAuthor(t, d, "sin.libros@mail.com")
	require.NoError(t, svc.Delete(ctx, lonely))
	_, err = svc.Get(ctx, lonely)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}

func TestDeleteGuardReadsInsideTransaction(t *testing.T) {
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	student := testutil.SeedStudent(t, d, "ABC1234567", "ana.lopez@mail.com", "70001111")
	store := NewStore(d)
	ctx := context.Background()

	err := db.RunInTx(ctx, d, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		require.NoError(t, store.lockByID(ctx, tx, author))
		res, err := tx.ExecContext(ctx, `
			INSERT INTO books (title, genre, editorial, publication_date, author_id)
			VALUES (?, ?, ?, ?, ?)`,
			"La Hojarasca", "Novel", "Sudamericana", testutil.Today, author)
		require.NoError(t, err)
		book, err := res.LastInsertId()
		require.NoError(t, err)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO loans (loan_ulid, student_id, book_id, date_loan, due_date, amount, state)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"W0000000000000000000000001", student, book, testutil.Today, testutil.Today, "0", rules.StateActive)
		require.NoError(t, err)

		books, err := store.CountBooks(ctx, tx, author)
		require.NoError(t, err)
		assert.Equal(t, 1, books)
		loans, err := store.CountActiveLoans(ctx, tx, author)
		require.NoError(t, err)
		assert.Equal(t, 1, loans)
		return errors.New("rollback")
	})
	require.Error(t, err)

	// ロールバック後は本も貸出も無いので削除できる
	require.NoError(t, NewService(d, testutil.Clock()).Delete(ctx, author))
}
