package loans

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-backend/internal/library_mgmt/inventories"
	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
	"library-backend/internal/testutil"
)

type fixture struct {
	db      *db.DB
	svc     *Service
	student int64
	book    int64
}

func newFixture(t *testing.T, total int) fixture {
	t.Helper()
	d := testutil.TempDB(t)
	author := testutil.SeedAuthor(t, d, "gabo.garcia@mail.com")
	book := testutil.SeedBook(t, d, author, "Cien Anos")
	student := testutil.SeedStudent(t, d, "ABC1234567", "ana.lopez@mail.com", "70001111")
	if total >= 0 {
		testutil.SeedInventory(t, d, book, total, total, 0)
	}
	ledger := inventories.NewLedger(d, testutil.Clock(), zap.NewNop())
	svc := NewService(d, ledger, testutil.Clock(), &testutil.StaticIDs{})
	return fixture{db: d, svc: svc, student: student, book: book}
}

func (f fixture) request(dueInDays int) CreateLoanRequest {
	return CreateLoanRequest{
		StudentID: f.student,
		BookID:    f.book,
		DateLoan:  testutil.Date(0),
		DueDate:   testutil.Date(dueInDays),
	}
}

func strPtr(s string) *string { return &s }

func TestCreateMovesOneCopyToBorrowed(t *testing.T) {
	f := newFixture(t, 3)

	res, err := f.svc.Create(context.Background(), f.request(7))
	require.NoError(t, err)

	assert.Equal(t, rules.StateActive, res.State)
	assert.Equal(t, "T0000000000000000000000001", res.Reference)
	assert.Equal(t, "Cien Anos", res.BookTitle)
	assert.Equal(t, "Ana Lopez", res.StudentName)
	assert.Equal(t, [3]int{3, 2, 1}, testutil.Counts(t, f.db, f.book))
}

func TestCreateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f fixture, r *CreateLoanRequest)
		code   apierr.Code
		field  string
	}{
		{"due date eight days out", func(_ fixture, r *CreateLoanRequest) { r.DueDate = testutil.Date(8) }, apierr.CodeInvalidArgument, "due_date"},
		{"due date before loan date", func(_ fixture, r *CreateLoanRequest) { r.DueDate = testutil.Date(-1) }, apierr.CodeInvalidArgument, "due_date"},
		{"loan date not today", func(_ fixture, r *CreateLoanRequest) { r.DateLoan = testutil.Date(-1) }, apierr.CodeInvalidArgument, "date_loan"},
		{"state other than active", func(_ fixture, r *CreateLoanRequest) { r.State = strPtr("RETURNED") }, apierr.CodeInvalidArgument, "state"},
		{"amount with three decimals", func(_ fixture, r *CreateLoanRequest) {
			a := decimal.RequireFromString("1.005")
			r.Amount = &a
		}, apierr.CodeInvalidArgument, "amount"},
		{"amount above limit", func(_ fixture, r *CreateLoanRequest) {
			a := decimal.RequireFromString("10000")
			r.Amount = &a
		}, apierr.CodeInvalidArgument, "amount"},
		{"observations too long", func(_ fixture, r *CreateLoanRequest) {
			r.Observations = strPtr("this observation is far too long")
		}, apierr.CodeInvalidArgument, "observations"},
		{"unknown student", func(_ fixture, r *CreateLoanRequest) { r.StudentID = 999 }, apierr.CodeNotFound, ""},
		{"unknown book", func(_ fixture, r *CreateLoanRequest) { r.BookID = 999 }, apierr.CodeNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 3)
			req := f.request(7)
			tt.mutate(f, &req)

			_, err := f.svc.Create(context.Background(), req)

			var api *apierr.APIError
			require.ErrorAs(t, err, &api)
			assert.Equal(t, tt.code, api.Code)
			if tt.field != "" {
				assert.Contains(t, api.Fields, tt.field)
			}
			assert.Equal(t, [3]int{3, 3, 0}, testutil.Counts(t, f.db, f.book))
		})
	}
}

func TestCreateWithoutInventoryIsBusinessRule(t *testing.T) {
	f := newFixture(t, -1)

	_, err := f.svc.Create(context.Background(), f.request(3))

	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))
}

func TestCreateWhenNoCopiesAvailable(t *testing.T) {
	f := newFixture(t, 1)
	other := testutil.SeedStudent(t, f.db, "XYZ7654321", "otro.alumno@mail.com", "70002222")

	_, err := f.svc.Create(context.Background(), f.request(3))
	require.NoError(t, err)

	req := f.request(3)
	req.StudentID = other
	_, err = f.svc.Create(context.Background(), req)

	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))
	assert.Equal(t, [3]int{1, 0, 1}, testutil.Counts(t, f.db, f.book))
}

func TestCreateDuplicateActiveLoan(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.svc.Create(context.Background(), f.request(7))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), f.request(7))

	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))
	assert.Equal(t, [3]int{3, 2, 1}, testutil.Counts(t, f.db, f.book))
}

func TestOverdueLoanBlocksAnotherLoan(t *testing.T) {
	f := newFixture(t, 3)
	testutil.SeedLoan(t, f.db, f.student, f.book, rules.StateOverdue)

	_, err := f.svc.Create(context.Background(), f.request(7))

	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.request(7))
	require.NoError(t, err)

	t.Run("observations and amount are mutable", func(t *testing.T) {
		amount := decimal.RequireFromString("12.50")
		res, err := f.svc.Update(ctx, created.LoanID, UpdateLoanRequest{
			Observations: strPtr("late pickup"),
			Amount:       &amount,
		})
		require.NoError(t, err)
		assert.True(t, res.Amount.Equal(amount))
		require.NotNil(t, res.Observations)
		assert.Equal(t, "late pickup", *res.Observations)
	})

	t.Run("resubmitting unchanged values succeeds", func(t *testing.T) {
		amount := decimal.RequireFromString("12.50")
		req := UpdateLoanRequest{Observations: strPtr("late pickup"), Amount: &amount}

		_, err := f.svc.Update(ctx, created.LoanID, req)
		require.NoError(t, err)
		res, err := f.svc.Update(ctx, created.LoanID, req)
		require.NoError(t, err)
		assert.True(t, res.Amount.Equal(amount))
	})

	t.Run("identity fields are immutable", func(t *testing.T) {
		other := int64(42)
		_, err := f.svc.Update(ctx, created.LoanID, UpdateLoanRequest{BookID: &other})
		assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

		_, err = f.svc.Update(ctx, created.LoanID, UpdateLoanRequest{DueDate: strPtr(testutil.Date(3))})
		assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))
	})

	t.Run("same identity values are accepted", func(t *testing.T) {
		_, err := f.svc.Update(ctx, created.LoanID, UpdateLoanRequest{
			StudentID: &f.student,
			DateLoan:  strPtr(created.DateLoan),
			DueDate:   strPtr(created.DueDate),
			State:     strPtr("active"),
		})
		assert.NoError(t, err)
	})

	t.Run("returning through update is refused", func(t *testing.T) {
		_, err := f.svc.Update(ctx, created.LoanID, UpdateLoanRequest{State: strPtr("RETURNED")})
		assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))
		assert.Equal(t, [3]int{3, 2, 1}, testutil.Counts(t, f.db, f.book))
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := f.svc.Update(ctx, created.LoanID, UpdateLoanRequest{State: strPtr("LOST")})
		assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
	})

	t.Run("missing loan", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 999, UpdateLoanRequest{})
		assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
	})
}

func TestUpdateReturnedLoanIsFrozen(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	id := testutil.SeedLoan(t, f.db, f.student, f.book, rules.StateReturned)

	_, err := f.svc.Update(ctx, id, UpdateLoanRequest{State: strPtr("ACTIVE")})
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

	amount := decimal.RequireFromString("5")
	_, err = f.svc.Update(ctx, id, UpdateLoanRequest{Amount: &amount})
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

	// 0.01 未満の差は変更とみなさない
	same := decimal.RequireFromString("0.001")
	_, err = f.svc.Update(ctx, id, UpdateLoanRequest{Amount: &same, Observations: strPtr("ok")})
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.request(7))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, created.LoanID)
	assert.Equal(t, apierr.CodeBusinessRule, apierr.CodeOf(err))

	returned := testutil.SeedLoan(t, f.db, f.student, f.book, rules.StateReturned)
	_, err = f.db.Exec(`INSERT INTO returns (return_ulid, loan_id, date_return, penalty) VALUES (?, ?, ?, ?)`,
		"R0000000000000000000000001", returned, testutil.Today, "0")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, returned))

	_, err = f.svc.Get(ctx, returned)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM returns WHERE loan_id = ?`, returned))
	assert.Zero(t, n)
	// 削除では在庫を戻さない
	assert.Equal(t, [3]int{3, 2, 1}, testutil.Counts(t, f.db, f.book))
}

func TestListFilters(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.request(7))
	require.NoError(t, err)
	testutil.SeedLoan(t, f.db, f.student, f.book, rules.StateReturned)

	all, err := f.svc.List(ctx, LoanFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.svc.List(ctx, LoanFilter{State: strPtr("active")})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, rules.StateActive, active[0].State)

	none := int64(999)
	empty, err := f.svc.List(ctx, LoanFilter{StudentID: &none})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
