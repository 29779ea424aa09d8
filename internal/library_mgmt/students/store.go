package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/library_mgmt/rules"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	db *db.DB
}

func NewStore(d *db.DB) *Store { return &Store{db: d} }

const selectStudent = `SELECT student_id, first_name, last_name, email, phone, career, code FROM students`

func (s *Store) GetByID(ctx context.Context, id int64) (*Student, error) {
	var st Student
	if err := s.db.GetContext(ctx, &st, selectStudent+` WHERE student_id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound(fmt.Sprintf("student not found with id %d", id))
		}
		return nil, err
	}
	return &st, nil
}

func (s *Store) List(ctx context.Context) ([]Student, error) {
	out := []Student{}
	if err := s.db.SelectContext(ctx, &out, selectStudent+` ORDER BY student_id`); err != nil {
		return nil, err
	}
	return out, nil
}

// taken は column に value を持つ学生が（自分以外に）いるか。column は呼び出し側の定数のみ
func (s *Store) taken(ctx context.Context, column, value string, exceptID int64) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM students WHERE `+column+` = ? AND student_id <> ?`, value, exceptID)
	return n > 0, err
}

func (s *Store) Insert(ctx context.Context, st *Student) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO students (first_name, last_name, email, phone, career, code)
		VALUES (?, ?, ?, ?, ?, ?)`,
		st.FirstName, st.LastName, st.Email, st.Phone, st.Career, st.Code)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.StudentID = id
	return nil
}

func (s *Store) Update(ctx context.Context, st *Student) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE students SET first_name = ?, last_name = ?, email = ?, phone = ?, career = ?, code = ?
		WHERE student_id = ?`,
		st.FirstName, st.LastName, st.Email, st.Phone, st.Career, st.Code, st.StudentID)
	if err != nil {
		return mapWriteErr(err)
	}
	return nil
}

// lockByID は学生の行を FOR UPDATE で取る
func (s *Store) lockByID(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var got int64
	err := tx.GetContext(ctx, &got, `SELECT student_id FROM students WHERE student_id = ?`+s.db.LockSuffix(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return apierr.ErrNotFound(fmt.Sprintf("student not found with id %d", id))
	}
	return err
}

func (s *Store) CountActiveLoans(ctx context.Context, q db.DBTX, studentID int64) (int, error) {
	ph, args := rules.ActivePlaceholders()
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM loans WHERE student_id = ? AND state IN (`+ph+`)`,
		append([]any{studentID}, args...)...)
	return n, err
}

// deleteCascade は返却 → 貸出 → 学生 の順で消す
func (s *Store) deleteCascade(ctx context.Context, tx *sqlx.Tx, studentID int64) error {
	steps := []string{
		`DELETE FROM returns WHERE loan_id IN (SELECT loan_id FROM loans WHERE student_id = ?)`,
		`DELETE FROM loans WHERE student_id = ?`,
		`DELETE FROM students WHERE student_id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, studentID); err != nil {
			return err
		}
	}
	return nil
}

func mapWriteErr(err error) error {
	if db.IsDuplicateKey(err) {
		return apierr.ErrIntegrity("a student with the same email, phone or code already exists")
	}
	return err
}
