package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"library-backend/internal/testutil"
)

type workflowContext struct {
	t        *testing.T
	router   http.Handler
	bookID   int64
	students map[string]int64
	loans    map[string]int64
	returnID int64

	status int
	env    envelope
}

func (w *workflowContext) reset() {
	w.router = NewRouter(Deps{
		DB:    testutil.TempDB(w.t),
		Clock: testutil.Clock(),
		IDs:   &testutil.StaticIDs{},
		Mode:  "prod",
	})
	w.bookID = 0
	w.students = map[string]int64{}
	w.loans = map[string]int64{}
	w.returnID = 0
	w.status = 0
	w.env = envelope{}
}

// do はリクエストを送り、応答を保存する
func (w *workflowContext) do(method, path string, body any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	w.router.ServeHTTP(rec, req)

	w.status = rec.Code
	w.env = envelope{}
	return json.Unmarshal(rec.Body.Bytes(), &w.env)
}

// created は直前の応答が 200 であることを確認し、data の id を読む
func (w *workflowContext) created(key string) (int64, error) {
	if w.status != http.StatusOK {
		return 0, fmt.Errorf("expected 200, got %d: %s", w.status, w.env.Message)
	}
	var data map[string]any
	if err := json.Unmarshal(w.env.Data, &data); err != nil {
		return 0, err
	}
	id, ok := data[key].(float64)
	if !ok {
		return 0, fmt.Errorf("response has no %s", key)
	}
	return int64(id), nil
}

func (w *workflowContext) aBookWithCopiesInStock(title string, copies int) error {
	if err := w.do(http.MethodPost, "/api/authors", gin.H{
		"first_name": "Gabriel",
		"last_name":  "Garcia Marquez",
		"email":      "gabo.garcia@mail.com",
		"birth_date": "1927-03-06",
	}); err != nil {
		return err
	}
	authorID, err := w.created("author_id")
	if err != nil {
		return err
	}

	if err := w.do(http.MethodPost, "/api/books", gin.H{
		"title":            title,
		"genre":            "Novela",
		"editorial":        "Sudamericana",
		"publication_date": "1967-05-30",
		"author_id":        authorID,
	}); err != nil {
		return err
	}
	if w.bookID, err = w.created("book_id"); err != nil {
		return err
	}

	if err := w.do(http.MethodPost, "/api/inventories", gin.H{
		"book_id":      w.bookID,
		"total_copies": copies,
	}); err != nil {
		return err
	}
	_, err = w.created("inventory_id")
	return err
}

func (w *workflowContext) aStudentWithCode(code string) error {
	n := len(w.students) + 1
	if err := w.do(http.MethodPost, "/api/students", gin.H{
		"first_name": "Estudiante",
		"last_name":  "Prueba",
		"email":      fmt.Sprintf("alumno%d@mail.com", n),
		"phone":      fmt.Sprintf("7000%04d", n),
		"career":     "Ingenieria",
		"code":       code,
	}); err != nil {
		return err
	}
	id, err := w.created("student_id")
	if err != nil {
		return err
	}
	w.students[code] = id
	return nil
}

func (w *workflowContext) studentBorrowsTheBookDueInDays(code string, days int) error {
	studentID, ok := w.students[code]
	if !ok {
		return fmt.Errorf("unknown student %s", code)
	}
	if err := w.do(http.MethodPost, "/api/loans", gin.H{
		"student_id": studentID,
		"book_id":    w.bookID,
		"date_loan":  testutil.Date(0),
		"due_date":   testutil.Date(days),
	}); err != nil {
		return err
	}
	if w.status == http.StatusOK {
		id, err := w.created("loan_id")
		if err != nil {
			return err
		}
		w.loans[code] = id
	}
	return nil
}

func (w *workflowContext) theLoanOfStudentIsReturned(code string) error {
	loanID, ok := w.loans[code]
	if !ok {
		return fmt.Errorf("student %s has no loan", code)
	}
	if err := w.do(http.MethodPost, "/api/returns", gin.H{"loan_id": loanID}); err != nil {
		return err
	}
	if w.status == http.StatusOK {
		id, err := w.created("return_id")
		if err != nil {
			return err
		}
		w.returnID = id
	}
	return nil
}

func (w *workflowContext) theBookIsDeleted() error {
	return w.do(http.MethodDelete, fmt.Sprintf("/api/books/%d", w.bookID), nil)
}

func (w *workflowContext) theReturnIsEdited() error {
	return w.do(http.MethodPut, fmt.Sprintf("/api/returns/%d", w.returnID), gin.H{"penalty": 5})
}

func (w *workflowContext) theResponseStatusIs(status int) error {
	if w.status != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, w.status, w.env.Message)
	}
	return nil
}

func (w *workflowContext) theResponseDataMentions(s string) error {
	if !strings.Contains(string(w.env.Data), s) {
		return fmt.Errorf("expected data to mention %q, got %s", s, w.env.Data)
	}
	return nil
}

func (w *workflowContext) theResponseMessageIs(msg string) error {
	if w.env.Message != msg {
		return fmt.Errorf("expected message %q, got %q", msg, w.env.Message)
	}
	return nil
}

func (w *workflowContext) theInventoryReads(total, available, borrowed int) error {
	status, env := w.status, w.env
	defer func() { w.status, w.env = status, env }()

	if err := w.do(http.MethodGet, fmt.Sprintf("/api/books/%d/inventory", w.bookID), nil); err != nil {
		return err
	}
	if w.status != http.StatusOK {
		return fmt.Errorf("inventory lookup returned %d", w.status)
	}
	var inv struct {
		Total     int `json:"total_copies"`
		Available int `json:"available_copies"`
		Borrowed  int `json:"borrowed_copies"`
	}
	if err := json.Unmarshal(w.env.Data, &inv); err != nil {
		return err
	}
	if inv.Total != total || inv.Available != available || inv.Borrowed != borrowed {
		return fmt.Errorf("expected %d/%d/%d, got %d/%d/%d",
			total, available, borrowed, inv.Total, inv.Available, inv.Borrowed)
	}
	return nil
}

func initializeScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		wc := &workflowContext{t: t}

		ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
			wc.reset()
			return ctx, nil
		})

		ctx.Step(`^a book "([^"]*)" with (\d+) copies in stock$`, wc.aBookWithCopiesInStock)
		ctx.Step(`^a student with code "([^"]*)"$`, wc.aStudentWithCode)
		ctx.Step(`^student "([^"]*)" borrows the book due in (\d+) days$`, wc.studentBorrowsTheBookDueInDays)
		ctx.Step(`^the loan of student "([^"]*)" is returned$`, wc.theLoanOfStudentIsReturned)
		ctx.Step(`^the book is deleted$`, wc.theBookIsDeleted)
		ctx.Step(`^the return is edited$`, wc.theReturnIsEdited)
		ctx.Step(`^the response status is (\d+)$`, wc.theResponseStatusIs)
		ctx.Step(`^the response data mentions "([^"]*)"$`, wc.theResponseDataMentions)
		ctx.Step(`^the response message is "([^"]*)"$`, wc.theResponseMessageIs)
		ctx.Step(`^the inventory reads (\d+) total, (\d+) available, (\d+) borrowed$`, wc.theInventoryReads)
	}
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/loan_workflow.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
