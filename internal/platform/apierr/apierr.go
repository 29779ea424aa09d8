package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeBusinessRule     Code = "BUSINESS_RULE"
	CodeConflict         Code = "CONFLICT" // 在庫不足・二重登録など状態の競合
	CodeIntegrity        Code = "INTEGRITY_VIOLATION"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeInternal         Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
	// 入力チェックのときだけ。項目名 -> メッセージ
	Fields map[string]string
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrBusiness(msg string) *APIError { return &APIError{Code: CodeBusinessRule, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrIntegrity(msg string) *APIError {
	return &APIError{Code: CodeIntegrity, Message: msg}
}
func ErrMethodNotAllowed(msg string) *APIError {
	return &APIError{Code: CodeMethodNotAllowed, Message: msg}
}
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// ErrField は1項目だけの入力エラー
func ErrField(field, msg string) *APIError {
	return &APIError{Code: CodeInvalidArgument, Message: msg, Fields: map[string]string{field: msg}}
}

// ErrFields は複数項目の入力エラーをまとめる
func ErrFields(fields map[string]string) *APIError {
	return &APIError{Code: CodeInvalidArgument, Message: "validation failed", Fields: fields}
}

// CodeOf は err が APIError ならそのコード、そうでなければ INTERNAL
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBusinessRule, CodeConflict, CodeIntegrity:
		return http.StatusConflict
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
