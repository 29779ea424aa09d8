package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/logging"
)

// Envelope はすべての応答の共通形
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

const internalMessage = "An unexpected error occurred. Please try again later."

// dev のときだけ 500 の中身を data に載せる
var exposeInternal bool

func SetMode(mode string) { exposeInternal = mode == "dev" }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func OK(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Envelope{Success: true, Message: msg, Data: data, Timestamp: now()})
}

func Fail(c *gin.Context, err error) {
	status := apierr.ToHTTPStatus(err)

	var api *apierr.APIError
	if !errors.As(err, &api) || status == http.StatusInternalServerError {
		logging.From(c).Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		var data any
		if exposeInternal {
			data = err.Error()
		}
		c.JSON(http.StatusInternalServerError, Envelope{Message: internalMessage, Data: data, Timestamp: now()})
		return
	}

	var data any
	if len(api.Fields) > 0 {
		data = api.Fields
	}
	c.JSON(status, Envelope{Message: api.Message, Data: data, Timestamp: now()})
}

// BindError は ShouldBindJSON の失敗を 400 に変換する
func BindError(c *gin.Context, err error) {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[fe.Field()] = fieldMessage(fe)
		}
		Fail(c, apierr.ErrFields(fields))
		return
	}

	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &te):
		Fail(c, apierr.ErrField(te.Field, fmt.Sprintf("must be of type %s", te.Type)))
	case errors.As(err, &se):
		Fail(c, apierr.ErrInvalid("malformed JSON body"))
	default:
		Fail(c, apierr.ErrInvalid("invalid json or missing required fields"))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "letters":
		return "may contain only letters and spaces"
	case "digits":
		return "may contain only digits"
	case "student_code":
		return "must be three letters followed by seven digits"
	case "email_shape":
		return "must be a valid email address"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// ParamID は :name を正の整数として読む。失敗したら 400 を書いて false
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, apierr.ErrField(name, fmt.Sprintf("%s must be a positive integer", name)))
		return 0, false
	}
	return id, true
}
