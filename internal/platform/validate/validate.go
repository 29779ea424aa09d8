package validate

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	lettersRe     = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚáéíóúÑñÜü ]+$`)
	digitsRe      = regexp.MustCompile(`^[0-9]+$`)
	studentCodeRe = regexp.MustCompile(`^[A-Za-z]{3}[0-9]{7}$`)
	emailRe       = regexp.MustCompile(`^[a-zA-Z0-9._]{4,30}@[a-zA-Z0-9.-]{1,20}\.[a-zA-Z]{2,20}$`)
)

// Register は独自タグを validator に登録し、エラーの項目名を json タグ名にする
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("letters", matcher(lettersRe))
	_ = v.RegisterValidation("digits", matcher(digitsRe))
	_ = v.RegisterValidation("student_code", matcher(studentCodeRe))
	_ = v.RegisterValidation("email_shape", matcher(emailRe))
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
}

func matcher(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}
