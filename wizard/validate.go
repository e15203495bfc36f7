package wizard

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError blocks a submit before any network call. Fields maps the
// offending field keys to inline messages; Summary is the aggregate
// user-facing message.
type ValidationError struct {
	Summary string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Summary
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// fieldValidator reports record fields by their json tag names.
func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// checkRecord validates one record's required and positive-numeric fields.
// Field keys in the result are prefixed so multi-record steps can name the
// row, e.g. "kontrak[1].jumlah_orang".
func checkRecord(rec any, prefix string) map[string]string {
	err := fieldValidator().Struct(rec)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{prefix: err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := "wajib diisi"
		if fe.Tag() == "gt" {
			msg = "harus lebih dari 0"
		}
		fields[prefix+fe.Field()] = msg
	}
	return fields
}

func validationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{
		Summary: fmt.Sprintf("Lengkapi %d kolom yang belum valid sebelum menyimpan", len(fields)),
		Fields:  fields,
	}
}
