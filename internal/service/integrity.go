package service

import (
	"strings"

	"github.com/msomdec/catalog-admin/internal/domain"
)

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validation collects field failures in the order the checks run. Callers
// run every check before touching storage or the database and then return
// Err, which is nil when nothing failed.
type validation struct {
	fields []domain.FieldError
}

// check records a failure for field when ok is false.
func (v *validation) check(ok bool, field, message string, sentinel error) {
	if ok {
		return
	}
	v.fields = append(v.fields, domain.FieldError{Field: field, Message: message, Err: sentinel})
}

func (v *validation) failed(field string) bool {
	for _, f := range v.fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (v *validation) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: v.fields}
}
