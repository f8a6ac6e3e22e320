package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var setupOnce sync.Once

// Errors is a field-keyed list of human readable messages. It doubles as an
// error so services can report field problems that binding cannot catch,
// such as uniqueness.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Setup registers the custom tags on gin's validator and makes field errors
// use json names. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		Register(v)
	})
}

// Register installs the custom tags on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("adult", validateAdult)
}

// validateAdult accepts a YYYY-MM-DD string at least 18 years in the past.
func validateAdult(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return false
	}
	dob, err := time.Parse(dateLayout, field.String())
	if err != nil {
		return false
	}
	return IsAdult(dob, time.Now())
}

// IsAdult reports whether someone born on dob is at least 18 on now.
func IsAdult(dob, now time.Time) bool {
	return !dob.After(now.AddDate(-18, 0, 0))
}

// FieldErrors converts a binding error into field messages. ok is false when
// err is not a validation failure (for example malformed JSON).
func FieldErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	out := Errors{}
	for _, e := range ve {
		field := e.Field()
		msg, ok := CustomMessage(field, e.Tag())
		if !ok {
			msg = DefaultMessage(field, e.Tag(), e.Param())
		}
		out.Add(field, msg)
	}
	return out, true
}
