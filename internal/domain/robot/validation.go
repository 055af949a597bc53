package robot

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinYear = 1950

	minNameLen  = 2
	maxNameLen  = 50
	minLabelLen = 3
	maxLabelLen = 100
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failing field of an input.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validator checks robot inputs. Both stores share one instance so the rules
// cannot drift.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator creates a validator whose upper year bound follows now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(v.now().Year())
	})
	_ = v.validate.RegisterValidation("robottype", func(fl validator.FieldLevel) bool {
		return Type(fl.Field().String()).Valid()
	})

	return v
}

var defaultValidator = NewValidator(nil)

// ValidateInput checks in against the package default validator.
func ValidateInput(in Input) error {
	return defaultValidator.ValidateInput(in)
}

// ValidateInput normalizes and checks every field of in.
func (v *Validator) ValidateInput(in Input) error {
	in = Normalize(in)
	return v.translate(v.validate.Struct(in))
}

// ValidatePatch checks the supplied fields of p.
func (v *Validator) ValidatePatch(p Patch) error {
	p = NormalizePatch(p)
	return v.translate(v.validate.Struct(p))
}

// CurrentYear is the upper year bound in effect.
func (v *Validator) CurrentYear() int {
	return v.now().Year()
}

func (v *Validator) translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: v.message(fe),
		})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "notfuture":
		return fmt.Sprintf("%s cannot be later than %d", field, v.CurrentYear())
	case "robottype":
		names := make([]string, 0, len(Types()))
		for _, t := range Types() {
			names = append(names, string(t))
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Normalize trims the free-text fields.
func Normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Label = strings.TrimSpace(in.Label)
	return in
}

// NormalizePatch trims the supplied free-text fields.
func NormalizePatch(p Patch) Patch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Label != nil {
		label := strings.TrimSpace(*p.Label)
		p.Label = &label
	}
	return p
}

// NameKey is the comparison key for name uniqueness.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseType converts s into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Fields: []FieldError{{
			Field:   "type",
			Message: fmt.Sprintf("unknown robot type %q", s),
		}}}
	}
	return t, nil
}
