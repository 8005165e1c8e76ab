package validation

import (
	"errors"
	"sort"
	"strings"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError carries field-scoped messages.  It is recoverable: the user
// corrects the named fields and resubmits.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Rule is one check for a field; Message is reported when Check returns false.
type Rule struct {
	Check   func(string) bool
	Message string
}

// FormValidator runs ordered rules per field.  The first failing rule of a
// field determines its message.
type FormValidator struct {
	order  []string
	rules  map[string][]Rule
	errors map[string]string
}

func NewFormValidator() *FormValidator {
	return &FormValidator{rules: map[string][]Rule{}, errors: map[string]string{}}
}

// AddRule appends a rule for field and returns the validator for chaining.
func (v *FormValidator) AddRule(field string, check func(string) bool, message string) *FormValidator {
	if _, ok := v.rules[field]; !ok {
		v.order = append(v.order, field)
	}
	v.rules[field] = append(v.rules[field], Rule{Check: check, Message: message})
	return v
}

// ValidateField checks a single field and records or clears its error.
func (v *FormValidator) ValidateField(field, value string) bool {
	for _, r := range v.rules[field] {
		if !r.Check(value) {
			v.errors[field] = r.Message
			return false
		}
	}
	delete(v.errors, field)
	return true
}

// Validate checks every field with rules against data.  Missing keys are
// validated as empty strings.  It returns nil or a *ValidationError.
func (v *FormValidator) Validate(data map[string]string) error {
	v.errors = map[string]string{}
	for _, field := range v.order {
		v.ValidateField(field, data[field])
	}
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.Errors()}
}

// Errors returns a copy of the current field errors.
func (v *FormValidator) Errors() map[string]string {
	out := make(map[string]string, len(v.errors))
	for k, msg := range v.errors {
		out[k] = msg
	}
	return out
}

// Error returns the message recorded for field, if any.
func (v *FormValidator) Error(field string) string { return v.errors[field] }

// ClearErrors drops all recorded errors.
func (v *FormValidator) ClearErrors() { v.errors = map[string]string{} }

// ClearError drops the recorded error of one field.
func (v *FormValidator) ClearError(field string) { delete(v.errors, field) }
