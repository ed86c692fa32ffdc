package universe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "typeref", func(fl validator.FieldLevel) bool {
		_, err := parseRef(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "typename", func(fl validator.FieldLevel) bool {
		r, err := parseRef(fl.Field().String())
		return err == nil && r.isBareName()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Errorf("register %s validation: %w", tag, err))
	}
}

// ValidationError lists every problem found in a manifest.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid universe: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// Validate checks the manifest schema and the cross-references that do not
// need a built interner: unique names and generic parameter ownership.
func (m *Manifest) Validate() error {
	var errs ValidationError
	if err := validate.Struct(m); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs.add("%s: %s", fieldPath(fe), formatFieldError(fe))
		}
	}

	declared := make(map[string]string, len(m.Types)+len(m.Params))
	for i, p := range m.Params {
		where := fmt.Sprintf("params[%d]", i)
		if prev, dup := declared[p.Name]; dup && p.Name != "" {
			errs.add("%s: %q already declared at %s", where, p.Name, prev)
			continue
		}
		declared[p.Name] = where
	}
	owner := make(map[string]string)
	for i, t := range m.Types {
		where := fmt.Sprintf("types[%d]", i)
		if prev, dup := declared[t.Name]; dup && t.Name != "" {
			errs.add("%s: %q already declared at %s", where, t.Name, prev)
		} else {
			declared[t.Name] = where
		}
		if t.Kind == "enum" && len(t.Params) > 0 {
			errs.add("%s: enum %q cannot be generic", where, t.Name)
		}
		if t.Underlying != "" && t.Kind != "enum" {
			errs.add("%s: only enums have an underlying type", where)
		}
		if t.Base != "" && t.Kind != "class" {
			errs.add("%s: only classes declare a base class", where)
		}
		if t.BoxedScalar && t.Kind != "class" {
			errs.add("%s: only classes can be boxed scalars", where)
		}
		for _, name := range t.Params {
			if !m.hasParam(name) {
				errs.add("%s: type parameter %q is not declared", where, name)
				continue
			}
			if prev, taken := owner[name]; taken {
				errs.add("%s: type parameter %q already belongs to %s", where, name, prev)
				continue
			}
			owner[name] = t.Name
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (m *Manifest) hasParam(name string) bool {
	for _, p := range m.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "typename":
		return fmt.Sprintf("%q is not a type name", fe.Value())
	case "typeref":
		return fmt.Sprintf("%q is not a type expression", fe.Value())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
