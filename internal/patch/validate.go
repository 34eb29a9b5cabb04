package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ValidationError describes why an incoming patch was dropped.
type ValidationError struct {
	Index  int      // Position of the patch in the incoming batch.
	ID     string   // Patch ID, if it had one.
	Fields []string // Offending fields, in struct order.
	Reason string
}

func (e *ValidationError) Error() string {
	id := e.ID
	if id == "" {
		id = "(no id)"
	}
	return fmt.Sprintf("invalid patch #%d %s: %s", e.Index+1, id, e.Reason)
}

// IngestReport summarizes a batch of incoming patches.
type IngestReport struct {
	Accepted int
	Dropped  int
	Problems []*ValidationError
}

// Err returns the problems joined into one error, or nil when nothing was dropped.
func (r IngestReport) Err() error {
	if len(r.Problems) == 0 {
		return nil
	}
	errs := make([]error, len(r.Problems))
	for i, p := range r.Problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(patchRules, Patch{})
	return v
}

// patchRules holds the rules that depend on more than one field.
func patchRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(Patch)
	if p.Kind != "" && !p.Kind.Valid() {
		sl.ReportError(p.Kind, "Kind", "Kind", "kind", string(p.Kind))
	}
	if p.Kind.RequiresBefore() && p.Before == "" {
		sl.ReportError(p.Before, "Before", "Before", "required_for_kind", string(p.Kind))
	}
	if !p.After.Defined() {
		sl.ReportError(p.After, "After", "After", "required", "")
	}
}

// Validate checks a single patch's invariants: an anchor, a known kind, a Before excerpt for replace/delete, a defined After payload (possibly ""), and a rationale goal.
func Validate(p Patch) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{ID: p.ID, Reason: err.Error()}
	}
	ve := &ValidationError{ID: p.ID}
	var reasons []string
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fe.StructNamespace())
		reasons = append(reasons, describe(fe))
	}
	ve.Reason = strings.Join(reasons, "; ")
	return ve
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.StructNamespace(), "Patch.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_for_kind":
		return field + " is required for " + fe.Param() + " patches"
	case "kind":
		return fmt.Sprintf("unknown kind %q", fe.Param())
	}
	return field + " failed " + fe.Tag()
}

// Screen validates an incoming batch. Patches with an empty ID get a fresh UUID. A patch whose ID is already taken (by existing, or earlier in the batch) is dropped.
// It returns the valid patches, deep-copied, in arrival order.
func Screen(incoming []Patch, existing func(id string) bool) ([]Patch, IngestReport) {
	var report IngestReport
	seen := make(map[string]bool, len(incoming))
	valid := make([]Patch, 0, len(incoming))
	for i, p := range incoming {
		p = p.Clone()
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		err := Validate(p)
		if err == nil && (seen[p.ID] || (existing != nil && existing(p.ID))) {
			err = &ValidationError{ID: p.ID, Fields: []string{"Patch.ID"}, Reason: "duplicate id"}
		}
		if err != nil {
			ve := err.(*ValidationError)
			ve.Index = i
			report.Problems = append(report.Problems, ve)
			report.Dropped++
			continue
		}
		seen[p.ID] = true
		valid = append(valid, p)
	}
	report.Accepted = len(valid)
	return valid, report
}
