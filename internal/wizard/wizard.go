package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/store"
)

const validationCode = "WIZARD_VALIDATION_FAILED"

var (
	ErrConfirmationRequired = errors.New("wizard: cancelling discards the draft and must be confirmed")
	ErrUnknownStep          = errors.New("wizard: unknown step")
	ErrStepNotReached       = errors.New("wizard: earlier steps are not complete")
)

// Key identifies a draft
type Key = store.DraftKey

// DraftStore persists drafts between requests
type DraftStore interface {
	Load(ctx context.Context, key Key) (map[string]any, int, error)
	Save(ctx context.Context, key Key, values map[string]any, step int) error
	Delete(ctx context.Context, key Key) error
}

// Creator sends a finished draft to the backend and reports the new id
type Creator func(ctx context.Context, draft map[string]any, cb api.Callbacks[string])

// FieldValue is a field with its current value and error
type FieldValue struct {
	Field
	Value string
	Error string
}

// StepView is what a step page renders
type StepView struct {
	Flow   string
	Number int
	Total  int
	Title  string
	Fields []FieldValue
	Last   bool
}

// Wizard runs one flow against a draft store
type Wizard struct {
	flow   *Flow
	drafts DraftStore
	logger logging.Logger
}

// New creates a wizard for flow
func New(flow *Flow, drafts DraftStore, logger logging.Logger) *Wizard {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Wizard{flow: flow, drafts: drafts, logger: logger}
}

// Flow returns the flow this wizard runs
func (w *Wizard) Flow() *Flow {
	return w.flow
}

func (w *Wizard) step(n int) (Step, error) {
	if n < 1 || n > len(w.flow.Steps) {
		return Step{}, fmt.Errorf("%w: %d", ErrUnknownStep, n)
	}
	return w.flow.Steps[n-1], nil
}

// load returns the draft merged over the defaults and the furthest step
// reached, clamped to the flow.
func (w *Wizard) load(ctx context.Context, key Key) (map[string]any, int, error) {
	values, reached, err := w.drafts.Load(ctx, key)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load draft: %w", err)
	}
	draft := w.flow.defaults()
	for k, v := range values {
		draft[k] = v
	}
	return draft, min(max(reached, 1), w.flow.Total()), nil
}

// Draft returns the accumulated values for key, defaults when none
func (w *Wizard) Draft(ctx context.Context, key Key) (map[string]any, error) {
	draft, _, err := w.load(ctx, key)
	return draft, err
}

// Reached returns the furthest step the draft for key may show. A new
// draft starts at step 1.
func (w *Wizard) Reached(ctx context.Context, key Key) (int, error) {
	_, reached, err := w.load(ctx, key)
	return reached, err
}

// guard rejects step n when the steps before it have not been completed
func (w *Wizard) guard(ctx context.Context, key Key, n int) error {
	reached, err := w.Reached(ctx, key)
	if err != nil {
		return err
	}
	if n > reached {
		return fmt.Errorf("%w: step %d, furthest is %d", ErrStepNotReached, n, reached)
	}
	return nil
}

// Step returns step n seeded from the draft
func (w *Wizard) Step(ctx context.Context, key Key, n int) (StepView, error) {
	step, err := w.step(n)
	if err != nil {
		return StepView{}, err
	}
	draft, reached, err := w.load(ctx, key)
	if err != nil {
		return StepView{}, err
	}
	if n > reached {
		return StepView{}, fmt.Errorf("%w: step %d, furthest is %d", ErrStepNotReached, n, reached)
	}

	view := StepView{
		Flow:   w.flow.Name,
		Number: n,
		Total:  w.flow.Total(),
		Title:  step.Title,
		Last:   n == w.flow.Total(),
	}
	for _, field := range step.Fields {
		view.Fields = append(view.Fields, FieldValue{Field: field, Value: display(draft[field.Name])})
	}
	return view, nil
}

// Fill overlays input and errors onto a view so a rejected step can be
// shown again with what the user typed.
func Fill(view StepView, input map[string]string, err error) StepView {
	messages := FieldErrors(err)
	for i, fv := range view.Fields {
		if v, ok := input[fv.Name]; ok {
			view.Fields[i].Value = v
		}
		view.Fields[i].Error = messages[fv.Name]
	}
	return view
}

// Continue validates step n and merges it into the draft. It returns the
// number of the next step.
func (w *Wizard) Continue(ctx context.Context, key Key, n int, input map[string]string) (int, error) {
	step, err := w.step(n)
	if err != nil {
		return 0, err
	}
	if n == w.flow.Total() {
		return 0, fmt.Errorf("%w: %d is the last step", ErrUnknownStep, n)
	}
	if err := w.guard(ctx, key, n); err != nil {
		return 0, err
	}
	if err := w.merge(ctx, key, step, n+1, input); err != nil {
		return 0, err
	}
	return n + 1, nil
}

// merge validates the step's input and saves it into the draft. The
// furthest step reached never moves backwards, so revisiting an earlier
// step keeps later ones open. Nothing is saved when validation fails.
func (w *Wizard) merge(ctx context.Context, key Key, step Step, next int, input map[string]string) error {
	parsed, err := validate(step, input)
	if err != nil {
		return err
	}

	draft, reached, err := w.load(ctx, key)
	if err != nil {
		return err
	}
	for k, v := range parsed {
		draft[k] = v
	}
	if err := w.drafts.Save(ctx, key, draft, max(reached, next)); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Cancel discards the draft. Without confirmation nothing happens and
// ErrConfirmationRequired is returned.
func (w *Wizard) Cancel(ctx context.Context, key Key, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := w.drafts.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to reset draft: %w", err)
	}
	w.logger.Info("wizard cancelled", "flow", w.flow.Name, "scope_id", key.ScopeID)
	return nil
}

// Submit validates the last step, sends the whole draft through create and
// resets the draft on success. On failure the draft is kept.
func (w *Wizard) Submit(ctx context.Context, key Key, n int, input map[string]string, create Creator) (string, error) {
	step, err := w.step(n)
	if err != nil {
		return "", err
	}
	if n != w.flow.Total() {
		return "", fmt.Errorf("%w: %d is not the last step", ErrUnknownStep, n)
	}
	if err := w.guard(ctx, key, n); err != nil {
		return "", err
	}
	if err := w.merge(ctx, key, step, n, input); err != nil {
		return "", err
	}

	draft, err := w.Draft(ctx, key)
	if err != nil {
		return "", err
	}
	if w.flow.Scope != "" {
		draft[w.flow.Scope] = key.ScopeID
	}

	var (
		createdID string
		failed    *api.Error
	)
	create(ctx, draft, api.Callbacks[string]{
		OnSuccess: func(id string) { createdID = id },
		OnError:   func(e *api.Error) { failed = e },
	})
	if failed != nil {
		w.logger.Warn("wizard submit failed", "flow", w.flow.Name, "error", failed)
		return "", failed
	}

	if err := w.drafts.Delete(ctx, key); err != nil {
		return createdID, fmt.Errorf("failed to reset draft: %w", err)
	}
	w.logger.Info("wizard submitted", "flow", w.flow.Name, "id", createdID)
	return createdID, nil
}

// validate checks input against the step's fields and returns the parsed
// values keyed by field name.
func validate(step Step, input map[string]string) (map[string]any, error) {
	parsed := make(map[string]any, len(step.Fields))
	errs := validation.Errors{}

	for _, field := range step.Fields {
		raw := strings.TrimSpace(input[field.Name])
		if field.Required {
			if err := validation.Validate(raw, validation.Required.Error("missing value")); err != nil {
				errs[field.Name] = err
				continue
			}
		}
		if field.Kind == KindNumber && raw != "" {
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				errs[field.Name] = validation.NewError("validation_is_number", "invalid number")
				continue
			}
			parsed[field.Name] = n
			continue
		}
		parsed[field.Name] = raw
	}

	if err := errs.Filter(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "wizard step is invalid").
			WithTextCode(validationCode)
	}
	return parsed, nil
}

// FieldErrors extracts per-field messages from a validation failure
func FieldErrors(err error) map[string]string {
	fieldErrs, ok := goerrors.GetValidationErrors(err)
	if !ok {
		return nil
	}
	messages := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages[fe.Field] = fe.Message
	}
	return messages
}

// IsValidation reports whether err is a step validation failure
func IsValidation(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func display(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
