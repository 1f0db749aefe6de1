package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jwalitptl/optica-admin/pkg/validator"
)

var (
	// ErrStepsNotVisited blocks submission until every step has been shown
	// at least once, even when all required fields are already valid.
	ErrStepsNotVisited = errors.New("every step must be reviewed before submitting")
	ErrUnknownStep     = errors.New("unknown step")
	ErrNoSteps         = errors.New("wizard has no steps")
)

// Step is one tab of a multi-step form and the JSON fields it owns.
type Step struct {
	ID     string
	Title  string
	Fields []string
}

// StepError reports the fields that kept the wizard on a step.
type StepError struct {
	Step   string
	Fields map[string][]string
}

func (e *StepError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return fmt.Sprintf("step %s has invalid fields: %s", e.Step, strings.Join(names, ", "))
}

// Wizard walks an ordered list of steps and remembers which ones were visited.
type Wizard struct {
	steps     []Step
	validator validator.Validator

	mu      sync.Mutex
	current int
	visited map[string]bool
}

func NewWizard(v validator.Validator, steps ...Step) *Wizard {
	if v == nil {
		v = validator.Default()
	}
	w := &Wizard{steps: steps, validator: v}
	w.Reset()
	return w
}

func (w *Wizard) Steps() []Step {
	return append([]Step(nil), w.steps...)
}

// Current returns the step being shown, or the zero Step when there are none.
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.steps) == 0 {
		return Step{}
	}
	return w.steps[w.current]
}

func (w *Wizard) Index() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Wizard) IsLast() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current >= len(w.steps)-1
}

// Next validates the current step's fields of draft and moves forward.
// On the last step it only validates.
func (w *Wizard) Next(draft any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.steps) == 0 {
		return ErrNoSteps
	}
	step := w.steps[w.current]
	if errs := w.validator.ValidateFields(draft, step.Fields...); len(errs) > 0 {
		return &StepError{Step: step.ID, Fields: errs}
	}
	if w.current < len(w.steps)-1 {
		w.current++
		w.visited[w.steps[w.current].ID] = true
	}
	return nil
}

func (w *Wizard) Prev() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current > 0 {
		w.current--
		w.visited[w.steps[w.current].ID] = true
	}
}

// JumpTo moves directly to a step without validating the current one.
func (w *Wizard) JumpTo(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range w.steps {
		if s.ID == id {
			w.current = i
			w.visited[id] = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownStep, id)
}

func (w *Wizard) Visited(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visited[id]
}

// CanSubmit reports whether every step has been visited.
func (w *Wizard) CanSubmit() bool {
	return len(w.Missing()) == 0
}

// Missing lists the steps not yet visited, in order.
func (w *Wizard) Missing() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, s := range w.steps {
		if !w.visited[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}

// StepOf returns the step that owns field.
func (w *Wizard) StepOf(field string) (string, bool) {
	for _, s := range w.steps {
		for _, f := range s.Fields {
			if f == field {
				return s.ID, true
			}
		}
	}
	return "", false
}

// FirstStepWith returns the earliest step owning any of fields.
func (w *Wizard) FirstStepWith(fields []string) (string, bool) {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	for _, s := range w.steps {
		for _, f := range s.Fields {
			if set[f] {
				return s.ID, true
			}
		}
	}
	return "", false
}

// Reset clears the visited set and returns to the first step.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = 0
	w.visited = make(map[string]bool, len(w.steps))
	if len(w.steps) > 0 {
		w.visited[w.steps[0].ID] = true
	}
}
