package workflows

import (
	"fmt"

	"github.com/petrijr/workflows/pkg/api"
)

// GraphBuilder provides a fluent API for defining workflows:
//
//	wf, err := workflows.New("articles", "Articles", editorial.New()).
//	    State("review", "Review").
//	    Transition("submit", "Submit", []string{"draft"}, "review").
//	    Transition("publish", "Publish", []string{"review"}, "published").
//	    Build()
//
// The first failing step is remembered and returned by Build; later steps
// are skipped.
type GraphBuilder struct {
	wf  *api.Workflow
	err error
}

// New starts a workflow of the given type with its required states seeded.
func New(id, label string, typ WorkflowType) *GraphBuilder {
	wf, err := api.NewWorkflow(id, label, typ)
	return &GraphBuilder{wf: wf, err: err}
}

func (b *GraphBuilder) apply(step string, fn func(wf *api.Workflow) error) *GraphBuilder {
	if b.err != nil {
		return b
	}
	if err := fn(b.wf); err != nil {
		b.err = fmt.Errorf("%s: %w", step, err)
	}
	return b
}

// State appends a state.
func (b *GraphBuilder) State(id, label string) *GraphBuilder {
	return b.apply("state "+id, func(wf *api.Workflow) error {
		return wf.AddState(id, label)
	})
}

// StateData sets the extension data of a state.
func (b *GraphBuilder) StateData(id string, data map[string]any) *GraphBuilder {
	return b.apply("state "+id, func(wf *api.Workflow) error {
		return wf.SetStateData(id, data)
	})
}

// Transition appends a transition.
func (b *GraphBuilder) Transition(id, label string, from []string, to string) *GraphBuilder {
	return b.apply("transition "+id, func(wf *api.Workflow) error {
		return wf.AddTransition(id, label, from, to)
	})
}

// TransitionData sets the extension data of a transition.
func (b *GraphBuilder) TransitionData(id string, data map[string]any) *GraphBuilder {
	return b.apply("transition "+id, func(wf *api.Workflow) error {
		return wf.SetTransitionData(id, data)
	})
}

// Build returns the workflow or the first error encountered.
func (b *GraphBuilder) Build() (*Workflow, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.wf, nil
}

// MustBuild is like Build but panics on error. Intended for static
// workflows declared at init time.
func (b *GraphBuilder) MustBuild() *Workflow {
	wf, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("workflows: %v", err))
	}
	return wf
}
