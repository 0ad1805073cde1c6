package api

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
)

type testAccount struct {
	id    string
	perms []string
}

func (a testAccount) ID() string                  { return a.id }
func (a testAccount) HasPermission(p string) bool { return slices.Contains(a.perms, p) }

type fakeUsage struct {
	workflowInUse bool
	statesInUse   map[string]bool
}

func (u fakeUsage) WorkflowInUse(ctx context.Context, wf *Workflow) (bool, error) {
	return u.workflowInUse, nil
}

func (u fakeUsage) StateInUse(ctx context.Context, wf *Workflow, stateID string) (bool, error) {
	return u.statesInUse[stateID], nil
}

type recordingForms struct {
	stateCalls      []*State
	transitionCalls []*Transition
}

func (f *recordingForms) BuildStateForm(fs FormState, wf *Workflow, state *State) (FormSpec, error) {
	f.stateCalls = append(f.stateCalls, state)
	return FormSpec{Elements: []FormElement{{Key: "color", Type: "textfield", Default: fs.Value("color")}}}, nil
}

func (f *recordingForms) BuildTransitionForm(fs FormState, wf *Workflow, transition *Transition) (FormSpec, error) {
	f.transitionCalls = append(f.transitionCalls, transition)
	return FormSpec{Elements: []FormElement{{Key: "notify", Type: "checkbox"}}}, nil
}

func reviewType() BaseType {
	return BaseType{
		TypeID:    "review",
		TypeLabel: "Review",
		Required: []RequiredState{
			{ID: "draft", Label: "Draft"},
			{ID: "published", Label: "Published"},
		},
	}
}

func newReviewWorkflow(t *testing.T) *Workflow {
	t.Helper()

	wf, err := NewWorkflow("articles", "Articles", reviewType())
	if err != nil {
		t.Fatalf("NewWorkflow failed: %v", err)
	}
	if err := wf.AddState("review", "Review"); err != nil {
		t.Fatalf("AddState failed: %v", err)
	}
	if err := wf.AddTransition("submit", "Submit", []string{"draft"}, "review"); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}
	if err := wf.AddTransition("publish", "Publish", []string{"review"}, "published"); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}
	return wf
}

func TestNewWorkflow_SeedsRequiredStates(t *testing.T) {
	wf, err := NewWorkflow("articles", "Articles", reviewType())
	if err != nil {
		t.Fatalf("NewWorkflow failed: %v", err)
	}

	if got := wf.StateIDs(); !slices.Equal(got, []string{"draft", "published"}) {
		t.Fatalf("expected seeded states, got %v", got)
	}
	for _, id := range []string{"draft", "published"} {
		if !wf.IsRequired(id) {
			t.Fatalf("expected %q to be required", id)
		}
		if err := wf.DeleteState(id); !errors.Is(err, ErrRequiredState) {
			t.Fatalf("expected ErrRequiredState for %q, got %v", id, err)
		}
	}
}

func TestNewWorkflow_Validation(t *testing.T) {
	if _, err := NewWorkflow("bad id", "x", reviewType()); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewWorkflow("ok", "x", nil); err == nil {
		t.Fatalf("expected error for nil type")
	}
}

func TestWorkflow_InitialStateIsLowestRequired(t *testing.T) {
	wf := newReviewWorkflow(t)

	if err := wf.SetStateWeight("review", -10); err != nil {
		t.Fatalf("SetStateWeight failed: %v", err)
	}
	if err := wf.SetStateWeight("published", -5); err != nil {
		t.Fatalf("SetStateWeight failed: %v", err)
	}

	st, err := wf.InitialState()
	if err != nil {
		t.Fatalf("InitialState failed: %v", err)
	}
	if st.ID != "published" {
		t.Fatalf("expected lowest weighted required state, got %q", st.ID)
	}
}

func TestWorkflow_InitialStateWithoutRequired(t *testing.T) {
	wf, err := NewWorkflow("plain", "Plain", BaseType{TypeID: "plain"})
	if err != nil {
		t.Fatalf("NewWorkflow failed: %v", err)
	}
	if _, err := wf.InitialState(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty workflow, got %v", err)
	}

	_ = wf.AddState("b", "B")
	_ = wf.AddState("a", "A")
	_ = wf.SetStateWeight("b", -1)

	st, err := wf.InitialState()
	if err != nil {
		t.Fatalf("InitialState failed: %v", err)
	}
	if st.ID != "b" {
		t.Fatalf("expected b, got %q", st.ID)
	}
}

func TestWorkflow_SelfTransitionPolicy(t *testing.T) {
	typ := reviewType()
	typ.ForbidSelfTransitions = true

	wf, err := NewWorkflow("strict", "Strict", typ)
	if err != nil {
		t.Fatalf("NewWorkflow failed: %v", err)
	}
	if err := wf.AddTransition("stay", "Stay", []string{"draft"}, "draft"); !errors.Is(err, ErrSelfTransition) {
		t.Fatalf("expected ErrSelfTransition, got %v", err)
	}
	if wf.HasTransition("stay") {
		t.Fatalf("rejected transition must not be added")
	}
}

func TestWorkflow_DefinitionRoundTrip(t *testing.T) {
	wf := newReviewWorkflow(t)
	if err := wf.SetStateData("review", map[string]any{"color": "amber"}); err != nil {
		t.Fatalf("SetStateData failed: %v", err)
	}
	if err := wf.SetTransitionData("publish", map[string]any{"bundles": []string{"article"}}); err != nil {
		t.Fatalf("SetTransitionData failed: %v", err)
	}
	_ = wf.SetTransitionWeight("submit", 7)

	def := wf.Definition()
	if def.Type != "review" || def.ID != "articles" || def.Label != "Articles" {
		t.Fatalf("unexpected definition header: %+v", def)
	}

	back, err := FromDefinition(def, reviewType())
	if err != nil {
		t.Fatalf("FromDefinition failed: %v", err)
	}

	origStates, _ := wf.States()
	backStates, _ := back.States()
	if !reflect.DeepEqual(origStates, backStates) {
		t.Fatalf("states differ:\n%+v\n%+v", origStates, backStates)
	}
	origTransitions, _ := wf.Transitions()
	backTransitions, _ := back.Transitions()
	if !reflect.DeepEqual(origTransitions, backTransitions) {
		t.Fatalf("transitions differ:\n%+v\n%+v", origTransitions, backTransitions)
	}
	if !back.IsRequired("draft") || back.IsRequired("review") {
		t.Fatalf("required flags not restored")
	}
}

func TestWorkflow_RequiredStatesSurviveMutations(t *testing.T) {
	assertProtected := func(t *testing.T, wf *Workflow) {
		t.Helper()
		for _, id := range []string{"draft", "published"} {
			if err := wf.DeleteState(id); !errors.Is(err, ErrRequiredState) {
				t.Fatalf("DeleteState(%q): expected ErrRequiredState, got %v", id, err)
			}
			if !wf.HasState(id) || !wf.IsRequired(id) {
				t.Fatalf("required state %q lost", id)
			}
		}
	}

	wf := newReviewWorkflow(t)
	if err := wf.SetStateLabel("draft", "Working copy"); err != nil {
		t.Fatalf("SetStateLabel failed: %v", err)
	}
	if err := wf.SetStateWeight("published", -3); err != nil {
		t.Fatalf("SetStateWeight failed: %v", err)
	}
	if err := wf.SetStateData("draft", map[string]any{"color": "grey"}); err != nil {
		t.Fatalf("SetStateData failed: %v", err)
	}
	if err := wf.DeleteTransition("publish"); err != nil {
		t.Fatalf("DeleteTransition failed: %v", err)
	}
	if err := wf.DeleteTransition("submit"); err != nil {
		t.Fatalf("DeleteTransition failed: %v", err)
	}
	if err := wf.DeleteState("review"); err != nil {
		t.Fatalf("DeleteState(review) failed: %v", err)
	}
	wf.SetLabel("Renamed")
	assertProtected(t, wf)

	back, err := FromDefinition(wf.Definition(), reviewType())
	if err != nil {
		t.Fatalf("FromDefinition failed: %v", err)
	}
	assertProtected(t, back)

	if s, _ := back.State("draft"); s.Label != "Working copy" {
		t.Fatalf("expected edited label to survive, got %q", s.Label)
	}
	if initial, _ := back.InitialState(); initial.ID != "published" {
		t.Fatalf("expected lowest-weight required state first, got %q", initial.ID)
	}
}

func TestFromDefinition_RejectsBrokenGraphs(t *testing.T) {
	base := func() Definition {
		return Definition{
			ID:   "articles",
			Type: "review",
			States: []State{
				{ID: "draft", Label: "Draft", Weight: 0},
				{ID: "published", Label: "Published", Weight: 1},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Definition)
		want   error
	}{
		{"duplicate state", func(d *Definition) {
			d.States = append(d.States, State{ID: "draft"})
		}, ErrDuplicateID},
		{"invalid state id", func(d *Definition) {
			d.States = append(d.States, State{ID: "in review"})
		}, ErrInvalidID},
		{"dangling target", func(d *Definition) {
			d.Transitions = []Transition{{ID: "go", From: []string{"draft"}, To: "archived"}}
		}, ErrNotFound},
		{"empty from", func(d *Definition) {
			d.Transitions = []Transition{{ID: "go", To: "published"}}
		}, ErrEmptyFromSet},
		{"duplicate transition", func(d *Definition) {
			d.Transitions = []Transition{
				{ID: "go", From: []string{"draft"}, To: "published"},
				{ID: "go", From: []string{"draft"}, To: "published"},
			}
		}, ErrDuplicateID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := base()
			tc.mutate(&def)
			if _, err := FromDefinition(def, reviewType()); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFromDefinition_SeedsMissingRequiredStates(t *testing.T) {
	def := Definition{
		ID:     "articles",
		Type:   "review",
		States: []State{{ID: "review", Label: "Review", Weight: 4}},
	}

	wf, err := FromDefinition(def, reviewType())
	if err != nil {
		t.Fatalf("FromDefinition failed: %v", err)
	}
	if got := wf.StateIDs(); !slices.Equal(got, []string{"review", "draft", "published"}) {
		t.Fatalf("expected missing required states appended, got %v", got)
	}
	review, _ := wf.State("review")
	if review.Weight != 4 {
		t.Fatalf("stored weight must be kept, got %d", review.Weight)
	}
}

func TestFromDefinition_TypeMismatch(t *testing.T) {
	def := Definition{ID: "articles", Type: "other"}
	if _, err := FromDefinition(def, reviewType()); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestBaseType_CheckAccessDelegates(t *testing.T) {
	typ := reviewType()
	var gotOp string
	typ.Access = AccessCheckerFunc(func(ctx context.Context, wf *Workflow, op string, acc Account) AccessResult {
		gotOp = op
		if acc.HasPermission("administer workflows") {
			return AccessAllowed
		}
		return AccessForbidden
	})

	wf, err := NewWorkflow("articles", "Articles", typ)
	if err != nil {
		t.Fatalf("NewWorkflow failed: %v", err)
	}

	ctx := context.Background()
	admin := testAccount{id: "1", perms: []string{"administer workflows"}}
	if got := typ.CheckAccess(ctx, wf, "update", admin); got != AccessAllowed {
		t.Fatalf("expected allowed, got %s", got)
	}
	if gotOp != "update" {
		t.Fatalf("operation not passed through, got %q", gotOp)
	}
	if got := typ.CheckAccess(ctx, wf, "delete", testAccount{id: "2"}); got != AccessForbidden {
		t.Fatalf("expected forbidden, got %s", got)
	}
	if got := reviewType().CheckAccess(ctx, wf, "view", admin); got != AccessNeutral {
		t.Fatalf("expected neutral without checker, got %s", got)
	}
}

func TestBaseType_UsageDelegates(t *testing.T) {
	typ := reviewType()
	typ.Usage = fakeUsage{workflowInUse: true, statesInUse: map[string]bool{"draft": true}}
	wf, _ := NewWorkflow("articles", "Articles", typ)
	ctx := context.Background()

	inUse, err := typ.WorkflowHasData(ctx, wf)
	if err != nil || !inUse {
		t.Fatalf("expected workflow in use, got %v, %v", inUse, err)
	}
	inUse, err = typ.StateHasData(ctx, wf, "draft")
	if err != nil || !inUse {
		t.Fatalf("expected draft in use, got %v, %v", inUse, err)
	}
	inUse, err = typ.StateHasData(ctx, wf, "published")
	if err != nil || inUse {
		t.Fatalf("expected published unused, got %v, %v", inUse, err)
	}
	if _, err := typ.StateHasData(ctx, wf, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBaseType_FormsCheckExistence(t *testing.T) {
	forms := &recordingForms{}
	typ := reviewType()
	typ.Forms = forms
	wf, _ := NewWorkflow("articles", "Articles", typ)
	fs := FormState{Values: map[string]any{"color": "red"}}

	spec, err := typ.BuildStateForm(fs, wf, nil)
	if err != nil {
		t.Fatalf("BuildStateForm failed: %v", err)
	}
	el, ok := spec.Element("color")
	if !ok || el.Default != "red" {
		t.Fatalf("unexpected form: %+v", spec)
	}

	draft, _ := wf.State("draft")
	if _, err := typ.BuildStateForm(fs, wf, &draft); err != nil {
		t.Fatalf("BuildStateForm failed: %v", err)
	}
	if _, err := typ.BuildStateForm(fs, wf, &State{ID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(forms.stateCalls) != 2 || forms.stateCalls[0] != nil {
		t.Fatalf("unexpected collaborator calls: %v", forms.stateCalls)
	}

	if _, err := typ.BuildTransitionForm(fs, wf, &Transition{ID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	spec, err = typ.BuildTransitionForm(fs, wf, nil)
	if err != nil {
		t.Fatalf("BuildTransitionForm failed: %v", err)
	}
	if _, ok := spec.Element("notify"); !ok {
		t.Fatalf("expected notify element")
	}

	empty, err := reviewType().BuildStateForm(fs, wf, nil)
	if err != nil || len(empty.Elements) != 0 {
		t.Fatalf("expected empty form without builder, got %+v, %v", empty, err)
	}
}

func TestBaseType_OnDependencyRemovalIsNoop(t *testing.T) {
	wf := newReviewWorkflow(t)
	if reviewType().OnDependencyRemoval(wf, Dependencies{DependencyConfig: {"node.type.page"}}) {
		t.Fatalf("base type must not report changes")
	}
}

func TestAccessResult_Combinators(t *testing.T) {
	tests := []struct {
		a, b    AccessResult
		or, and AccessResult
	}{
		{AccessAllowed, AccessNeutral, AccessAllowed, AccessNeutral},
		{AccessAllowed, AccessAllowed, AccessAllowed, AccessAllowed},
		{AccessAllowed, AccessForbidden, AccessForbidden, AccessForbidden},
		{AccessNeutral, AccessNeutral, AccessNeutral, AccessNeutral},
	}
	for _, tc := range tests {
		if got := tc.a.OrIf(tc.b); got != tc.or {
			t.Fatalf("%s OrIf %s: expected %s, got %s", tc.a, tc.b, tc.or, got)
		}
		if got := tc.a.AndIf(tc.b); got != tc.and {
			t.Fatalf("%s AndIf %s: expected %s, got %s", tc.a, tc.b, tc.and, got)
		}
	}
}

func TestDependencies(t *testing.T) {
	d := Dependencies{}
	d.Add(DependencyConfig, "node.type.article", "node.type.article", "user.role.editor")
	d.Add(DependencyModule, "editorial")

	if len(d[DependencyConfig]) != 2 {
		t.Fatalf("expected duplicates ignored, got %v", d[DependencyConfig])
	}
	if !d.Has(DependencyConfig, "user.role.editor") || d.Has(DependencyTheme, "olivero") {
		t.Fatalf("unexpected membership: %v", d)
	}

	both := d.Intersect(Dependencies{DependencyConfig: {"user.role.editor", "node.type.page"}})
	if !reflect.DeepEqual(both, Dependencies{DependencyConfig: {"user.role.editor"}}) {
		t.Fatalf("unexpected intersection: %v", both)
	}
	if !(Dependencies{}).IsEmpty() || d.IsEmpty() {
		t.Fatalf("IsEmpty misreports")
	}
	if got := d.Kinds(); !slices.Equal(got, []DependencyKind{DependencyConfig, DependencyModule}) {
		t.Fatalf("unexpected kinds: %v", got)
	}
}
