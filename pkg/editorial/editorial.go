// Package editorial provides a content moderation workflow type: content
// starts as a draft, moves through states an administrator defines and ends
// up published.
//
// Transitions may list the content bundles they apply to under the
// "bundles" data key, and states may name a role to notify under
// "notify_role". Both refer to configuration that can be removed from the
// site; the type strips removed bundles itself but treats the notification
// role as load-bearing.
package editorial

import (
	"maps"
	"slices"

	"github.com/petrijr/workflows/pkg/api"
)

// TypeID is the id the editorial type registers under.
const TypeID = "editorial"

// Required states.
const (
	StateDraft     = "draft"
	StatePublished = "published"
)

// Data keys understood by the type.
const (
	DataBundles         = "bundles"
	DataNotifyRole      = "notify_role"
	DataPublished       = "published"
	DataDefaultRevision = "default_revision"
)

// Type is the editorial workflow type.
type Type struct {
	api.BaseType

	// BundleOptions are the bundles offered by the transition form, keyed by
	// config name with a human label.
	BundleOptions map[string]string
}

var (
	_ api.WorkflowType         = Type{}
	_ api.DependencyCalculator = Type{}
)

// Option configures a Type.
type Option func(*Type)

// WithAccess sets the access checker consulted by CheckAccess.
func WithAccess(a api.AccessChecker) Option {
	return func(t *Type) { t.Access = a }
}

// WithUsage sets the provider asked whether content uses a workflow or state.
func WithUsage(u api.UsageProvider) Option {
	return func(t *Type) { t.Usage = u }
}

// WithBundles sets the bundles offered by the transition form.
func WithBundles(options map[string]string) Option {
	return func(t *Type) { t.BundleOptions = maps.Clone(options) }
}

// New returns the editorial type.
func New(opts ...Option) Type {
	t := Type{
		BaseType: api.BaseType{
			TypeID:    TypeID,
			TypeLabel: "Editorial",
			Required: []api.RequiredState{
				{ID: StateDraft, Label: "Draft"},
				{ID: StatePublished, Label: "Published"},
			},
		},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// InitialState is always the draft state, whatever its weight.
func (t Type) InitialState(wf *api.Workflow) (api.State, error) {
	return wf.State(StateDraft)
}

// OnDependencyRemoval drops removed bundles from transition data. A
// transition left with no bundles loses the key. Notification roles are
// not touched, so workflows naming a removed role still depend on it.
func (t Type) OnDependencyRemoval(wf *api.Workflow, deps api.Dependencies) bool {
	removed := func(name string) bool {
		return deps.Has(api.DependencyConfig, name)
	}

	changed := false
	transitions, _ := wf.Transitions()
	for _, tr := range transitions {
		kept, remaining, ok := removeBundles(tr.Data[DataBundles], removed)
		if !ok {
			continue
		}

		data := maps.Clone(tr.Data)
		if remaining == 0 {
			delete(data, DataBundles)
		} else {
			data[DataBundles] = kept
		}
		if err := wf.SetTransitionData(tr.ID, data); err != nil {
			continue
		}
		changed = true
	}
	return changed
}

// CalculateDependencies reports the bundles and roles referenced by the
// workflow, plus the module providing the type.
func (t Type) CalculateDependencies(wf *api.Workflow) api.Dependencies {
	deps := api.Dependencies{}
	deps.Add(api.DependencyModule, TypeID)

	transitions, _ := wf.Transitions()
	for _, tr := range transitions {
		deps.Add(api.DependencyConfig, stringList(tr.Data[DataBundles])...)
	}
	states, _ := wf.States()
	for _, s := range states {
		if role, ok := s.Data[DataNotifyRole].(string); ok && role != "" {
			deps.Add(api.DependencyConfig, role)
		}
	}
	return deps
}

// stringList accepts the shapes a bundle list takes after decoding from
// gob, JSON or YAML. Entries that are not strings are skipped.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// removeBundles filters the bundle names matched by removed out of v,
// keeping the list's decoded type and any entry that is not a string.
// ok is false when nothing was removed.
func removeBundles(v any, removed func(string) bool) (kept any, remaining int, ok bool) {
	switch list := v.(type) {
	case []string:
		out := slices.DeleteFunc(slices.Clone(list), removed)
		return out, len(out), len(out) != len(list)
	case []any:
		out := slices.DeleteFunc(slices.Clone(list), func(item any) bool {
			s, isString := item.(string)
			return isString && removed(s)
		})
		return out, len(out), len(out) != len(list)
	default:
		return v, 0, false
	}
}
