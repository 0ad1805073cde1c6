package engine

import (
	"context"
	"slices"
	"sync"

	"github.com/petrijr/workflows/pkg/api"
)

// bundleType stores config names under the "bundles" key of transition data
// and, when strip is set, drops removed ones.
type bundleType struct {
	api.BaseType
	strip bool
}

func newBundleType(id string, strip bool, usage api.UsageProvider, access api.AccessChecker) bundleType {
	return bundleType{
		BaseType: api.BaseType{
			TypeID:    id,
			TypeLabel: id,
			Required: []api.RequiredState{
				{ID: "draft", Label: "Draft"},
				{ID: "published", Label: "Published"},
			},
			Usage:  usage,
			Access: access,
		},
		strip: strip,
	}
}

func (b bundleType) OnDependencyRemoval(wf *api.Workflow, deps api.Dependencies) bool {
	if !b.strip {
		return false
	}
	changed := false
	transitions, _ := wf.Transitions()
	for _, t := range transitions {
		bundles, ok := t.Data["bundles"].([]string)
		if !ok {
			continue
		}
		kept := slices.DeleteFunc(slices.Clone(bundles), func(name string) bool {
			return deps.Has(api.DependencyConfig, name)
		})
		if len(kept) == len(bundles) {
			continue
		}
		if len(kept) == 0 {
			delete(t.Data, "bundles")
		} else {
			t.Data["bundles"] = kept
		}
		_ = wf.SetTransitionData(t.ID, t.Data)
		changed = true
	}
	return changed
}

func (b bundleType) CalculateDependencies(wf *api.Workflow) api.Dependencies {
	deps := api.Dependencies{}
	transitions, _ := wf.Transitions()
	for _, t := range transitions {
		if bundles, ok := t.Data["bundles"].([]string); ok {
			deps.Add(api.DependencyConfig, bundles...)
		}
	}
	return deps
}

type fakeUsage struct {
	workflowInUse bool
	states        map[string]bool
}

func (u *fakeUsage) WorkflowInUse(ctx context.Context, wf *api.Workflow) (bool, error) {
	return u.workflowInUse, nil
}

func (u *fakeUsage) StateInUse(ctx context.Context, wf *api.Workflow, stateID string) (bool, error) {
	return u.states[stateID], nil
}

type testAccount struct {
	id    string
	perms []string
}

func (a testAccount) ID() string { return a.id }

func (a testAccount) HasPermission(p string) bool { return slices.Contains(a.perms, p) }

// permissionAccess allows an operation when the account holds a permission
// of the same name and forbids accounts named "blocked".
var permissionAccess = api.AccessCheckerFunc(func(ctx context.Context, wf *api.Workflow, op string, account api.Account) api.AccessResult {
	if account.ID() == "blocked" {
		return api.AccessForbidden
	}
	if account.HasPermission(op) {
		return api.AccessAllowed
	}
	return api.AccessNeutral
})

// recordingObserver records rejected changes and access checks.
type recordingObserver struct {
	api.NoopObserver

	mu       sync.Mutex
	rejected []string
	checked  []string
	deleted  []string
}

func (o *recordingObserver) OnChangeRejected(ctx context.Context, workflowID string, op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, workflowID+"/"+op)
}

func (o *recordingObserver) OnAccessChecked(ctx context.Context, wf *api.Workflow, operation string, account api.Account, result api.AccessResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checked = append(o.checked, operation+"="+result.String())
}

func (o *recordingObserver) OnWorkflowDeleted(ctx context.Context, workflowID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deleted = append(o.deleted, workflowID)
}
