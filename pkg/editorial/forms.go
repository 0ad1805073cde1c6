package editorial

import (
	"slices"

	"github.com/petrijr/workflows/pkg/api"
)

// BuildStateForm offers the published and default revision flags. Defaults
// come from the submitted form first, then from the state being edited.
func (t Type) BuildStateForm(fs api.FormState, wf *api.Workflow, state *api.State) (api.FormSpec, error) {
	var data map[string]any
	if state != nil {
		current, err := wf.State(state.ID)
		if err != nil {
			return api.FormSpec{}, err
		}
		data = current.Data
	}

	published := boolValue(fs, data, DataPublished)
	defaultRevision := boolValue(fs, data, DataDefaultRevision)
	if state != nil && state.ID == StatePublished {
		published = true
		defaultRevision = true
	}

	return api.FormSpec{Elements: []api.FormElement{
		{
			Key:         DataPublished,
			Type:        "checkbox",
			Title:       "Published",
			Description: "When content reaches this state it should be published.",
			Default:     published,
		},
		{
			Key:         DataDefaultRevision,
			Type:        "checkbox",
			Title:       "Default revision",
			Description: "When content reaches this state it should be made the default revision. This is implied for published states.",
			Default:     defaultRevision,
		},
	}}, nil
}

// BuildTransitionForm offers the configured bundles as a multi-select.
func (t Type) BuildTransitionForm(fs api.FormState, wf *api.Workflow, transition *api.Transition) (api.FormSpec, error) {
	var selected []string
	if transition != nil {
		current, err := wf.Transition(transition.ID)
		if err != nil {
			return api.FormSpec{}, err
		}
		selected = stringList(current.Data[DataBundles])
	}
	if v := fs.Value(DataBundles); v != nil {
		selected = stringList(v)
	}

	return api.FormSpec{Elements: []api.FormElement{
		{
			Key:     DataBundles,
			Type:    "checkboxes",
			Title:   "Applies to",
			Default: slices.Clone(selected),
			Options: t.BundleOptions,
		},
	}}, nil
}

func boolValue(fs api.FormState, data map[string]any, key string) bool {
	if v, ok := fs.Value(key).(bool); ok {
		return v
	}
	v, _ := data[key].(bool)
	return v
}
