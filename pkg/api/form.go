package api

// FormState carries the values submitted with a configuration form.
type FormState struct {
	Values map[string]any
}

// Value returns a submitted value, or nil.
func (fs FormState) Value(key string) any {
	if fs.Values == nil {
		return nil
	}
	return fs.Values[key]
}

// FormElement is one declarative form control. Rendering is up to the caller.
type FormElement struct {
	Key         string
	Type        string // "checkbox", "textfield", "select", "checkboxes", ...
	Title       string
	Description string
	Default     any
	Options     map[string]string
	Required    bool
}

// FormSpec is an ordered list of form elements.
type FormSpec struct {
	Elements []FormElement
}

// Element returns the element with the given key.
func (f FormSpec) Element(key string) (FormElement, bool) {
	for _, e := range f.Elements {
		if e.Key == key {
			return e, true
		}
	}
	return FormElement{}, false
}

// FormBuilder builds the extra per-state and per-transition settings forms
// of a workflow type. A nil state or transition means a new one is being added.
type FormBuilder interface {
	BuildStateForm(fs FormState, wf *Workflow, state *State) (FormSpec, error)
	BuildTransitionForm(fs FormState, wf *Workflow, transition *Transition) (FormSpec, error)
}
