// internal/domain/form/snapshot.go
package form

// Button is the state of the form's submit control.
type Button struct {
	Loading  bool `json:"loading"`
	Success  bool `json:"success"`
	Disabled bool `json:"disabled"`
}

// BeginSubmit shows the loading indicator and disables the control. The
// change hook fires since the submission outlives the triggering event.
func (f *Form) BeginSubmit() {
	f.mu.Lock()
	f.button.Loading = true
	f.button.Disabled = true
	hook := f.onChange
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// SubmitSucceeded swaps loading for success. The control stays disabled.
func (f *Form) SubmitSucceeded() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.button.Loading = false
	f.button.Success = true
}

// SubmitFailed clears loading and re-enables the control for a retry.
func (f *Form) SubmitFailed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.button.Loading = false
	f.button.Disabled = false
}

type FieldState struct {
	Name         string    `json:"name"`
	Type         InputType `json:"type"`
	Value        string    `json:"value,omitempty"`
	Checked      bool      `json:"checked,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	IsError      bool      `json:"isError"`
	IsSuccess    bool      `json:"isSuccess"`
	Transform    string    `json:"transform"`
	Transition   string    `json:"transition,omitempty"`
}

// Snapshot is a point-in-time copy of a form for rendering. Password values
// are never included.
type Snapshot struct {
	Form    Kind         `json:"form"`
	Fields  []FieldState `json:"fields"`
	Button  Button       `json:"button"`
	Focused string       `json:"focused,omitempty"`
}

// Field returns the state of name and whether it exists.
func (s Snapshot) Field(name string) (FieldState, bool) {
	for _, fs := range s.Fields {
		if fs.Name == name {
			return fs, true
		}
	}
	return FieldState{}, false
}

// Errors returns the fields currently in error state, in form order.
func (s Snapshot) Errors() []FieldState {
	var out []FieldState
	for _, fs := range s.Fields {
		if fs.IsError {
			out = append(out, fs)
		}
	}
	return out
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := Snapshot{
		Form:    f.kind,
		Fields:  make([]FieldState, 0, len(f.fields)),
		Button:  f.button,
		Focused: f.focused,
	}
	for _, fd := range f.fields {
		fs := FieldState{
			Name:         fd.name,
			Type:         fd.current,
			Checked:      fd.checked,
			ErrorMessage: fd.errMsg,
			IsError:      fd.isError,
			IsSuccess:    fd.isSuccess,
			Transform:    transformFor(fd.name == f.focused),
			Transition:   transitionFor(fd),
		}
		if fd.kind != InputPassword {
			fs.Value = fd.value
		}
		snap.Fields = append(snap.Fields, fs)
	}
	return snap
}
