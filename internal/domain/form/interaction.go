// internal/domain/form/interaction.go
package form

import "fmt"

const (
	ScaleFocused    = "scale(1.02)"
	ScaleRest       = "scale(1)"
	FocusTransition = "transform 0.2s ease"

	IconShow = "fas fa-eye"
	IconHide = "fas fa-eye-slash"

	// SubmitControl names the submit button as a navigation origin.
	SubmitControl = "submit"
)

func transformFor(focused bool) string {
	if focused {
		return ScaleFocused
	}
	return ScaleRest
}

// Focus records name as the focused input.
func (f *Form) Focus(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	f.focus(fd)
	return nil
}

// focus moves focus to fd. A group keeps its transition once it has been
// focused, so the later blur animates back.
func (f *Form) focus(fd *field) {
	f.focused = fd.name
	fd.animated = true
}

func transitionFor(fd *field) string {
	if fd.animated {
		return FocusTransition
	}
	return ""
}

// Blur drops focus from name if it holds it.
func (f *Form) Blur(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.focused == name {
		f.focused = ""
	}
}

// Visibility is the rendered state of a password field and its toggle icon.
type Visibility struct {
	Field string    `json:"field"`
	Type  InputType `json:"type"`
	Icon  string    `json:"icon"`
}

// ToggleVisibility flips a password field between masked and plain text.
func (f *Form) ToggleVisibility(name string) (Visibility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return Visibility{}, err
	}
	if fd.kind != InputPassword {
		return Visibility{}, fmt.Errorf("field %s has no visibility toggle", name)
	}
	if fd.current == InputPassword {
		fd.current = InputText
		return Visibility{Field: name, Type: InputText, Icon: IconHide}, nil
	}
	fd.current = InputPassword
	return Visibility{Field: name, Type: InputPassword, Icon: IconShow}, nil
}

// Navigation is the result of pressing Enter: either focus moves to another
// input or the form is submitted. The zero value means nothing happens.
type Navigation struct {
	Focus  string `json:"focus,omitempty"`
	Submit bool   `json:"submit,omitempty"`
}

// Next resolves Enter pressed on from. Login forms walk every input,
// signup forms skip checkboxes. An origin that is not a navigable input
// moves focus to the first one.
func (f *Form) Next(from string) Navigation {
	if from == SubmitControl {
		return Navigation{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var inputs []*field
	for _, fd := range f.fields {
		if f.kind == Signup && fd.kind == InputCheckbox {
			continue
		}
		inputs = append(inputs, fd)
	}
	idx := -1
	for i, fd := range inputs {
		if fd.name == from {
			idx = i
			break
		}
	}
	if idx+1 < len(inputs) {
		next := inputs[idx+1]
		f.focus(next)
		return Navigation{Focus: next.name}
	}
	return Navigation{Submit: true}
}
