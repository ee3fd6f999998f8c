package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"relaterm/cmd/relaterm/ui"
)

// field is one form row: free text, or a fixed option set cycled with
// the arrow keys.
type field struct {
	label    string
	required bool
	options  []string
	optIdx   int
	input    textinput.Model
}

func textField(label, placeholder string, required bool) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 512
	return field{label: label, required: required, input: in}
}

func selectField(label string, options []string) field {
	return field{label: label, required: true, options: options}
}

func (f *field) value() string {
	if f.options != nil {
		return f.options[f.optIdx]
	}
	return strings.TrimSpace(f.input.Value())
}

// form is a focus-tracked stack of fields with a submit action. Pages own
// validation and submission; the form owns navigation and editing.
type form struct {
	title  string
	fields []field
	focus  int
	err    string
	busy   bool
}

func newForm(title string, fields ...field) form {
	f := form{title: title, fields: fields}
	if len(f.fields) > 0 && f.fields[0].options == nil {
		f.fields[0].input.Focus()
	}
	return f
}

func (f *form) value(i int) string { return f.fields[i].value() }

func (f *form) setFocus(i int) {
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	if f.fields[i].options == nil {
		f.fields[i].input.Focus()
	}
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].input.SetValue("")
		f.fields[i].optIdx = 0
	}
	f.err = ""
	f.busy = false
	f.setFocus(0)
}

// missing returns the label of the first required empty field, or "".
func (f *form) missing() string {
	for i := range f.fields {
		fl := &f.fields[i]
		if fl.required && fl.value() == "" {
			return fl.label
		}
	}
	return ""
}

// update handles focus movement and editing. It reports whether the form
// was submitted (enter on the last field or ctrl+s anywhere).
func (f *form) update(msg tea.Msg) (submitted bool, cmd tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		cur := &f.fields[f.focus]
		if cur.options == nil {
			cur.input, cmd = cur.input.Update(msg)
		}
		return false, cmd
	}
	if f.busy {
		return false, nil
	}

	switch key.String() {
	case "tab", "down":
		f.setFocus((f.focus + 1) % len(f.fields))
		return false, nil
	case "shift+tab", "up":
		f.setFocus((f.focus - 1 + len(f.fields)) % len(f.fields))
		return false, nil
	case "ctrl+s":
		return true, nil
	case "enter":
		if f.focus == len(f.fields)-1 {
			return true, nil
		}
		f.setFocus(f.focus + 1)
		return false, nil
	case "left", "right":
		cur := &f.fields[f.focus]
		if cur.options != nil {
			step := 1
			if key.String() == "left" {
				step = len(cur.options) - 1
			}
			cur.optIdx = (cur.optIdx + step) % len(cur.options)
			return false, nil
		}
	}

	cur := &f.fields[f.focus]
	if cur.options == nil {
		cur.input, cmd = cur.input.Update(msg)
	}
	return false, cmd
}

func (f *form) view(s ui.Styles) string {
	var b strings.Builder
	if f.title != "" {
		b.WriteString(s.Title.Render(f.title))
		b.WriteString("\n")
	}
	for i := range f.fields {
		fl := &f.fields[i]
		label := fl.label
		if fl.required {
			label += " *"
		}
		if i == f.focus {
			b.WriteString(s.Focused.Render("> " + label))
		} else {
			b.WriteString(s.Muted.Render("  " + label))
		}
		b.WriteString("\n  ")
		if fl.options != nil {
			b.WriteString("◀ " + fl.options[fl.optIdx] + " ▶")
		} else {
			b.WriteString(fl.input.View())
		}
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString(s.Error.Render(f.err))
		b.WriteString("\n")
	}
	if f.busy {
		b.WriteString(s.Muted.Render("Saving..."))
		b.WriteString("\n")
	}
	b.WriteString(s.Muted.Render("enter/ctrl+s submit · tab next field · esc cancel"))
	return b.String()
}
