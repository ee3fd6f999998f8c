package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders tabular data with a styled header row, an optional
// highlighted (selected) row, and per-row dirty markers. It is
// deliberately dumb: callers own the rows and the cursor.
type Table struct {
	Columns  []string
	Rows     [][]string
	Cursor   int    // -1 for no selection
	Dirty    []bool // optional; len must match Rows when set
	MaxWidth int

	styles Styles
}

// NewTable returns a table with the default styles and no selection.
func NewTable(columns ...string) Table {
	return Table{
		Columns: columns,
		Cursor:  -1,
		styles:  DefaultStyles(),
	}
}

// Render draws the table.
func (t Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = pad(c, widths[i])
	}
	b.WriteString(t.styles.Bold.Foreground(Primary).Render(strings.Join(header, "  ")))
	b.WriteString("\n")
	b.WriteString(t.styles.RenderDivider(totalWidth(widths)))
	b.WriteString("\n")

	for ri, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range t.Columns {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = pad(cell, widths[i])
		}
		line := strings.Join(cells, "  ")
		if len(t.Dirty) == len(t.Rows) && t.Dirty[ri] {
			line += "  " + t.styles.Warning.Render("*")
		}
		if ri == t.Cursor {
			line = t.styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(t.Rows) == 0 {
		b.WriteString(t.styles.Muted.Render("(no rows)"))
		b.WriteString("\n")
	}

	return b.String()
}

func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func totalWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total + 2*(len(widths)-1)
}

// Confirm is a modal yes/no prompt rendered over page content.
type Confirm struct {
	Prompt  string
	Yes     bool
	Visible bool

	styles Styles
}

// NewConfirm returns a hidden confirmation dialog.
func NewConfirm() Confirm {
	return Confirm{styles: DefaultStyles()}
}

// Show makes the dialog visible with the given prompt, defaulting to No.
func (c *Confirm) Show(prompt string) {
	c.Prompt = prompt
	c.Yes = false
	c.Visible = true
}

// Hide dismisses the dialog.
func (c *Confirm) Hide() {
	c.Visible = false
}

// Toggle flips the selected answer.
func (c *Confirm) Toggle() {
	c.Yes = !c.Yes
}

// Render draws the dialog box.
func (c Confirm) Render() string {
	if !c.Visible {
		return ""
	}
	yes, no := "  Yes  ", "  No  "
	if c.Yes {
		yes = c.styles.Selected.Render(yes)
	} else {
		no = c.styles.Selected.Render(no)
	}
	body := fmt.Sprintf("%s\n\n%s %s", c.Prompt, yes, no)
	return c.styles.Panel.BorderForeground(Warning).Render(body)
}
