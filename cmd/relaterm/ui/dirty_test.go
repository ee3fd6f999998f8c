package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditsDirty(t *testing.T) {
	e := NewEdits[string]()

	assert.False(t, e.Dirty(1, "operational"), "untouched row is clean")

	e.Set(1, "maintenance")
	assert.True(t, e.Dirty(1, "operational"))
	assert.Equal(t, "maintenance", e.Get(1, "operational"))

	// Editing back to the server value makes the row clean again.
	e.Set(1, "operational")
	assert.False(t, e.Dirty(1, "operational"))

	e.Set(1, "maintenance")
	e.Reset(1)
	assert.False(t, e.Dirty(1, "operational"))
	assert.Equal(t, "operational", e.Get(1, "operational"))
}

func TestEditsServerCatchesUp(t *testing.T) {
	e := NewEdits[string]()
	e.Set(7, "out_of_service")

	// When a refetch returns the edited value, the row reads clean.
	assert.False(t, e.Dirty(7, "out_of_service"))
	assert.True(t, e.Dirty(7, "operational"))
}

func TestEditsAny(t *testing.T) {
	e := NewEdits[int]()
	server := map[int]int{1: 10, 2: 20}

	assert.False(t, e.Any(server))

	e.Set(1, 10)
	assert.False(t, e.Any(server), "edit equal to server is not dirty")

	e.Set(2, 25)
	assert.True(t, e.Any(server))

	e.Clear()
	assert.False(t, e.Any(server))
}

func TestTableRender(t *testing.T) {
	tbl := NewTable("ID", "Name")
	tbl.Rows = [][]string{{"1", "Turbine A"}, {"2", "Turbine B"}}
	tbl.Cursor = 0
	tbl.Dirty = []bool{false, true}

	out := tbl.Render()
	assert.Contains(t, out, "Turbine A")
	assert.Contains(t, out, "Turbine B")
	assert.Contains(t, out, "*")
}

func TestConfirmDefaultsToNo(t *testing.T) {
	c := NewConfirm()
	c.Show("Delete Turbine A?")

	assert.True(t, c.Visible)
	assert.False(t, c.Yes)

	c.Toggle()
	assert.True(t, c.Yes)

	out := c.Render()
	assert.Contains(t, out, "Delete Turbine A?")
}
