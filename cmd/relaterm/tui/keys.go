package tui

import (
	"strconv"

	"relaterm/internal/querycache"
)

// Query keys. Every remote read in the interface is addressed by one of
// these; mutations invalidate the keys whose data they change.
func keyActiveShift() querycache.Key { return querycache.NewKey("activeShift") }
func keyShiftGroups() querycache.Key { return querycache.NewKey("shiftGroups") }
func keyEquipment() querycache.Key   { return querycache.NewKey("equipment") }
func keyPositions() querycache.Key   { return querycache.NewKey("positions") }
func keyEmployees() querycache.Key   { return querycache.NewKey("employees") }
func keyTanks() querycache.Key       { return querycache.NewKey("tanks") }
func keyTickets() querycache.Key     { return querycache.NewKey("maintenanceTickets") }
func keyActiveLicenses() querycache.Key {
	return querycache.NewKey("activeLicenses")
}
func keyScheduledTasks() querycache.Key {
	return querycache.NewKey("scheduledTasks")
}
func keyParameters() querycache.Key {
	return querycache.NewKey("operationalParameters")
}
func keyAttendance(shiftID int) querycache.Key {
	return querycache.NewKey("shiftAttendance", strconv.Itoa(shiftID))
}
func keyReports(date, designator string, offset int) querycache.Key {
	return querycache.NewKey("reports", date, designator, strconv.Itoa(offset))
}
func keyReport(id int) querycache.Key {
	return querycache.NewKey("reportDetails", strconv.Itoa(id))
}
