package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Equipment ---

// ListEquipment returns the full equipment catalog.
func (c *Client) ListEquipment(ctx context.Context) ([]Equipment, error) {
	var out []Equipment
	if err := c.do(ctx, http.MethodGet, "/equipment/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEquipment returns a single equipment catalog entry.
func (c *Client) GetEquipment(ctx context.Context, id int) (*Equipment, error) {
	var out Equipment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/equipment/%d", id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEquipment adds a new equipment catalog entry.
func (c *Client) CreateEquipment(ctx context.Context, in EquipmentCreate) (*Equipment, error) {
	var out Equipment
	if err := c.do(ctx, http.MethodPost, "/equipment/", in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEquipment updates an equipment catalog entry.
func (c *Client) UpdateEquipment(ctx context.Context, id int, in EquipmentCreate) (*Equipment, error) {
	var out Equipment
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/equipment/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEquipment removes an equipment catalog entry.
func (c *Client) DeleteEquipment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/equipment/%d", id), nil, nil, http.StatusNoContent)
}

// --- Personnel ---

// ListPositions returns the job position catalog.
func (c *Client) ListPositions(ctx context.Context) ([]Position, error) {
	var out []Position
	if err := c.do(ctx, http.MethodGet, "/personnel/positions/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePosition adds a job position.
func (c *Client) CreatePosition(ctx context.Context, in PositionCreate) (*Position, error) {
	var out Position
	if err := c.do(ctx, http.MethodPost, "/personnel/positions/", in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePosition updates a job position.
func (c *Client) UpdatePosition(ctx context.Context, id int, in PositionCreate) (*Position, error) {
	var out Position
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/personnel/positions/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePosition removes a job position.
func (c *Client) DeletePosition(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/personnel/positions/%d", id), nil, nil, http.StatusNoContent)
}

// ListEmployees returns all employees with their base position and groups.
func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := c.do(ctx, http.MethodGet, "/personnel/employees/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEmployee adds an employee record.
func (c *Client) CreateEmployee(ctx context.Context, in EmployeeCreate) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, http.MethodPost, "/personnel/employees/", in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEmployee updates an employee record.
func (c *Client) UpdateEmployee(ctx context.Context, id int, in EmployeeCreate) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/personnel/employees/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEmployee removes an employee record.
func (c *Client) DeleteEmployee(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/personnel/employees/%d", id), nil, nil, http.StatusNoContent)
}

// ListGroups returns the shift groups with their member rosters.
func (c *Client) ListGroups(ctx context.Context) ([]ShiftGroup, error) {
	var out []ShiftGroup
	if err := c.do(ctx, http.MethodGet, "/personnel/groups/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGroup adds a shift group.
func (c *Client) CreateGroup(ctx context.Context, name string) (*ShiftGroup, error) {
	var out ShiftGroup
	in := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := c.do(ctx, http.MethodPost, "/personnel/groups/", in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGroup removes a shift group.
func (c *Client) DeleteGroup(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/personnel/groups/%d", id), nil, nil, http.StatusNoContent)
}

// AddGroupMember assigns an employee to a shift group.
func (c *Client) AddGroupMember(ctx context.Context, groupID, employeeID int) (*ShiftGroup, error) {
	var out ShiftGroup
	path := fmt.Sprintf("/personnel/groups/%d/members/%d", groupID, employeeID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveGroupMember removes an employee from a shift group.
func (c *Client) RemoveGroupMember(ctx context.Context, groupID, employeeID int) (*ShiftGroup, error) {
	var out ShiftGroup
	path := fmt.Sprintf("/personnel/groups/%d/members/%d", groupID, employeeID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Shifts ---

// ActiveShift returns the caller's active shift with all of its logs.
// A 404 means the user has no shift assigned; callers treat that as a
// meaningful state rather than an error banner.
func (c *Client) ActiveShift(ctx context.Context) (*Shift, error) {
	var out Shift
	if err := c.do(ctx, http.MethodGet, "/shifts/active/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignGroup assigns the on-duty group to a shift, generating its
// attendance sheet server-side.
func (c *Client) AssignGroup(ctx context.Context, shiftID, groupID int) (*Shift, error) {
	var out Shift
	path := fmt.Sprintf("/shifts/%d/assign-group", shiftID)
	if err := c.do(ctx, http.MethodPost, path, AssignGroupRequest{GroupID: groupID}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Handover performs the two-party shift handover. The server is the sole
// authority on the credential handshake; on success the outgoing user's
// session is no longer valid.
func (c *Client) Handover(ctx context.Context, in HandoverRequest) error {
	return c.do(ctx, http.MethodPost, "/shifts/handover", in, nil, http.StatusOK)
}

// CreateEventLog records an operational event on a shift.
func (c *Client) CreateEventLog(ctx context.Context, shiftID int, in EventLogCreate) (*EventLog, error) {
	var out EventLog
	path := fmt.Sprintf("/shifts/%d/events/", shiftID)
	if err := c.do(ctx, http.MethodPost, path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNoveltyLog records a novelty or instruction on a shift.
func (c *Client) CreateNoveltyLog(ctx context.Context, shiftID int, in NoveltyLogCreate) (*NoveltyLog, error) {
	var out NoveltyLog
	path := fmt.Sprintf("/shifts/%d/novelties/", shiftID)
	if err := c.do(ctx, http.MethodPost, path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStatusLog records an equipment status change on a shift.
func (c *Client) CreateStatusLog(ctx context.Context, shiftID int, in StatusLogCreate) (*StatusLog, error) {
	var out StatusLog
	path := fmt.Sprintf("/shifts/%d/equipment-status/", shiftID)
	if err := c.do(ctx, http.MethodPost, path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTankReading records a tank level reading on a shift.
func (c *Client) CreateTankReading(ctx context.Context, shiftID int, in TankReadingCreate) (*TankReading, error) {
	var out TankReading
	path := fmt.Sprintf("/shifts/%d/tank-readings/", shiftID)
	if err := c.do(ctx, http.MethodPost, path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTaskLog marks a scheduled task completed on a shift.
func (c *Client) CreateTaskLog(ctx context.Context, shiftID int, in TaskLogCreate) (*TaskLog, error) {
	var out TaskLog
	path := fmt.Sprintf("/shifts/%d/task-logs/", shiftID)
	if err := c.do(ctx, http.MethodPost, path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRamp records a CENACE generation ramp on a shift.
func (c *Client) CreateRamp(ctx context.Context, shiftID int, in RampCreate) (*GenerationRamp, error) {
	var out GenerationRamp
	path := fmt.Sprintf("/shifts/%d/ramps/", shiftID)
	if err := c.do(ctx, http.MethodPost, path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReading records an operational parameter reading on a shift.
func (c *Client) CreateReading(ctx context.Context, shiftID int, in ReadingCreate) (*OperationalReading, error) {
	var out OperationalReading
	path := fmt.Sprintf("/shifts/%d/operational-readings/", shiftID)
	if err := c.do(ctx, http.MethodPost, path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShiftAttendance returns the attendance sheet of a shift.
func (c *Client) ShiftAttendance(ctx context.Context, shiftID int) ([]AttendanceRecord, error) {
	var out []AttendanceRecord
	path := fmt.Sprintf("/shifts/%d/attendance", shiftID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAttendance patches an attendance record.
func (c *Client) UpdateAttendance(ctx context.Context, id int, in AttendanceUpdate) (*AttendanceRecord, error) {
	var out AttendanceRecord
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/attendance/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Maintenance tickets ---

// ListTickets returns all maintenance tickets.
func (c *Client) ListTickets(ctx context.Context) ([]MaintenanceTicket, error) {
	var out []MaintenanceTicket
	if err := c.do(ctx, http.MethodGet, "/maintenance-tickets/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTicket opens a maintenance ticket.
func (c *Client) CreateTicket(ctx context.Context, in TicketCreate) (*MaintenanceTicket, error) {
	var out MaintenanceTicket
	if err := c.do(ctx, http.MethodPost, "/maintenance-tickets/", in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTicket patches a maintenance ticket (status transitions included).
func (c *Client) UpdateTicket(ctx context.Context, id int, in TicketUpdate) (*MaintenanceTicket, error) {
	var out MaintenanceTicket
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/maintenance-tickets/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Licenses ---

// ListLicenses returns licenses, optionally filtered by status.
func (c *Client) ListLicenses(ctx context.Context, status string) ([]License, error) {
	path := "/licenses/"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []License
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLicense opens a new work license.
func (c *Client) CreateLicense(ctx context.Context, in LicenseCreate) (*License, error) {
	var out License
	if err := c.do(ctx, http.MethodPost, "/licenses/", in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseLicense transitions a license to CLOSED at the given end time.
func (c *Client) CloseLicense(ctx context.Context, id int, endTime string) (*License, error) {
	var out License
	in := struct {
		EndTime string `json:"end_time"`
	}{EndTime: endTime}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/licenses/%d/close", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Tanks ---

// ListTanks returns the resource tank catalog.
func (c *Client) ListTanks(ctx context.Context) ([]Tank, error) {
	var out []Tank
	if err := c.do(ctx, http.MethodGet, "/tank/", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTank adds a resource tank to the catalog.
func (c *Client) CreateTank(ctx context.Context, in TankCreate) (*Tank, error) {
	var out Tank
	if err := c.do(ctx, http.MethodPost, "/tank/", in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTank updates a resource tank.
func (c *Client) UpdateTank(ctx context.Context, id int, in TankCreate) (*Tank, error) {
	var out Tank
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tank/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTank removes a resource tank.
func (c *Client) DeleteTank(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tank/%d", id), nil, nil, http.StatusNoContent)
}

// --- Scheduled tasks ---

// ListScheduledTasks returns scheduled tasks; activeOnly narrows to tasks
// still in the routine.
func (c *Client) ListScheduledTasks(ctx context.Context, activeOnly bool) ([]ScheduledTask, error) {
	path := "/scheduled-tasks/"
	if activeOnly {
		path += "?is_active=true"
	}
	var out []ScheduledTask
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateScheduledTask adds a task to the shift routine.
func (c *Client) CreateScheduledTask(ctx context.Context, in ScheduledTaskCreate) (*ScheduledTask, error) {
	var out ScheduledTask
	if err := c.do(ctx, http.MethodPost, "/scheduled-tasks/", in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateScheduledTask updates a scheduled task; setting IsActive false
// retires it from the routine without losing history.
func (c *Client) UpdateScheduledTask(ctx context.Context, id int, in ScheduledTaskCreate) (*ScheduledTask, error) {
	var out ScheduledTask
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/scheduled-tasks/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Operational parameters ---

// ListParameters returns operational parameters; activeOnly narrows to
// parameters currently read.
func (c *Client) ListParameters(ctx context.Context, activeOnly bool) ([]OperationalParameter, error) {
	path := "/operational-parameters/"
	if activeOnly {
		path += "?is_active=true"
	}
	var out []OperationalParameter
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateParameter adds an operational parameter.
func (c *Client) CreateParameter(ctx context.Context, in ParameterCreate) (*OperationalParameter, error) {
	var out OperationalParameter
	if err := c.do(ctx, http.MethodPost, "/operational-parameters/", in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateParameter updates an operational parameter.
func (c *Client) UpdateParameter(ctx context.Context, id int, in ParameterCreate) (*OperationalParameter, error) {
	var out OperationalParameter
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/operational-parameters/%d", id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Reports ---

// ReportFilter narrows the closed-report listing.
type ReportFilter struct {
	Date       string // operational date, YYYY-MM-DD
	Designator string // shift designator (1, 2 or 3)
	Limit      int
	Offset     int
}

// ListReports returns closed shift reports, newest first.
func (c *Client) ListReports(ctx context.Context, f ReportFilter) ([]Report, error) {
	q := url.Values{}
	if f.Date != "" {
		q.Set("shift_date", f.Date)
	}
	if f.Designator != "" {
		q.Set("designator", f.Designator)
	}
	if f.Limit > 0 {
		q.Set("limit", fmt.Sprint(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", fmt.Sprint(f.Offset))
	}
	path := "/reports/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []Report
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReport returns one closed report with its logs.
func (c *Client) GetReport(ctx context.Context, id int) (*Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reports/%d", id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
