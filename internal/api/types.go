package api

import "time"

// User roles.
const (
	RoleOpsManager          = "OPS_MANAGER"
	RoleShiftSuperintendent = "SHIFT_SUPERINTENDENT"
)

// Equipment statuses.
const (
	EquipmentInService    = "IN_SERVICE"
	EquipmentAvailable    = "AVAILABLE"
	EquipmentOutOfService = "OUT_OF_SERVICE"
)

// EmployeeTypes lists the valid employee contract types.
var EmployeeTypes = []string{"PERMANENT", "TEMPORARY"}

// EquipmentStatuses lists the valid equipment statuses in display order.
var EquipmentStatuses = []string{EquipmentInService, EquipmentAvailable, EquipmentOutOfService}

// Event types.
var EventTypes = []string{
	"PROTECTION_TRIP",
	"FORCED_OUTAGE",
	"LOAD_REDUCTION",
	"UNIT_SYNCHRONIZATION",
	"UNIT_SHUTDOWN",
	"ROUTINE_TEST",
	"OTHER",
}

// Novelty types.
var NoveltyTypes = []string{
	"GENERAL",
	"SPECIAL_INSTRUCTION",
	"SAFETY_INCIDENT",
	"ENVIRONMENTAL_INCIDENT",
}

// Maintenance ticket types and statuses.
const (
	TicketFaultReport        = "FAULT_REPORT"
	TicketPlannedMaintenance = "PLANNED_MAINTENANCE"

	TicketOpen       = "OPEN"
	TicketInProgress = "IN_PROGRESS"
	TicketCompleted  = "COMPLETED"
)

// TicketTypes lists the valid ticket types.
var TicketTypes = []string{TicketFaultReport, TicketPlannedMaintenance}

// License statuses.
const (
	LicenseActive = "ACTIVE"
	LicenseClosed = "CLOSED"
)

// Attendance statuses.
var AttendanceStatuses = []string{
	"Present",
	"Absent",
	"Permission",
	"Vacation",
	"Medical Leave",
}

// TokenResponse is the payload of POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated user profile from GET /users/me.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	RPE      string `json:"rpe"`
	Role     string `json:"role"`
}

// Equipment is a catalog entry for a plant equipment unit.
type Equipment struct {
	ID                   int     `json:"id"`
	Name                 string  `json:"name"`
	Location             *string `json:"location"`
	Status               string  `json:"status"`
	UnavailabilityReason *string `json:"unavailability_reason"`
}

// EquipmentCreate is the create/update payload for equipment.
type EquipmentCreate struct {
	Name                 string  `json:"name"`
	Location             *string `json:"location,omitempty"`
	Status               string  `json:"status,omitempty"`
	UnavailabilityReason *string `json:"unavailability_reason,omitempty"`
}

// Position is a job position in the personnel catalog.
type Position struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// PositionCreate is the create payload for a position.
type PositionCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Employee is a plant employee record.
type Employee struct {
	ID             int       `json:"id"`
	FullName       string    `json:"full_name"`
	RPE            string    `json:"rpe"`
	EmployeeType   string    `json:"employee_type"`
	BasePositionID *int      `json:"base_position_id"`
	BasePosition   *Position `json:"base_position,omitempty"`
}

// EmployeeCreate is the create payload for an employee.
type EmployeeCreate struct {
	FullName       string `json:"full_name"`
	RPE            string `json:"rpe"`
	EmployeeType   string `json:"employee_type"`
	BasePositionID *int   `json:"base_position_id,omitempty"`
}

// ShiftGroup is a shift work group with its member roster.
type ShiftGroup struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Members []Employee `json:"members,omitempty"`
}

// Tank is a resource tank (fuel, water).
type Tank struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	ResourceType   string  `json:"resource_type"`
	CapacityLiters float64 `json:"capacity_liters"`
}

// TankCreate is the create/update payload for a resource tank.
type TankCreate struct {
	Name           string  `json:"name"`
	ResourceType   string  `json:"resource_type"`
	CapacityLiters float64 `json:"capacity_liters"`
}

// License is a CENACE work license.
type License struct {
	ID            int        `json:"id"`
	LicenseNumber string     `json:"license_number"`
	AffectedUnit  string     `json:"affected_unit"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
}

// LicenseCreate is the create payload for a license.
type LicenseCreate struct {
	LicenseNumber string    `json:"license_number"`
	AffectedUnit  string    `json:"affected_unit"`
	Description   string    `json:"description"`
	StartTime     time.Time `json:"start_time"`
}

// MaintenanceTicket is a defect or planned-maintenance ticket.
type MaintenanceTicket struct {
	ID              int        `json:"id"`
	Description     string     `json:"description"`
	Impact          *string    `json:"impact"`
	TicketType      string     `json:"ticket_type"`
	TicketStatus    string     `json:"ticket_status"`
	EquipmentID     int        `json:"equipment_id"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedByUserID int        `json:"created_by_user_id"`
}

// TicketCreate is the create payload for a maintenance ticket.
type TicketCreate struct {
	Description string  `json:"description"`
	Impact      *string `json:"impact,omitempty"`
	TicketType  string  `json:"ticket_type"`
	EquipmentID int     `json:"equipment_id"`
}

// TicketUpdate is the partial-update payload for a maintenance ticket.
type TicketUpdate struct {
	TicketStatus *string `json:"ticket_status,omitempty"`
	Description  *string `json:"description,omitempty"`
	Impact       *string `json:"impact,omitempty"`
}

// ScheduledTask is a recurring task in the shift routine.
type ScheduledTask struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	IsActive    bool    `json:"is_active"`
}

// ScheduledTaskCreate is the create/update payload for a scheduled task.
type ScheduledTaskCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category"`
	IsActive    bool    `json:"is_active"`
}

// OperationalParameter is a measurable operating parameter.
type OperationalParameter struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Description *string `json:"description"`
	IsActive    bool    `json:"is_active"`
}

// ParameterCreate is the create/update payload for an operational parameter.
type ParameterCreate struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// EventLog is an operational event recorded during a shift.
type EventLog struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	ShiftID     int       `json:"shift_id"`
}

// EventLogCreate is the create payload for an event log.
type EventLogCreate struct {
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// NoveltyLog is a novelty or instruction recorded during a shift.
type NoveltyLog struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	NoveltyType string    `json:"novelty_type"`
	Description string    `json:"description"`
	UserID      int       `json:"user_id"`
	User        *User     `json:"user,omitempty"`
}

// NoveltyLogCreate is the create payload for a novelty log.
type NoveltyLogCreate struct {
	NoveltyType string `json:"novelty_type"`
	Description string `json:"description"`
}

// StatusLog is an equipment status change recorded during a shift.
type StatusLog struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Reason      *string   `json:"reason"`
	ShiftID     int       `json:"shift_id"`
	EquipmentID int       `json:"equipment_id"`
}

// StatusLogCreate is the create payload for an equipment status log.
type StatusLogCreate struct {
	EquipmentID int       `json:"equipment_id"`
	Status      string    `json:"status"`
	Reason      *string   `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// TaskLog records a scheduled task completed during a shift.
type TaskLog struct {
	ID              int            `json:"id"`
	CompletionTime  time.Time      `json:"completion_time"`
	Notes           *string        `json:"notes"`
	ShiftID         int            `json:"shift_id"`
	UserID          int            `json:"user_id"`
	ScheduledTaskID int            `json:"scheduled_task_id"`
	User            *User          `json:"user,omitempty"`
	ScheduledTask   *ScheduledTask `json:"scheduled_task,omitempty"`
}

// TaskLogCreate is the create payload for a task log.
type TaskLogCreate struct {
	ScheduledTaskID int       `json:"scheduled_task_id"`
	CompletionTime  time.Time `json:"completion_time"`
	Notes           *string   `json:"notes,omitempty"`
}

// TankReading is a tank level reading recorded during a shift.
type TankReading struct {
	ID               int       `json:"id"`
	LevelLiters      float64   `json:"level_liters"`
	ReadingTimestamp time.Time `json:"reading_timestamp"`
	TankID           int       `json:"tank_id"`
	ShiftID          int       `json:"shift_id"`
	UserID           int       `json:"user_id"`
}

// TankReadingCreate is the create payload for a tank reading.
type TankReadingCreate struct {
	TankID           int       `json:"tank_id"`
	LevelLiters      float64   `json:"level_liters"`
	ReadingTimestamp time.Time `json:"reading_timestamp"`
}

// OperationalReading is a parameter reading recorded during a shift.
type OperationalReading struct {
	ID          int                   `json:"id"`
	Value       float64               `json:"value"`
	Timestamp   time.Time             `json:"timestamp"`
	ParameterID int                   `json:"parameter_id"`
	EquipmentID int                   `json:"equipment_id"`
	ShiftID     int                   `json:"shift_id"`
	UserID      int                   `json:"user_id"`
	Parameter   *OperationalParameter `json:"parameter,omitempty"`
	Equipment   *Equipment            `json:"equipment,omitempty"`
}

// ReadingCreate is the create payload for an operational reading.
type ReadingCreate struct {
	ParameterID int       `json:"parameter_id"`
	EquipmentID int       `json:"equipment_id"`
	Value       float64   `json:"value"`
	Timestamp   time.Time `json:"timestamp"`
}

// GenerationRamp is a CENACE generation ramp self-assessment record.
type GenerationRamp struct {
	ID                  int       `json:"id"`
	CenaceOperatorName  string    `json:"cenace_operator_name"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	IsCompliant         bool      `json:"is_compliant"`
	NonComplianceReason *string   `json:"non_compliance_reason"`
	InitialLoadMW       float64   `json:"initial_load_mw"`
	FinalLoadMW         float64   `json:"final_load_mw"`
	TargetRampRateMWMin float64   `json:"target_ramp_rate_mw_per_minute"`
	UserID              int       `json:"user_id"`
}

// RampCreate is the create payload for a generation ramp.
type RampCreate struct {
	CenaceOperatorName  string    `json:"cenace_operator_name"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	InitialLoadMW       float64   `json:"initial_load_mw"`
	FinalLoadMW         float64   `json:"final_load_mw"`
	TargetRampRateMWMin float64   `json:"target_ramp_rate_mw_per_minute"`
	NonComplianceReason *string   `json:"non_compliance_reason"`
}

// AttendanceRecord is a per-position attendance row for a shift.
type AttendanceRecord struct {
	ID                int      `json:"id"`
	AttendanceStatus  string   `json:"attendance_status"`
	ShiftID           int      `json:"shift_id"`
	Position          Position `json:"position"`
	ScheduledEmployee Employee `json:"scheduled_employee"`
	ActualEmployee    Employee `json:"actual_employee"`
}

// AttendanceUpdate is the partial-update payload for an attendance record.
type AttendanceUpdate struct {
	AttendanceStatus *string `json:"attendance_status,omitempty"`
	ActualEmployeeID *int    `json:"actual_employee_id,omitempty"`
}

// Shift is the active shift aggregate returned by GET /shifts/active/me.
type Shift struct {
	ID                       int                  `json:"id"`
	StartTime                time.Time            `json:"start_time"`
	EndTime                  *time.Time           `json:"end_time"`
	Status                   string               `json:"status"`
	OutgoingSuperintendentID *int                 `json:"outgoing_superintendent_id"`
	IncomingSuperintendentID *int                 `json:"incoming_superintendent_id"`
	ScheduledGroupID         *int                 `json:"scheduled_group_id"`
	ScheduledGroup           *ShiftGroup          `json:"scheduled_group,omitempty"`
	StatusLogs               []StatusLog          `json:"status_logs"`
	EventLogs                []EventLog           `json:"event_logs"`
	TaskLogs                 []TaskLog            `json:"task_logs"`
	NoveltyLogs              []NoveltyLog         `json:"novelty_logs"`
	GenerationRamps          []GenerationRamp     `json:"generation_ramps"`
	OperationalReadings      []OperationalReading `json:"operational_readings"`
}

// Report is a closed shift in the report archive. List responses carry
// only the shift header; GET /reports/{id} includes the logs.
type Report struct {
	ID              int          `json:"id"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         *time.Time   `json:"end_time"`
	Status          string       `json:"status"`
	ShiftDate       string       `json:"shift_date,omitempty"`
	ShiftDesignator string       `json:"shift_designator,omitempty"`
	ScheduledGroup  *ShiftGroup  `json:"scheduled_group,omitempty"`
	EventLogs       []EventLog   `json:"event_logs,omitempty"`
	NoveltyLogs     []NoveltyLog `json:"novelty_logs,omitempty"`
	TaskLogs        []TaskLog    `json:"task_logs,omitempty"`
}

// HandoverRequest is the two-party credential bundle for POST /shifts/handover.
type HandoverRequest struct {
	ShiftToCloseID                 int    `json:"shift_to_close_id"`
	OutgoingSuperintendentPassword string `json:"outgoing_superintendent_password"`
	IncomingSuperintendentUsername string `json:"incoming_superintendent_username"`
	IncomingSuperintendentPassword string `json:"incoming_superintendent_password"`
	NextScheduledGroupID           int    `json:"next_scheduled_group_id"`
}

// AssignGroupRequest is the payload for POST /shifts/{id}/assign-group.
type AssignGroupRequest struct {
	GroupID int `json:"group_id"`
}
