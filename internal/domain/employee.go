package domain

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusAbsent   EmployeeStatus = "absent"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

type AssignedStatus string

const (
	AssignedStatusAvailable AssignedStatus = "available"
	AssignedStatusAssigned  AssignedStatus = "assigned"
	AssignedStatusOnLeave   AssignedStatus = "on_leave"
)

// Employee is a crew member. Employment status and day-to-day assignment
// are tracked separately: an active employee may still be assigned to a
// bay and therefore not free for new orders.
type Employee struct {
	ID             int64
	Name           string
	Status         EmployeeStatus
	AssignedStatus AssignedStatus
}

// Eligible reports whether the employee can take a new order.
func (e Employee) Eligible() bool {
	return e.Status == EmployeeStatusActive && e.AssignedStatus == AssignedStatusAvailable
}
