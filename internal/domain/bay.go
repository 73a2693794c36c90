package domain

type BayStatus string

const (
	BayStatusAvailable   BayStatus = "available"
	BayStatusOccupied    BayStatus = "occupied"
	BayStatusMaintenance BayStatus = "maintenance"
)

// Bay is a physical wash stall, occupied by at most one in-progress order.
type Bay struct {
	ID     int64
	Label  string
	Status BayStatus
}
