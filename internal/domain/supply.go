package domain

import "time"

type MovementKind string

const (
	MovementPullout MovementKind = "pullout"
	MovementRestock MovementKind = "restock"
)

// Supply is a consumable item (shampoo, wax, towels) tracked by stock count.
type Supply struct {
	ID    int64
	Name  string
	Unit  string
	Stock int
}

// SupplyMovement records one applied stock delta.
type SupplyMovement struct {
	ID       int64
	SupplyID int64
	Quantity int
	Kind     MovementKind
	MovedAt  time.Time
}
