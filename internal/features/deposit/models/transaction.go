package models

import "time"

// Transaction kinds recorded in the ledger.
const (
	KindEarn   = "earn"
	KindRedeem = "redeem"
)

// Transaction is one immutable ledger entry. Rows are append-only and never
// updated or deleted.
type Transaction struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Kind       string    `json:"type"`
	Points     int64     `json:"points"`
	Bottles    int64     `json:"bottles"`
	MachineID  *string   `json:"machine_id,omitempty"`
	BrandID    *int64    `json:"brand_id,omitempty"`
	DepositKey *string   `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// DepositInput is a validated bottle-insertion request from a vending
// machine.
type DepositInput struct {
	MachineID       string
	UserID          string
	BottleCount     int64
	PointsPerBottle int64

	// DepositKey is the optional caller-supplied idempotency token. A retried
	// request carrying the same key returns the original result instead of
	// crediting twice.
	DepositKey string
}

// DepositResult is the post-commit snapshot returned to the machine, read
// from the same transaction that applied the deposit.
type DepositResult struct {
	EarnedPoints          int64 `json:"earned_points"`
	BottlesAdded          int64 `json:"bottles_added"`
	UserTotalPoints       int64 `json:"user_total_points"`
	UserTotalBottles      int64 `json:"user_total_bottles"`
	MachineCurrentBottles int64 `json:"machine_current_bottles"`
	MachineAvailableSpace int64 `json:"machine_available_space"`
	MachineIsFull         bool  `json:"machine_is_full"`
	Duplicate             bool  `json:"duplicate,omitempty"`
}
