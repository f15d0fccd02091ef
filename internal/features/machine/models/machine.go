package models

import "time"

// Machine is one physical reverse-vending machine. CurrentBottles is bounded
// by MaxCapacity after every reconciler operation; TotalBottles is the
// lifetime counter and never decreases, not even when the machine is emptied.
type Machine struct {
	ID             string     `json:"machine_id"`
	Name           string     `json:"name"`
	City           string     `json:"city"`
	Lat            *float64   `json:"lat"`
	Lng            *float64   `json:"lng"`
	CurrentBottles int64      `json:"current_bottles"`
	MaxCapacity    int64      `json:"max_capacity"`
	TotalBottles   int64      `json:"total_bottles"`
	IsFull         bool       `json:"is_full"`
	LastEmptied    *time.Time `json:"last_emptied"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AvailableSpace is the number of bottles the machine can still accept.
func (m *Machine) AvailableSpace() int64 {
	return m.MaxCapacity - m.CurrentBottles
}

// FillPercentage is the fill level as a percentage of capacity.
func (m *Machine) FillPercentage() float64 {
	if m.MaxCapacity == 0 {
		return 0
	}
	return float64(m.CurrentBottles) / float64(m.MaxCapacity) * 100
}

// EmptyReport is returned when a machine is emptied: the pre-reset fill level
// is what the collection crew physically removed.
type EmptyReport struct {
	MachineID        string `json:"machine_id"`
	Name             string `json:"name"`
	BottlesCollected int64  `json:"bottles_collected"`
}
