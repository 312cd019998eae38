package models

import "fmt"

// TableStatus is the availability of a table. Available, Reserved and
// Occupied come from the availability source; Selected is only ever a
// client-side overlay.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableReserved  TableStatus = "reserved"
	TableOccupied  TableStatus = "occupied"
	TableSelected  TableStatus = "selected"
)

// IsBase reports whether s is a status an availability source may report
func (s TableStatus) IsBase() bool {
	switch s {
	case TableAvailable, TableReserved, TableOccupied:
		return true
	}
	return false
}

// ParseTableStatus validates a base status read from an external source
func ParseTableStatus(s string) (TableStatus, error) {
	status := TableStatus(s)
	if !status.IsBase() {
		return "", fmt.Errorf("unknown table status %q", s)
	}
	return status, nil
}

// Table is a physical seating unit
type Table struct {
	ID     string      `json:"id" yaml:"id"`
	Number int         `json:"number" yaml:"number"`
	Seats  int         `json:"seats" yaml:"seats"`
	Status TableStatus `json:"status" yaml:"status"`
}

// TableView is a table as shown to the user, with the selection overlay applied
type TableView struct {
	Table
	Selected bool `json:"selected"`
}

// DisplayStatus returns Selected for the selected table and the base status otherwise
func (v TableView) DisplayStatus() TableStatus {
	if v.Selected {
		return TableSelected
	}
	return v.Status
}
