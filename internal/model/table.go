package model

type TableStatus string

const (
	TableFree     TableStatus = "LIVRE"
	TableOccupied TableStatus = "OCUPADO"
)

type Zone string

const (
	ZoneInterior Zone = "INTERIOR"
	ZoneExterior Zone = "EXTERIOR"
	ZoneCounter  Zone = "BALCAO"
)

func (z Zone) Valid() bool {
	return z == ZoneInterior || z == ZoneExterior || z == ZoneCounter
}

// Table is a physical table on the floor plan. Status is derived from the
// open orders referencing it and is never set directly by callers.
type Table struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Zone   Zone        `json:"zone"`
	Seats  int         `json:"seats"`
	Status TableStatus `json:"status"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
}
