package model

import "time"

// SchemaVersion tags every persisted snapshot. Bump it when the shape of
// State changes incompatibly.
const SchemaVersion = 8

// SeriesLedger is the numbering state of one invoice series.
type SeriesLedger struct {
	// Next is the counter the next checkout will use; it starts at 1 and
	// only ever grows.
	Next int64 `json:"next"`
	// LastHash is the closure hash of the most recent invoice in the series.
	LastHash string `json:"lastHash,omitempty"`
}

// State is the whole application snapshot owned by the store. Every
// mutation produces a new State; a committed State is never modified again.
type State struct {
	Settings      Settings                `json:"settings"`
	Users         []User                  `json:"users"`
	Tables        []Table                 `json:"tables"`
	Categories    []Category              `json:"categories"`
	Menu          []Dish                  `json:"menu"`
	Orders        []Order                 `json:"activeOrders"`
	Customers     []Customer              `json:"customers"`
	ActiveTableID *int                    `json:"activeTableId"`
	ActiveOrderID *string                 `json:"activeOrderId"`
	Ledger        map[string]SeriesLedger `json:"ledger"`

	// LegacyInvoiceCounter is the single next-invoice counter of exports
	// made before per-series ledgers. It is folded into Ledger on load.
	LegacyInvoiceCounter int64 `json:"invoiceCounter,omitempty"`
}

// Snapshot is the persisted envelope around State.
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	State   *State    `json:"state"`
}

// NewState returns the empty state of a fresh installation.
func NewState(settings Settings) *State {
	return &State{
		Settings: settings,
		Ledger:   map[string]SeriesLedger{},
	}
}

// ── Lookups ──────────────────────────────────────────────────────────────────
// Each lookup returns a pointer into the receiver so transitions can mutate
// the element in place on their private clone.

func (s *State) Order(id string) *Order {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return &s.Orders[i]
		}
	}
	return nil
}

func (s *State) Table(id int) *Table {
	for i := range s.Tables {
		if s.Tables[i].ID == id {
			return &s.Tables[i]
		}
	}
	return nil
}

func (s *State) Dish(id string) *Dish {
	for i := range s.Menu {
		if s.Menu[i].ID == id {
			return &s.Menu[i]
		}
	}
	return nil
}

func (s *State) Category(id string) *Category {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}

func (s *State) Customer(id string) *Customer {
	for i := range s.Customers {
		if s.Customers[i].ID == id {
			return &s.Customers[i]
		}
	}
	return nil
}

func (s *State) User(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// OpenOrdersOn returns the OPEN orders attached to table id, oldest first.
func (s *State) OpenOrdersOn(id int) []Order {
	var out []Order
	for _, o := range s.Orders {
		if o.IsOpen() && o.OnTable(id) {
			out = append(out, o)
		}
	}
	return out
}

// RefreshTableStatus re-derives occupancy for the given tables, or for every
// table when ids is empty. A table is OCCUPIED iff an OPEN order references it.
func (s *State) RefreshTableStatus(ids ...int) {
	occupied := make(map[int]bool)
	for _, o := range s.Orders {
		if o.IsOpen() && o.TableID != nil {
			occupied[*o.TableID] = true
		}
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i := range s.Tables {
		t := &s.Tables[i]
		if len(ids) > 0 && !want[t.ID] {
			continue
		}
		if occupied[t.ID] {
			t.Status = TableOccupied
		} else {
			t.Status = TableFree
		}
	}
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s *State) Clone() *State {
	c := &State{
		Settings:      s.Settings,
		Tables:        append([]Table(nil), s.Tables...),
		Categories:    append([]Category(nil), s.Categories...),
		Menu:          append([]Dish(nil), s.Menu...),
		ActiveTableID: cloneInt(s.ActiveTableID),
		ActiveOrderID: cloneString(s.ActiveOrderID),
		Ledger:        make(map[string]SeriesLedger, len(s.Ledger)),

		LegacyInvoiceCounter: s.LegacyInvoiceCounter,
	}
	if s.Users != nil {
		c.Users = make([]User, len(s.Users))
		for i, u := range s.Users {
			c.Users[i] = u.Clone()
		}
	}
	if s.Orders != nil {
		c.Orders = make([]Order, len(s.Orders))
		for i, o := range s.Orders {
			c.Orders[i] = o.Clone()
		}
	}
	if s.Customers != nil {
		c.Customers = make([]Customer, len(s.Customers))
		for i, cu := range s.Customers {
			c.Customers[i] = cu.Clone()
		}
	}
	for k, v := range s.Ledger {
		c.Ledger[k] = v
	}
	return c
}
