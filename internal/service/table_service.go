package service

import (
	"context"
	"sort"

	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/state"
)

// TableService manages the floor plan. Occupancy is never written here; it
// is derived from the open orders on every transition that moves them.
type TableService interface {
	List(ctx context.Context) []model.Table
	Get(ctx context.Context, id int) (*model.Table, error)
	Create(ctx context.Context, req dto.CreateTableRequest) (*model.Table, error)
	Update(ctx context.Context, id int, req dto.UpdateTableRequest) (*model.Table, error)
	Move(ctx context.Context, id int, x, y float64) (*model.Table, error)
	Delete(ctx context.Context, id int) error
}

type tableService struct {
	store *state.Store
}

func NewTableService(store *state.Store) TableService {
	return &tableService{store: store}
}

func (s *tableService) List(_ context.Context) []model.Table {
	st := s.store.Current()
	out := append([]model.Table(nil), st.Tables...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *tableService) Get(_ context.Context, id int) (*model.Table, error) {
	t := s.store.Current().Table(id)
	if t == nil {
		return nil, ErrTableNotFound
	}
	c := *t
	return &c, nil
}

func (s *tableService) Create(_ context.Context, req dto.CreateTableRequest) (*model.Table, error) {
	zone := req.Zone
	if zone == "" {
		zone = model.ZoneInterior
	}
	if !zone.Valid() {
		return nil, ErrInvalidZone
	}
	seats := req.Seats
	if seats == 0 {
		seats = 4
	}

	var created model.Table
	err := s.store.Mutate(func(st *model.State) error {
		id := req.ID
		if id == 0 {
			id = nextTableID(st)
		} else if st.Table(id) != nil {
			return ErrDuplicateID
		}
		st.Tables = append(st.Tables, model.Table{
			ID: id, Name: req.Name, Zone: zone, Seats: seats, X: req.X, Y: req.Y,
		})
		// an order may already point at this number
		st.RefreshTableStatus(id)
		created = *st.Table(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *tableService) Update(_ context.Context, id int, req dto.UpdateTableRequest) (*model.Table, error) {
	if req.Zone != nil && !req.Zone.Valid() {
		return nil, ErrInvalidZone
	}
	return s.update(id, func(t *model.Table) {
		if req.Name != nil {
			t.Name = *req.Name
		}
		if req.Zone != nil {
			t.Zone = *req.Zone
		}
		if req.Seats != nil {
			t.Seats = *req.Seats
		}
	})
}

// Move stores the floor-plan position set in the layout designer.
func (s *tableService) Move(_ context.Context, id int, x, y float64) (*model.Table, error) {
	return s.update(id, func(t *model.Table) { t.X, t.Y = x, y })
}

func (s *tableService) update(id int, fn func(t *model.Table)) (*model.Table, error) {
	var result model.Table
	err := s.store.Mutate(func(st *model.State) error {
		t := st.Table(id)
		if t == nil {
			return ErrTableNotFound
		}
		fn(t)
		result = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *tableService) Delete(_ context.Context, id int) error {
	return s.store.Mutate(func(st *model.State) error {
		if st.Table(id) == nil {
			return ErrTableNotFound
		}
		if len(st.OpenOrdersOn(id)) > 0 {
			return ErrTableOccupied
		}
		kept := st.Tables[:0]
		for _, t := range st.Tables {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		st.Tables = kept
		if st.ActiveTableID != nil && *st.ActiveTableID == id {
			st.ActiveTableID = nil
		}
		return nil
	})
}

func nextTableID(st *model.State) int {
	max := 0
	for _, t := range st.Tables {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}
