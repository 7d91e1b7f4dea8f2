package service

import (
	"context"
	"sort"

	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/state"
	"veredapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CatalogService edits the menu. Prices already copied into order lines are
// never touched by an edit here.
type CatalogService interface {
	ListDishes(ctx context.Context, categoryID string) []model.Dish
	GetDish(ctx context.Context, id string) (*model.Dish, error)
	CreateDish(ctx context.Context, req dto.CreateDishRequest) (*model.Dish, error)
	UpdateDish(ctx context.Context, id string, req dto.UpdateDishRequest) (*model.Dish, error)
	ToggleDishVisibility(ctx context.Context, id string) (*model.Dish, error)
	ToggleDishFeatured(ctx context.Context, id string) (*model.Dish, error)
	DeleteDish(ctx context.Context, id string) error

	ListCategories(ctx context.Context) []model.Category
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, req dto.UpdateCategoryRequest) (*model.Category, error)
	ToggleCategoryVisibility(ctx context.Context, id string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	PublicMenu(ctx context.Context) (*model.PublicMenu, error)
}

type catalogService struct {
	store    *state.Store
	notifier notify.Notifier
	jobs     JobDispatcher
	cache    MenuCache
}

// NewCatalogService accepts a nil jobs or cache; the menu is then built on
// every request and nothing is mirrored.
func NewCatalogService(store *state.Store, n notify.Notifier, jobs JobDispatcher, cache MenuCache) CatalogService {
	return &catalogService{store: store, notifier: n, jobs: jobs, cache: cache}
}

// ── Dishes ────────────────────────────────────────────────────────────────────

func (s *catalogService) ListDishes(_ context.Context, categoryID string) []model.Dish {
	st := s.store.Current()
	out := make([]model.Dish, 0, len(st.Menu))
	for _, d := range st.Menu {
		if categoryID == "" || d.CategoryID == categoryID {
			out = append(out, d)
		}
	}
	return out
}

func (s *catalogService) GetDish(_ context.Context, id string) (*model.Dish, error) {
	d := s.store.Current().Dish(id)
	if d == nil {
		return nil, ErrDishNotFound
	}
	c := *d
	return &c, nil
}

func (s *catalogService) CreateDish(ctx context.Context, req dto.CreateDishRequest) (*model.Dish, error) {
	if err := checkPrices(req.Price, req.CostPrice); err != nil {
		return nil, err
	}
	visible := true
	if req.IsVisibleDigital != nil {
		visible = *req.IsVisibleDigital
	}

	var created model.Dish
	err := s.store.Mutate(func(st *model.State) error {
		if st.Category(req.CategoryID) == nil {
			return ErrCategoryNotFound
		}
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		} else if st.Dish(id) != nil {
			return ErrDuplicateID
		}
		created = model.Dish{
			ID: id, Name: req.Name, Description: req.Description,
			Price: req.Price, CostPrice: req.CostPrice, CategoryID: req.CategoryID,
			ImageURL: req.ImageURL, IsVisibleDigital: visible, IsFeatured: req.IsFeatured,
		}
		st.Menu = append(st.Menu, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return &created, nil
}

func (s *catalogService) UpdateDish(ctx context.Context, id string, req dto.UpdateDishRequest) (*model.Dish, error) {
	return s.updateDish(ctx, id, func(st *model.State, d *model.Dish) error {
		price, cost := d.Price, d.CostPrice
		if req.Price != nil {
			price = *req.Price
		}
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if err := checkPrices(price, cost); err != nil {
			return err
		}
		if req.CategoryID != nil {
			if st.Category(*req.CategoryID) == nil {
				return ErrCategoryNotFound
			}
			d.CategoryID = *req.CategoryID
		}
		if req.Name != nil {
			d.Name = *req.Name
		}
		if req.Description != nil {
			d.Description = *req.Description
		}
		if req.ImageURL != nil {
			d.ImageURL = *req.ImageURL
		}
		d.Price, d.CostPrice = price, cost
		return nil
	})
}

func (s *catalogService) ToggleDishVisibility(ctx context.Context, id string) (*model.Dish, error) {
	return s.updateDish(ctx, id, func(_ *model.State, d *model.Dish) error {
		d.IsVisibleDigital = !d.IsVisibleDigital
		return nil
	})
}

func (s *catalogService) ToggleDishFeatured(ctx context.Context, id string) (*model.Dish, error) {
	return s.updateDish(ctx, id, func(_ *model.State, d *model.Dish) error {
		d.IsFeatured = !d.IsFeatured
		return nil
	})
}

func (s *catalogService) updateDish(ctx context.Context, id string, fn func(st *model.State, d *model.Dish) error) (*model.Dish, error) {
	var result model.Dish
	err := s.store.Mutate(func(st *model.State) error {
		d := st.Dish(id)
		if d == nil {
			return ErrDishNotFound
		}
		if err := fn(st, d); err != nil {
			return err
		}
		result = *d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return &result, nil
}

// DeleteDish removes the dish from the menu. Order lines carry their own
// price, cost and tax, so totals of past orders are unaffected.
func (s *catalogService) DeleteDish(ctx context.Context, id string) error {
	err := s.store.Mutate(func(st *model.State) error {
		if st.Dish(id) == nil {
			return ErrDishNotFound
		}
		kept := st.Menu[:0]
		for _, d := range st.Menu {
			if d.ID != id {
				kept = append(kept, d)
			}
		}
		st.Menu = kept
		return nil
	})
	if err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// ── Categories ────────────────────────────────────────────────────────────────

func (s *catalogService) ListCategories(_ context.Context) []model.Category {
	return append([]model.Category(nil), s.store.Current().Categories...)
}

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*model.Category, error) {
	visible := true
	if req.IsVisibleDigital != nil {
		visible = *req.IsVisibleDigital
	}
	var created model.Category
	err := s.store.Mutate(func(st *model.State) error {
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		} else if st.Category(id) != nil {
			return ErrDuplicateID
		}
		created = model.Category{ID: id, Name: req.Name, Icon: req.Icon, IsVisibleDigital: visible}
		st.Categories = append(st.Categories, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return &created, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, req dto.UpdateCategoryRequest) (*model.Category, error) {
	return s.updateCategory(ctx, id, func(c *model.Category) {
		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.Icon != nil {
			c.Icon = *req.Icon
		}
	})
}

func (s *catalogService) ToggleCategoryVisibility(ctx context.Context, id string) (*model.Category, error) {
	return s.updateCategory(ctx, id, func(c *model.Category) { c.IsVisibleDigital = !c.IsVisibleDigital })
}

func (s *catalogService) updateCategory(ctx context.Context, id string, fn func(c *model.Category)) (*model.Category, error) {
	var result model.Category
	err := s.store.Mutate(func(st *model.State) error {
		c := st.Category(id)
		if c == nil {
			return ErrCategoryNotFound
		}
		fn(c)
		result = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return &result, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	err := s.store.Mutate(func(st *model.State) error {
		if st.Category(id) == nil {
			return ErrCategoryNotFound
		}
		for _, d := range st.Menu {
			if d.CategoryID == id {
				return ErrCategoryInUse
			}
		}
		kept := st.Categories[:0]
		for _, c := range st.Categories {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		st.Categories = kept
		return nil
	})
	if err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// ── Digital menu ──────────────────────────────────────────────────────────────

// PublicMenu lists the visible dishes of visible categories, featured dishes
// first. Cache errors fall through to a fresh build.
func (s *catalogService) PublicMenu(ctx context.Context) (*model.PublicMenu, error) {
	if s.cache != nil {
		m, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("catalog: menu cache read failed")
		} else if m != nil {
			return m, nil
		}
	}

	m := BuildPublicMenu(s.store.Current())
	if s.cache != nil {
		if err := s.cache.Set(ctx, m); err != nil {
			log.Warn().Err(err).Msg("catalog: menu cache write failed")
		}
	}
	return m, nil
}

// BuildPublicMenu derives the guest-facing menu from a state snapshot.
func BuildPublicMenu(st *model.State) *model.PublicMenu {
	m := &model.PublicMenu{
		RestaurantName: st.Settings.RestaurantName,
		Currency:       st.Settings.Currency,
		LogoURL:        st.Settings.AppLogoURL,
		Categories:     []model.Category{},
		Dishes:         []model.Dish{},
	}
	visible := make(map[string]bool, len(st.Categories))
	for _, c := range st.Categories {
		if c.IsVisibleDigital {
			visible[c.ID] = true
			m.Categories = append(m.Categories, c)
		}
	}
	for _, d := range st.Menu {
		if d.IsVisibleDigital && visible[d.CategoryID] {
			m.Dishes = append(m.Dishes, d)
		}
	}
	sort.SliceStable(m.Dishes, func(i, j int) bool {
		return m.Dishes[i].IsFeatured && !m.Dishes[j].IsFeatured
	})
	return m
}

// changed drops the cached menu and mirrors the catalog.
func (s *catalogService) changed(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("catalog: menu cache invalidation failed")
		}
	}
	if s.jobs != nil {
		dispatch(s.notifier, "a sincronizacao do menu", func() error {
			return s.jobs.EnqueueSync(ctx, worker.SyncJobPayload{Kind: worker.SyncCatalog})
		})
	}
}

func checkPrices(price, cost decimal.Decimal) error {
	if price.IsNegative() || cost.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
