package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/state"
	"veredapos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerService keeps the customer file and settles deferred-payment debt.
// Balances grow only through checkout and the post-close amendments.
type CustomerService interface {
	List(ctx context.Context, query string) []model.Customer
	Get(ctx context.Context, id string) (*model.Customer, error)
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error)
	Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error)
	Delete(ctx context.Context, id string) error
	SettleDebt(ctx context.Context, id string, amount decimal.Decimal) (*model.Customer, error)
	// Orders returns the closed orders attributed to the customer.
	Orders(ctx context.Context, id string) ([]model.Order, error)
}

type customerService struct {
	store    *state.Store
	notifier notify.Notifier
	jobs     JobDispatcher
}

func NewCustomerService(store *state.Store, n notify.Notifier, jobs JobDispatcher) CustomerService {
	return &customerService{store: store, notifier: n, jobs: jobs}
}

// List filters by name or NIF, case-insensitively.
func (s *customerService) List(_ context.Context, query string) []model.Customer {
	st := s.store.Current()
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Customer, 0, len(st.Customers))
	for _, c := range st.Customers {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(c.NIF, q) {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *customerService) Get(_ context.Context, id string) (*model.Customer, error) {
	c := s.store.Current().Customer(id)
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	cl := c.Clone()
	return &cl, nil
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error) {
	created := model.Customer{
		ID:      uuid.NewString(),
		Name:    req.Name,
		NIF:     req.NIF,
		Email:   copyString(req.Email),
		Phone:   copyString(req.Phone),
		Balance: decimal.Zero,
	}
	err := s.store.Mutate(func(st *model.State) error {
		st.Customers = append(st.Customers, created.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.sync(ctx, created.ID)
	return &created, nil
}

func (s *customerService) Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error) {
	return s.update(ctx, id, func(c *model.Customer) error {
		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.NIF != nil {
			c.NIF = *req.NIF
		}
		if req.Email != nil {
			c.Email = copyString(req.Email)
		}
		if req.Phone != nil {
			c.Phone = copyString(req.Phone)
		}
		return nil
	})
}

// SettleDebt records a payment against the balance, floored at zero.
func (s *customerService) SettleDebt(ctx context.Context, id string, amount decimal.Decimal) (*model.Customer, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	c, err := s.update(ctx, id, func(c *model.Customer) error {
		c.Debit(amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.Success, fmt.Sprintf("Pagamento registado: %s", c.Name))
	return c, nil
}

func (s *customerService) update(ctx context.Context, id string, fn func(c *model.Customer) error) (*model.Customer, error) {
	var result model.Customer
	err := s.store.Mutate(func(st *model.State) error {
		c := st.Customer(id)
		if c == nil {
			return ErrCustomerNotFound
		}
		if err := fn(c); err != nil {
			return err
		}
		result = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.sync(ctx, id)
	return &result, nil
}

// Delete refuses customers that still owe money; their closed orders keep
// the customer id either way.
func (s *customerService) Delete(_ context.Context, id string) error {
	return s.store.Mutate(func(st *model.State) error {
		c := st.Customer(id)
		if c == nil {
			return ErrCustomerNotFound
		}
		if c.Balance.IsPositive() {
			return ErrCustomerHasDebt
		}
		kept := st.Customers[:0]
		for _, cu := range st.Customers {
			if cu.ID != id {
				kept = append(kept, cu)
			}
		}
		st.Customers = kept
		return nil
	})
}

func (s *customerService) Orders(_ context.Context, id string) ([]model.Order, error) {
	st := s.store.Current()
	if st.Customer(id) == nil {
		return nil, ErrCustomerNotFound
	}
	var out []model.Order
	for _, o := range st.Orders {
		if o.Status == model.OrderClosed && o.CustomerID != nil && *o.CustomerID == id {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (s *customerService) sync(ctx context.Context, id string) {
	if s.jobs == nil {
		return
	}
	dispatch(s.notifier, "a sincronizacao do cliente", func() error {
		return s.jobs.EnqueueSync(ctx, worker.SyncJobPayload{Kind: worker.SyncCustomer, CustomerID: id})
	})
}
