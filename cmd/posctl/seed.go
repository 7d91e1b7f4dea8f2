package main

import (
	"errors"
	"fmt"

	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/service"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	seedDemo      bool
	seedTables    int
	seedCustomers int
)

type demoDish struct {
	name     string
	category string
	price    int64
	cost     int64
}

var demoCategories = []dto.CreateCategoryRequest{
	{ID: "cat-pratos", Name: "Pratos", Icon: "utensils"},
	{ID: "cat-petiscos", Name: "Petiscos", Icon: "drumstick"},
	{ID: "cat-bebidas", Name: "Bebidas", Icon: "beer"},
	{ID: "cat-sobremesas", Name: "Sobremesas", Icon: "ice-cream"},
}

var demoDishes = []demoDish{
	{"Muamba de Galinha", "cat-pratos", 6500, 2800},
	{"Calulu de Peixe", "cat-pratos", 7000, 3100},
	{"Mufete", "cat-pratos", 8500, 3900},
	{"Funge com Carne Seca", "cat-pratos", 6000, 2500},
	{"Kizaca com Peixe", "cat-pratos", 5500, 2200},
	{"Ginguba Torrada", "cat-petiscos", 1000, 300},
	{"Chouriço Assado", "cat-petiscos", 3500, 1400},
	{"Bolinhos de Bacalhau", "cat-petiscos", 3000, 1200},
	{"Cuca", "cat-bebidas", 800, 350},
	{"Nocal", "cat-bebidas", 800, 350},
	{"Sumo de Múcua", "cat-bebidas", 1500, 500},
	{"Água 1,5L", "cat-bebidas", 600, 200},
	{"Doce de Ginguba", "cat-sobremesas", 2000, 700},
	{"Mousse de Maracujá", "cat-sobremesas", 2500, 900},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty installation with demo tables, menu and customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !seedDemo {
			return errors.New("nothing to seed: pass --demo")
		}

		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		st := s.store.Current()
		if len(st.Tables) > 0 || len(st.Menu) > 0 || len(st.Orders) > 0 {
			return errors.New("state is not empty, refusing to seed over it")
		}

		fake := faker.New()
		tables := service.NewTableService(s.store)
		catalog := service.NewCatalogService(s.store, notify.Discard{}, nil, nil)
		customers := service.NewCustomerService(s.store, notify.Discard{}, nil)

		zones := []model.Zone{model.ZoneInterior, model.ZoneInterior, model.ZoneExterior, model.ZoneCounter}
		for i := 1; i <= seedTables; i++ {
			zone := zones[fake.IntBetween(0, len(zones)-1)]
			_, err := tables.Create(ctx, dto.CreateTableRequest{
				Name:  fmt.Sprintf("Mesa %d", i),
				Zone:  zone,
				Seats: fake.IntBetween(2, 8),
				X:     float64(((i - 1) % 5) * 120),
				Y:     float64(((i - 1) / 5) * 120),
			})
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
		}

		for _, c := range demoCategories {
			if _, err := catalog.CreateCategory(ctx, c); err != nil {
				return fmt.Errorf("category %s: %w", c.Name, err)
			}
		}
		for _, d := range demoDishes {
			_, err := catalog.CreateDish(ctx, dto.CreateDishRequest{
				Name:        d.name,
				Description: fake.Lorem().Sentence(8),
				Price:       decimal.NewFromInt(d.price),
				CostPrice:   decimal.NewFromInt(d.cost),
				CategoryID:  d.category,
				IsFeatured:  fake.IntBetween(0, 4) == 0,
			})
			if err != nil {
				return fmt.Errorf("dish %s: %w", d.name, err)
			}
		}

		for i := 0; i < seedCustomers; i++ {
			email := fake.Internet().Email()
			phone := fake.Phone().Number()
			_, err := customers.Create(ctx, dto.CreateCustomerRequest{
				Name:  fake.Person().Name(),
				NIF:   fake.Numerify("#########"),
				Email: &email,
				Phone: &phone,
			})
			if err != nil {
				return fmt.Errorf("customer %d: %w", i+1, err)
			}
		}

		if err := s.save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tables, %d dishes, %d customers\n", seedTables, len(demoDishes), seedCustomers)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "generate demo data")
	seedCmd.Flags().IntVar(&seedTables, "tables", 12, "number of tables")
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 8, "number of customers")
}
