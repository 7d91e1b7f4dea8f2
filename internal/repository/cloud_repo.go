package repository

import (
	"context"
	"time"

	"veredapos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CloudRepository pushes rows to the PostgreSQL mirror. Every write is an
// upsert keyed by the local ID, so replaying a sync job is harmless.
type CloudRepository interface {
	UpsertSales(ctx context.Context, rows []model.CloudSale) error
	UpsertCustomers(ctx context.Context, rows []model.CloudCustomer) error
	UpsertCatalog(ctx context.Context, cats []model.CloudCategory, dishes []model.CloudDish) error
	LogSync(ctx context.Context, kind string, rows int) error
	Ping(ctx context.Context) error
}

type cloudRepo struct{ db *gorm.DB }

func NewCloudRepository(db *gorm.DB) CloudRepository { return &cloudRepo{db: db} }

func (r *cloudRepo) UpsertSales(ctx context.Context, rows []model.CloudSale) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		CreateInBatches(&rows, 200).Error
}

func (r *cloudRepo) UpsertCustomers(ctx context.Context, rows []model.CloudCustomer) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		CreateInBatches(&rows, 200).Error
}

// UpsertCatalog writes categories and dishes in one transaction so the remote
// menu never references a category that is not there yet.
func (r *cloudRepo) UpsertCatalog(ctx context.Context, cats []model.CloudCategory, dishes []model.CloudDish) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}
		if len(cats) > 0 {
			if err := tx.Clauses(upsert).CreateInBatches(&cats, 200).Error; err != nil {
				return err
			}
		}
		if len(dishes) > 0 {
			if err := tx.Clauses(upsert).CreateInBatches(&dishes, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *cloudRepo) LogSync(ctx context.Context, kind string, rows int) error {
	entry := model.SyncLog{Kind: kind, Rows: rows, CreatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *cloudRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
