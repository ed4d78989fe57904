package repository

import (
	"context"
	"strings"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"

	"gorm.io/gorm"
)

type GoodGormRepository struct {
	db *gorm.DB
}

// DI
func NewGoodGormRepository(db *gorm.DB) *GoodGormRepository {
	return &GoodGormRepository{db: db}
}

func (r *GoodGormRepository) Create(ctx context.Context, g model.Good) (model.Good, error) {
	if err := r.db.WithContext(ctx).Create(&g).Error; err != nil {
		return model.Good{}, mapError(err)
	}
	return g, nil
}

func (r *GoodGormRepository) FindByID(ctx context.Context, id int64) (model.Good, error) {
	var g model.Good
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return model.Good{}, mapError(err)
	}
	return g, nil
}

// 名前は完全一致
func (r *GoodGormRepository) FindByName(ctx context.Context, name string) (model.Good, error) {
	var g model.Good
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return model.Good{}, mapError(err)
	}
	return g, nil
}

func (r *GoodGormRepository) List(ctx context.Context, q repo.GoodListQuery) ([]model.Good, error) {
	tx := r.db.WithContext(ctx).Model(&model.Good{})

	if name := strings.TrimSpace(q.Name); name != "" {
		tx = tx.Where("name = ?", name)
	}
	if q.Material != "" {
		tx = tx.Where("material = ?", q.Material)
	}

	var goods []model.Good
	if err := tx.Order("id asc").Find(&goods).Error; err != nil {
		return []model.Good{}, err
	}
	return goods, nil
}

// Quantityは触らない
func (r *GoodGormRepository) Update(ctx context.Context, g model.Good) error {
	res := r.db.WithContext(ctx).Model(&model.Good{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
		"name":        g.Name,
		"description": g.Description,
		"material":    g.Material,
		"weight":      g.Weight,
		"value":       g.Value,
	})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GoodGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Good{}, id)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
