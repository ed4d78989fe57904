package repository

import (
	"context"
	"strings"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"

	"gorm.io/gorm"
)

type HunterGormRepository struct {
	db *gorm.DB
}

func NewHunterGormRepository(db *gorm.DB) *HunterGormRepository {
	return &HunterGormRepository{db: db}
}

func (r *HunterGormRepository) Create(ctx context.Context, h model.Hunter) (model.Hunter, error) {
	if err := r.db.WithContext(ctx).Create(&h).Error; err != nil {
		return model.Hunter{}, mapError(err)
	}
	return h, nil
}

func (r *HunterGormRepository) FindByID(ctx context.Context, id int64) (model.Hunter, error) {
	var h model.Hunter
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return model.Hunter{}, mapError(err)
	}
	return h, nil
}

func (r *HunterGormRepository) FindByName(ctx context.Context, name string) (model.Hunter, error) {
	var h model.Hunter
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&h).Error; err != nil {
		return model.Hunter{}, mapError(err)
	}
	return h, nil
}

func (r *HunterGormRepository) List(ctx context.Context, q repo.PartyListQuery) ([]model.Hunter, error) {
	tx := r.db.WithContext(ctx).Model(&model.Hunter{})
	if name := strings.TrimSpace(q.Name); name != "" {
		tx = tx.Where("name = ?", name)
	}
	if q.Location != "" {
		tx = tx.Where("location = ?", q.Location)
	}

	var hunters []model.Hunter
	if err := tx.Order("id asc").Find(&hunters).Error; err != nil {
		return []model.Hunter{}, err
	}
	return hunters, nil
}

func (r *HunterGormRepository) Update(ctx context.Context, h model.Hunter) error {
	res := r.db.WithContext(ctx).Model(&model.Hunter{}).Where("id = ?", h.ID).Updates(map[string]interface{}{
		"name":     h.Name,
		"age":      h.Age,
		"race":     h.Race,
		"location": h.Location,
	})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *HunterGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Hunter{}, id)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
