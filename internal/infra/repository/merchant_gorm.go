package repository

import (
	"context"
	"strings"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"

	"gorm.io/gorm"
)

type MerchantGormRepository struct {
	db *gorm.DB
}

func NewMerchantGormRepository(db *gorm.DB) *MerchantGormRepository {
	return &MerchantGormRepository{db: db}
}

func (r *MerchantGormRepository) Create(ctx context.Context, m model.Merchant) (model.Merchant, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.Merchant{}, mapError(err)
	}
	return m, nil
}

func (r *MerchantGormRepository) FindByID(ctx context.Context, id int64) (model.Merchant, error) {
	var m model.Merchant
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return model.Merchant{}, mapError(err)
	}
	return m, nil
}

func (r *MerchantGormRepository) FindByName(ctx context.Context, name string) (model.Merchant, error) {
	var m model.Merchant
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		return model.Merchant{}, mapError(err)
	}
	return m, nil
}

func (r *MerchantGormRepository) List(ctx context.Context, q repo.PartyListQuery) ([]model.Merchant, error) {
	tx := r.db.WithContext(ctx).Model(&model.Merchant{})
	if name := strings.TrimSpace(q.Name); name != "" {
		tx = tx.Where("name = ?", name)
	}
	if q.Location != "" {
		tx = tx.Where("location = ?", q.Location)
	}

	var merchants []model.Merchant
	if err := tx.Order("id asc").Find(&merchants).Error; err != nil {
		return []model.Merchant{}, err
	}
	return merchants, nil
}

func (r *MerchantGormRepository) Update(ctx context.Context, m model.Merchant) error {
	res := r.db.WithContext(ctx).Model(&model.Merchant{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"name":     m.Name,
		"age":      m.Age,
		"type":     m.Type,
		"location": m.Location,
	})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MerchantGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Merchant{}, id)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
