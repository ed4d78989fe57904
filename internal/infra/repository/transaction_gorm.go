package repository

import (
	"context"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"

	"gorm.io/gorm"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

// 明細も一緒に作成される
func (r *TransactionGormRepository) Create(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.Transaction{}, mapError(err)
	}
	return t, nil
}

func (r *TransactionGormRepository) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&t, id).Error
	if err != nil {
		return model.Transaction{}, mapError(err)
	}
	return t, nil
}

func (r *TransactionGormRepository) List(ctx context.Context, f repo.TransactionFilter) ([]model.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})

	//取引相手（両方あればOR）
	switch {
	case f.HunterID != nil && f.MerchantID != nil:
		q = q.Where("(hunter_id = ? OR merchant_id = ?)", *f.HunterID, *f.MerchantID)
	case f.HunterID != nil:
		q = q.Where("hunter_id = ?", *f.HunterID)
	case f.MerchantID != nil:
		q = q.Where("merchant_id = ?", *f.MerchantID)
	}

	//期間（両端を含む）
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}

	var items []model.Transaction
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Order("date asc").Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Transaction{}, err
	}
	return items, nil
}

// 本体を更新して明細を入れ替える
func (r *TransactionGormRepository) Update(ctx context.Context, t model.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Transaction{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"kind":        t.Kind,
			"hunter_id":   t.HunterID,
			"merchant_id": t.MerchantID,
			"date":        t.Date,
			"total_value": t.TotalValue,
		})
		if res.Error != nil {
			return mapError(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		if err := tx.Where("transaction_id = ?", t.ID).Delete(&model.TransactionItem{}).Error; err != nil {
			return mapError(err)
		}
		if len(t.Items) == 0 {
			return nil
		}

		items := make([]model.TransactionItem, 0, len(t.Items))
		for _, it := range t.Items {
			it.ID = 0
			it.TransactionID = t.ID
			items = append(items, it)
		}
		return mapError(tx.Create(&items).Error)
	})
}

func (r *TransactionGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionItem{}).Error; err != nil {
			return mapError(err)
		}
		res := tx.Delete(&model.Transaction{}, id)
		if res.Error != nil {
			return mapError(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
