package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

type GoodUsecase struct {
	tx        repo.TransactionManager
	locker    GoodLocker
	validator InputValidator
	logger    *zap.Logger
}

func NewGoodUsecase(tx repo.TransactionManager, locker GoodLocker, v InputValidator, logger *zap.Logger) *GoodUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoodUsecase{tx: tx, locker: locker, validator: v, logger: logger}
}

type CreateGoodInput struct {
	Name        string          `json:"name" validate:"required,max=100,goodname"`
	Description string          `json:"description" validate:"max=100"`
	Material    string          `json:"material" validate:"required,oneof=Iron Steel Silver Leather Herbs"`
	Weight      float64         `json:"weight" validate:"gt=0"`
	Value       decimal.Decimal `json:"value"`
	Quantity    *int64          `json:"quantity" validate:"omitempty,gte=0"`
}

// nilの項目は変更しない
type UpdateGoodInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=100,goodname"`
	Description *string          `json:"description" validate:"omitempty,max=100"`
	Material    *string          `json:"material" validate:"omitempty,oneof=Iron Steel Silver Leather Herbs"`
	Weight      *float64         `json:"weight" validate:"omitempty,gt=0"`
	Value       *decimal.Decimal `json:"value"`
	Quantity    *int64           `json:"quantity" validate:"omitempty,gte=0"`
}

func (u *GoodUsecase) Create(ctx context.Context, in CreateGoodInput) (model.Good, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(u.validator, in); err != nil {
		return model.Good{}, err
	}
	if !in.Value.IsPositive() {
		return model.Good{}, NewValidation("value must be greater than 0")
	}

	g := model.Good{
		Name:        in.Name,
		Description: in.Description,
		Material:    model.Material(in.Material),
		Weight:      in.Weight,
		Value:       in.Value,
		Quantity:    model.DefaultGoodQuantity,
	}
	if in.Quantity != nil {
		g.Quantity = *in.Quantity
	}

	var created model.Good
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		created, err = r.Goods().Create(ctx, g)
		return mapRepoError("good", err)
	})
	if err != nil {
		return model.Good{}, storeError(err)
	}
	return created, nil
}

func (u *GoodUsecase) Get(ctx context.Context, id int64) (model.Good, error) {
	if id <= 0 {
		return model.Good{}, NewBadRequest("invalid id")
	}
	var g model.Good
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		g, err = r.Goods().FindByID(ctx, id)
		return mapRepoError("good", err)
	})
	if err != nil {
		return model.Good{}, storeError(err)
	}
	return g, nil
}

func (u *GoodUsecase) List(ctx context.Context, q repo.GoodListQuery) ([]model.Good, error) {
	var out []model.Good
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.Goods().List(ctx, q)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}

// Update は項目を書き換える。数量の変更は在庫調整として履歴に残す。
func (u *GoodUsecase) Update(ctx context.Context, id int64, in UpdateGoodInput) (model.Good, error) {
	if id <= 0 {
		return model.Good{}, NewBadRequest("invalid id")
	}
	if err := u.checkUpdate(&in); err != nil {
		return model.Good{}, err
	}

	cur, err := u.Get(ctx, id)
	if err != nil {
		return model.Good{}, err
	}
	keys := []string{cur.Name}
	if in.Name != nil {
		keys = append(keys, *in.Name)
	}
	unlock, err := lockGoods(ctx, u.locker, keys)
	if err != nil {
		return model.Good{}, err
	}
	defer unlock()

	var updated model.Good
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		g, err := r.Goods().FindByID(ctx, id)
		if err != nil {
			return mapRepoError("good", err)
		}
		updated, err = u.patch(ctx, r, g, in)
		return err
	})
	if err != nil {
		return model.Good{}, storeError(err)
	}
	return updated, nil
}

// UpdateWhere は条件に合う品物すべてに同じ変更をかける。1件もなければNotFound。
func (u *GoodUsecase) UpdateWhere(ctx context.Context, q repo.GoodListQuery, in UpdateGoodInput) ([]model.Good, error) {
	if err := checkGoodQuery(&q); err != nil {
		return nil, err
	}
	if err := u.checkUpdate(&in); err != nil {
		return nil, err
	}

	matched, err := u.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, NewNotFound("good", "")
	}
	keys := goodKeys(matched)
	if in.Name != nil {
		keys = append(keys, *in.Name)
	}
	unlock, err := lockGoods(ctx, u.locker, keys)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated []model.Good
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		gs, err := u.relist(ctx, r, q, keys)
		if err != nil {
			return err
		}
		updated = make([]model.Good, 0, len(gs))
		for _, g := range gs {
			g, err = u.patch(ctx, r, g, in)
			if err != nil {
				return err
			}
			updated = append(updated, g)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return updated, nil
}

func (u *GoodUsecase) checkUpdate(in *UpdateGoodInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := validateInput(u.validator, *in); err != nil {
		return err
	}
	if in.Value != nil && !in.Value.IsPositive() {
		return NewValidation("value must be greater than 0")
	}
	return nil
}

// 条件なしの一括更新・削除は受け付けない
func checkGoodQuery(q *repo.GoodListQuery) error {
	q.Name = strings.TrimSpace(q.Name)
	q.Material = strings.TrimSpace(q.Material)
	if q.Name == "" && q.Material == "" {
		return NewBadRequest("a name or material query is required")
	}
	return nil
}

// ロック後に読み直す。ロックしていない品物が混ざったらやり直させる。
func (u *GoodUsecase) relist(ctx context.Context, r repo.TxRepos, q repo.GoodListQuery, keys []string) ([]model.Good, error) {
	gs, err := r.Goods().List(ctx, q)
	if err != nil {
		return nil, storeError(err)
	}
	if len(gs) == 0 {
		return nil, NewNotFound("good", "")
	}
	if !coveredBy(goodKeys(gs), keys) {
		return nil, NewConflict("good", "goods were modified concurrently, retry")
	}
	return gs, nil
}

func goodKeys(gs []model.Good) []string {
	keys := make([]string, 0, len(gs))
	for _, g := range gs {
		keys = append(keys, g.Name)
	}
	return keys
}

// patch は1件分の変更を書き込む。数量はInventory経由で変え、手動調整として記録する。
func (u *GoodUsecase) patch(ctx context.Context, r repo.TxRepos, g model.Good, in UpdateGoodInput) (model.Good, error) {
	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	if in.Material != nil {
		g.Material = model.Material(*in.Material)
	}
	if in.Weight != nil {
		g.Weight = *in.Weight
	}
	if in.Value != nil {
		g.Value = *in.Value
	}
	if err := r.Goods().Update(ctx, g); err != nil {
		return model.Good{}, mapRepoError("good", err)
	}

	if in.Quantity == nil || *in.Quantity == g.Quantity {
		return g, nil
	}
	delta := *in.Quantity - g.Quantity
	q, err := r.Inventory().AdjustQuantity(ctx, g.ID, delta)
	if err != nil {
		return model.Good{}, mapRepoError("good", err)
	}
	mv := model.StockMovement{
		GoodID:        g.ID,
		Reason:        model.MovementReasonManual,
		Requested:     delta,
		Applied:       delta,
		QuantityAfter: q,
	}
	if err := r.StockMovements().CreateBulk(ctx, []model.StockMovement{mv}); err != nil {
		return model.Good{}, storeError(err)
	}
	g.Quantity = q
	u.logger.Info("good quantity adjusted",
		zap.Int64("good_id", g.ID),
		zap.Int64("delta", delta),
		zap.Int64("quantity", q),
	)
	return g, nil
}

// 取引から参照されていても消せる（取引の戻しではその明細を飛ばす）
func (u *GoodUsecase) Delete(ctx context.Context, id int64) error {
	cur, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	unlock, err := lockGoods(ctx, u.locker, []string{cur.Name})
	if err != nil {
		return err
	}
	defer unlock()

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return mapRepoError("good", r.Goods().Delete(ctx, id))
	})
	if err != nil {
		return storeError(err)
	}
	return nil
}

// DeleteWhere は条件に合う品物をまとめて消し、消したものを返す。
func (u *GoodUsecase) DeleteWhere(ctx context.Context, q repo.GoodListQuery) ([]model.Good, error) {
	if err := checkGoodQuery(&q); err != nil {
		return nil, err
	}
	matched, err := u.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, NewNotFound("good", "")
	}
	keys := goodKeys(matched)
	unlock, err := lockGoods(ctx, u.locker, keys)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var deleted []model.Good
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		gs, err := u.relist(ctx, r, q, keys)
		if err != nil {
			return err
		}
		for _, g := range gs {
			if err := r.Goods().Delete(ctx, g.ID); err != nil {
				return mapRepoError("good", err)
			}
		}
		deleted = gs
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return deleted, nil
}

// 在庫調整履歴（新しい順）
func (u *GoodUsecase) Movements(ctx context.Context, id int64, limit int) ([]model.StockMovement, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return nil, err
	}
	var out []model.StockMovement
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.StockMovements().ListByGoodID(ctx, id, limit)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}
