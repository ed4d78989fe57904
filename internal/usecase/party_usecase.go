package usecase

import (
	"context"
	"strings"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

// HunterとMerchant（取引相手）の管理
type PartyUsecase struct {
	tx        repo.TransactionManager
	validator InputValidator
}

func NewPartyUsecase(tx repo.TransactionManager, v InputValidator) *PartyUsecase {
	return &PartyUsecase{tx: tx, validator: v}
}

type CreateHunterInput struct {
	Name     string `json:"name" validate:"required,max=100,partyname"`
	Age      int    `json:"age" validate:"gte=0"`
	Race     string `json:"race" validate:"required,oneof=Witcher Knight Noble Bandit Villager"`
	Location string `json:"location" validate:"required,oneof=Brugge Maribor Cintra Verden"`
}

type UpdateHunterInput struct {
	Name     *string `json:"name" validate:"omitempty,max=100,partyname"`
	Age      *int    `json:"age" validate:"omitempty,gte=0"`
	Race     *string `json:"race" validate:"omitempty,oneof=Witcher Knight Noble Bandit Villager"`
	Location *string `json:"location" validate:"omitempty,oneof=Brugge Maribor Cintra Verden"`
}

type CreateMerchantInput struct {
	Name     string `json:"name" validate:"required,max=100,partyname"`
	Age      int    `json:"age" validate:"gte=0"`
	Location string `json:"location" validate:"required,oneof=Brugge Maribor Cintra Verden"`
	Type     string `json:"type" validate:"required,oneof=blacksmith alchemist trader herbalist"`
}

type UpdateMerchantInput struct {
	Name     *string `json:"name" validate:"omitempty,max=100,partyname"`
	Age      *int    `json:"age" validate:"omitempty,gte=0"`
	Location *string `json:"location" validate:"omitempty,oneof=Brugge Maribor Cintra Verden"`
	Type     *string `json:"type" validate:"omitempty,oneof=blacksmith alchemist trader herbalist"`
}

func (in UpdateHunterInput) apply(h model.Hunter) model.Hunter {
	if in.Name != nil {
		h.Name = *in.Name
	}
	if in.Age != nil {
		h.Age = *in.Age
	}
	if in.Race != nil {
		h.Race = model.Race(*in.Race)
	}
	if in.Location != nil {
		h.Location = model.Location(*in.Location)
	}
	return h
}

func (in UpdateMerchantInput) apply(m model.Merchant) model.Merchant {
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Age != nil {
		m.Age = *in.Age
	}
	if in.Location != nil {
		m.Location = model.Location(*in.Location)
	}
	if in.Type != nil {
		m.Type = model.MerchantType(*in.Type)
	}
	return m
}

// 条件なしの一括更新・削除は受け付けない
func checkPartyQuery(q *repo.PartyListQuery) error {
	q.Name = strings.TrimSpace(q.Name)
	q.Location = strings.TrimSpace(q.Location)
	if q.Name == "" && q.Location == "" {
		return NewBadRequest("a name or location query is required")
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// ---- hunters ----

func (u *PartyUsecase) CreateHunter(ctx context.Context, in CreateHunterInput) (model.Hunter, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(u.validator, in); err != nil {
		return model.Hunter{}, err
	}
	h := model.Hunter{
		Name:     in.Name,
		Age:      in.Age,
		Race:     model.Race(in.Race),
		Location: model.Location(in.Location),
	}
	var created model.Hunter
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		created, err = r.Hunters().Create(ctx, h)
		return mapRepoError("hunter", err)
	})
	if err != nil {
		return model.Hunter{}, storeError(err)
	}
	return created, nil
}

func (u *PartyUsecase) GetHunter(ctx context.Context, id int64) (model.Hunter, error) {
	if id <= 0 {
		return model.Hunter{}, NewBadRequest("invalid id")
	}
	var h model.Hunter
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		h, err = r.Hunters().FindByID(ctx, id)
		return mapRepoError("hunter", err)
	})
	if err != nil {
		return model.Hunter{}, storeError(err)
	}
	return h, nil
}

func (u *PartyUsecase) ListHunters(ctx context.Context, q repo.PartyListQuery) ([]model.Hunter, error) {
	var out []model.Hunter
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.Hunters().List(ctx, q)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}

func (u *PartyUsecase) UpdateHunter(ctx context.Context, id int64, in UpdateHunterInput) (model.Hunter, error) {
	if id <= 0 {
		return model.Hunter{}, NewBadRequest("invalid id")
	}
	in.Name = trimPtr(in.Name)
	if err := validateInput(u.validator, in); err != nil {
		return model.Hunter{}, err
	}

	var updated model.Hunter
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		h, err := r.Hunters().FindByID(ctx, id)
		if err != nil {
			return mapRepoError("hunter", err)
		}
		h = in.apply(h)
		if err := r.Hunters().Update(ctx, h); err != nil {
			return mapRepoError("hunter", err)
		}
		updated = h
		return nil
	})
	if err != nil {
		return model.Hunter{}, storeError(err)
	}
	return updated, nil
}

func (u *PartyUsecase) DeleteHunter(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewBadRequest("invalid id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return mapRepoError("hunter", r.Hunters().Delete(ctx, id))
	})
	return storeError(err)
}

// UpdateHuntersWhere は条件に合うhunterすべてに同じ変更をかける。
func (u *PartyUsecase) UpdateHuntersWhere(ctx context.Context, q repo.PartyListQuery, in UpdateHunterInput) ([]model.Hunter, error) {
	if err := checkPartyQuery(&q); err != nil {
		return nil, err
	}
	in.Name = trimPtr(in.Name)
	if err := validateInput(u.validator, in); err != nil {
		return nil, err
	}

	var updated []model.Hunter
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		hs, err := r.Hunters().List(ctx, q)
		if err != nil {
			return storeError(err)
		}
		if len(hs) == 0 {
			return NewNotFound("hunter", "")
		}
		updated = make([]model.Hunter, 0, len(hs))
		for _, h := range hs {
			h = in.apply(h)
			if err := r.Hunters().Update(ctx, h); err != nil {
				return mapRepoError("hunter", err)
			}
			updated = append(updated, h)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return updated, nil
}

// DeleteHuntersWhere は条件に合うhunterを消し、消したものを返す。
func (u *PartyUsecase) DeleteHuntersWhere(ctx context.Context, q repo.PartyListQuery) ([]model.Hunter, error) {
	if err := checkPartyQuery(&q); err != nil {
		return nil, err
	}
	var deleted []model.Hunter
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		hs, err := r.Hunters().List(ctx, q)
		if err != nil {
			return storeError(err)
		}
		if len(hs) == 0 {
			return NewNotFound("hunter", "")
		}
		for _, h := range hs {
			if err := r.Hunters().Delete(ctx, h.ID); err != nil {
				return mapRepoError("hunter", err)
			}
		}
		deleted = hs
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return deleted, nil
}

// ---- merchants ----

func (u *PartyUsecase) CreateMerchant(ctx context.Context, in CreateMerchantInput) (model.Merchant, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(u.validator, in); err != nil {
		return model.Merchant{}, err
	}
	m := model.Merchant{
		Name:     in.Name,
		Age:      in.Age,
		Location: model.Location(in.Location),
		Type:     model.MerchantType(in.Type),
	}
	var created model.Merchant
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		created, err = r.Merchants().Create(ctx, m)
		return mapRepoError("merchant", err)
	})
	if err != nil {
		return model.Merchant{}, storeError(err)
	}
	return created, nil
}

func (u *PartyUsecase) GetMerchant(ctx context.Context, id int64) (model.Merchant, error) {
	if id <= 0 {
		return model.Merchant{}, NewBadRequest("invalid id")
	}
	var m model.Merchant
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		m, err = r.Merchants().FindByID(ctx, id)
		return mapRepoError("merchant", err)
	})
	if err != nil {
		return model.Merchant{}, storeError(err)
	}
	return m, nil
}

func (u *PartyUsecase) ListMerchants(ctx context.Context, q repo.PartyListQuery) ([]model.Merchant, error) {
	var out []model.Merchant
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.Merchants().List(ctx, q)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}

func (u *PartyUsecase) UpdateMerchant(ctx context.Context, id int64, in UpdateMerchantInput) (model.Merchant, error) {
	if id <= 0 {
		return model.Merchant{}, NewBadRequest("invalid id")
	}
	in.Name = trimPtr(in.Name)
	if err := validateInput(u.validator, in); err != nil {
		return model.Merchant{}, err
	}

	var updated model.Merchant
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		m, err := r.Merchants().FindByID(ctx, id)
		if err != nil {
			return mapRepoError("merchant", err)
		}
		m = in.apply(m)
		if err := r.Merchants().Update(ctx, m); err != nil {
			return mapRepoError("merchant", err)
		}
		updated = m
		return nil
	})
	if err != nil {
		return model.Merchant{}, storeError(err)
	}
	return updated, nil
}

func (u *PartyUsecase) DeleteMerchant(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewBadRequest("invalid id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return mapRepoError("merchant", r.Merchants().Delete(ctx, id))
	})
	return storeError(err)
}

func (u *PartyUsecase) UpdateMerchantsWhere(ctx context.Context, q repo.PartyListQuery, in UpdateMerchantInput) ([]model.Merchant, error) {
	if err := checkPartyQuery(&q); err != nil {
		return nil, err
	}
	in.Name = trimPtr(in.Name)
	if err := validateInput(u.validator, in); err != nil {
		return nil, err
	}

	var updated []model.Merchant
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ms, err := r.Merchants().List(ctx, q)
		if err != nil {
			return storeError(err)
		}
		if len(ms) == 0 {
			return NewNotFound("merchant", "")
		}
		updated = make([]model.Merchant, 0, len(ms))
		for _, m := range ms {
			m = in.apply(m)
			if err := r.Merchants().Update(ctx, m); err != nil {
				return mapRepoError("merchant", err)
			}
			updated = append(updated, m)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return updated, nil
}

func (u *PartyUsecase) DeleteMerchantsWhere(ctx context.Context, q repo.PartyListQuery) ([]model.Merchant, error) {
	if err := checkPartyQuery(&q); err != nil {
		return nil, err
	}
	var deleted []model.Merchant
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ms, err := r.Merchants().List(ctx, q)
		if err != nil {
			return storeError(err)
		}
		if len(ms) == 0 {
			return NewNotFound("merchant", "")
		}
		for _, m := range ms {
			if err := r.Merchants().Delete(ctx, m.ID); err != nil {
				return mapRepoError("merchant", err)
			}
		}
		deleted = ms
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return deleted, nil
}
