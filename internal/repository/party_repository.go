package repository

import (
	"context"

	"innledger/internal/domain/model"
)

type PartyListQuery struct {
	Name     string
	Location string
}

type HunterRepository interface {
	Create(ctx context.Context, h model.Hunter) (model.Hunter, error)
	FindByID(ctx context.Context, id int64) (model.Hunter, error)
	FindByName(ctx context.Context, name string) (model.Hunter, error)
	List(ctx context.Context, q PartyListQuery) ([]model.Hunter, error)
	Update(ctx context.Context, h model.Hunter) error
	Delete(ctx context.Context, id int64) error
}

type MerchantRepository interface {
	Create(ctx context.Context, m model.Merchant) (model.Merchant, error)
	FindByID(ctx context.Context, id int64) (model.Merchant, error)
	FindByName(ctx context.Context, name string) (model.Merchant, error)
	List(ctx context.Context, q PartyListQuery) ([]model.Merchant, error)
	Update(ctx context.Context, m model.Merchant) error
	Delete(ctx context.Context, id int64) error
}
