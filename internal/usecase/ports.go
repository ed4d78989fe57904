package usecase

import (
	"context"
	"time"

	"innledger/internal/domain/model"
)

// 在庫品ごとのロック。unlockは何度呼んでもよい。
type GoodLocker interface {
	Lock(ctx context.Context, keys []string) (unlock func(), err error)
}

// コミット後の取引イベント送信
type EventPublisher interface {
	Publish(ctx context.Context, ev model.TransactionEvent) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// 入力項目の形式チェック（名前の形式、列挙値、範囲）
type InputValidator interface {
	Struct(s interface{}) error
}

func validateInput(v InputValidator, s interface{}) error {
	if v == nil {
		return nil
	}
	if err := v.Struct(s); err != nil {
		return NewValidation(err.Error())
	}
	return nil
}

func lockGoods(ctx context.Context, locker GoodLocker, keys []string) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	unlock, err := locker.Lock(ctx, keys)
	if err != nil {
		return nil, &AppError{Kind: KindUnavailable, Message: "could not lock goods", Err: err}
	}
	return unlock, nil
}
