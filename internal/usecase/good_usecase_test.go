package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"innledger/internal/domain/model"
	"innledger/internal/infra/lock"
	"innledger/internal/infra/memory"
	repo "innledger/internal/repository"
	"innledger/internal/usecase"
	"innledger/internal/validator"
)

func ptr[T any](v T) *T { return &v }

func newGoodUsecase(t *testing.T) (*usecase.GoodUsecase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return usecase.NewGoodUsecase(store, lock.NewLocalLocker(), validator.NewInputValidator(), zap.NewNop()), store
}

func TestGoodUsecase_CreateDefaultsQuantity(t *testing.T) {
	uc, _ := newGoodUsecase(t)

	g, err := uc.Create(context.Background(), usecase.CreateGoodInput{
		Name:     " Silver Sword ",
		Material: "Silver",
		Weight:   3,
		Value:    decimal.RequireFromString("120.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Silver Sword", g.Name)
	assert.Equal(t, model.DefaultGoodQuantity, g.Quantity)
	assertDecimal(t, "120.5", g.Value)
}

func TestGoodUsecase_CreateRejectsInvalidInput(t *testing.T) {
	uc, _ := newGoodUsecase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, usecase.CreateGoodInput{Name: "Sword", Material: "Iron", Weight: 1, Value: decimal.Zero})
	assertKind(t, err, usecase.KindValidation)
	assertErrContains(t, err, "value must be greater than 0")

	_, err = uc.Create(ctx, usecase.CreateGoodInput{Name: "sword", Material: "Iron", Weight: 1, Value: decimal.NewFromInt(1)})
	assertKind(t, err, usecase.KindValidation)

	_, err = uc.Create(ctx, usecase.CreateGoodInput{Name: "Sword", Material: "Iron", Weight: 1, Value: decimal.NewFromInt(1), Quantity: ptr(int64(-3))})
	assertKind(t, err, usecase.KindValidation)
}

func TestGoodUsecase_DuplicateNameIsConflict(t *testing.T) {
	uc, _ := newGoodUsecase(t)
	ctx := context.Background()

	in := usecase.CreateGoodInput{Name: "Sword", Material: "Iron", Weight: 1, Value: decimal.NewFromInt(5)}
	_, err := uc.Create(ctx, in)
	require.NoError(t, err)

	_, err = uc.Create(ctx, in)
	ae := assertKind(t, err, usecase.KindConflict)
	assert.Equal(t, "good", ae.Entity)
}

func TestGoodUsecase_UpdateQuantityRecordsManualMovement(t *testing.T) {
	uc, _ := newGoodUsecase(t)
	ctx := context.Background()

	g, err := uc.Create(ctx, usecase.CreateGoodInput{Name: "Potion", Material: "Herbs", Weight: 0.1, Value: decimal.NewFromInt(3), Quantity: ptr(int64(4))})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, g.ID, usecase.UpdateGoodInput{Quantity: ptr(int64(10)), Description: ptr("Swallow")})
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.Quantity)
	assert.Equal(t, "Swallow", updated.Description)

	movements, err := uc.Movements(ctx, g.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementReasonManual, movements[0].Reason)
	assert.Equal(t, int64(6), movements[0].Applied)
	assert.Equal(t, int64(10), movements[0].QuantityAfter)
	assert.Nil(t, movements[0].TransactionID)
}

func TestGoodUsecase_UpdateRenameConflict(t *testing.T) {
	uc, _ := newGoodUsecase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, usecase.CreateGoodInput{Name: "Sword", Material: "Iron", Weight: 1, Value: decimal.NewFromInt(5)})
	require.NoError(t, err)
	axe, err := uc.Create(ctx, usecase.CreateGoodInput{Name: "Axe", Material: "Iron", Weight: 1, Value: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = uc.Update(ctx, axe.ID, usecase.UpdateGoodInput{Name: ptr("Sword")})
	assertKind(t, err, usecase.KindConflict)

	got, err := uc.Get(ctx, axe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Axe", got.Name)
}

func TestGoodUsecase_GetListDelete(t *testing.T) {
	uc, _ := newGoodUsecase(t)
	ctx := context.Background()

	g, err := uc.Create(ctx, usecase.CreateGoodInput{Name: "Sword", Material: "Iron", Weight: 1, Value: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, usecase.CreateGoodInput{Name: "Herb Bundle", Material: "Herbs", Weight: 1, Value: decimal.NewFromInt(1)})
	require.NoError(t, err)

	list, err := uc.List(ctx, repo.GoodListQuery{Name: "Sword"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, g.ID, list[0].ID)

	require.NoError(t, uc.Delete(ctx, g.ID))

	_, err = uc.Get(ctx, g.ID)
	ae := assertKind(t, err, usecase.KindNotFound)
	assert.Equal(t, "good", ae.Entity)

	err = uc.Delete(ctx, g.ID)
	assertKind(t, err, usecase.KindNotFound)

	_, err = uc.Get(ctx, 0)
	assertKind(t, err, usecase.KindBadRequest)
}

func TestGoodUsecase_UpdateWhere(t *testing.T) {
	store := memory.NewStore()
	locker := &recordingLocker{inner: lock.NewLocalLocker()}
	uc := usecase.NewGoodUsecase(store, locker, validator.NewInputValidator(), zap.NewNop())
	ctx := context.Background()

	for _, in := range []usecase.CreateGoodInput{
		{Name: "Steel Sword", Material: "Steel", Weight: 3, Value: decimal.NewFromInt(80), Quantity: ptr(int64(2))},
		{Name: "Steel Axe", Material: "Steel", Weight: 4, Value: decimal.NewFromInt(60), Quantity: ptr(int64(7))},
		{Name: "Herb Pouch", Material: "Herbs", Weight: 0.1, Value: decimal.NewFromInt(5), Quantity: ptr(int64(1))},
	} {
		_, err := uc.Create(ctx, in)
		require.NoError(t, err)
	}

	updated, err := uc.UpdateWhere(ctx, repo.GoodListQuery{Material: "Steel"}, usecase.UpdateGoodInput{
		Quantity: ptr(int64(5)),
		Value:    ptr(decimal.NewFromInt(70)),
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.ElementsMatch(t, []string{"Steel Sword", "Steel Axe"}, locker.Last())

	// 数量は差分を手動調整として記録
	wantDelta := map[string]int64{"Steel Sword": 3, "Steel Axe": -2}
	for _, g := range updated {
		assert.Equal(t, int64(5), g.Quantity)
		assertDecimal(t, "70", g.Value)
		movements, err := store.Repos().StockMovements().ListByGoodID(ctx, g.ID, 10)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, model.MovementReasonManual, movements[0].Reason)
		assert.Equal(t, wantDelta[g.Name], movements[0].Applied)
		assert.Equal(t, int64(5), movements[0].QuantityAfter)
	}

	herbs, err := store.Repos().Goods().FindByName(ctx, "Herb Pouch")
	require.NoError(t, err)
	assert.Equal(t, int64(1), herbs.Quantity)

	// 改名は新しい名前もロックする
	renamed, err := uc.UpdateWhere(ctx, repo.GoodListQuery{Name: "Herb Pouch"}, usecase.UpdateGoodInput{Name: ptr("Herb Satchel")})
	require.NoError(t, err)
	require.Len(t, renamed, 1)
	assert.Equal(t, "Herb Satchel", renamed[0].Name)
	assert.ElementsMatch(t, []string{"Herb Pouch", "Herb Satchel"}, locker.Last())
}

func TestGoodUsecase_UpdateWhereFailures(t *testing.T) {
	uc, store := newGoodUsecase(t)
	ctx := context.Background()

	for _, name := range []string{"Steel Sword", "Steel Axe"} {
		_, err := uc.Create(ctx, usecase.CreateGoodInput{Name: name, Material: "Steel", Weight: 1, Value: decimal.NewFromInt(10), Quantity: ptr(int64(3))})
		require.NoError(t, err)
	}

	_, err := uc.UpdateWhere(ctx, repo.GoodListQuery{Name: "Mace"}, usecase.UpdateGoodInput{Weight: ptr(2.0)})
	assertKind(t, err, usecase.KindNotFound)

	_, err = uc.UpdateWhere(ctx, repo.GoodListQuery{Name: " "}, usecase.UpdateGoodInput{Weight: ptr(2.0)})
	assertKind(t, err, usecase.KindBadRequest)

	_, err = uc.UpdateWhere(ctx, repo.GoodListQuery{Material: "Steel"}, usecase.UpdateGoodInput{Value: ptr(decimal.Zero)})
	assertKind(t, err, usecase.KindValidation)

	// 2件を同じ名前にはできない。1件目の変更も残らない
	_, err = uc.UpdateWhere(ctx, repo.GoodListQuery{Material: "Steel"}, usecase.UpdateGoodInput{
		Name:     ptr("Steel Blade"),
		Quantity: ptr(int64(9)),
	})
	assertKind(t, err, usecase.KindConflict)

	list, err := store.Repos().Goods().List(ctx, repo.GoodListQuery{Material: "Steel"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, g := range list {
		assert.NotEqual(t, "Steel Blade", g.Name)
		assert.Equal(t, int64(3), g.Quantity)
		movements, err := store.Repos().StockMovements().ListByGoodID(ctx, g.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, movements)
	}
}

func TestGoodUsecase_DeleteWhere(t *testing.T) {
	uc, store := newGoodUsecase(t)
	ctx := context.Background()

	for _, in := range []usecase.CreateGoodInput{
		{Name: "Steel Sword", Material: "Steel", Weight: 3, Value: decimal.NewFromInt(80)},
		{Name: "Herb Pouch", Material: "Herbs", Weight: 0.1, Value: decimal.NewFromInt(5)},
	} {
		_, err := uc.Create(ctx, in)
		require.NoError(t, err)
	}

	_, err := uc.DeleteWhere(ctx, repo.GoodListQuery{})
	assertKind(t, err, usecase.KindBadRequest)

	_, err = uc.DeleteWhere(ctx, repo.GoodListQuery{Material: "Silver"})
	assertKind(t, err, usecase.KindNotFound)

	deleted, err := uc.DeleteWhere(ctx, repo.GoodListQuery{Material: "Herbs"})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "Herb Pouch", deleted[0].Name)

	left, err := store.Repos().Goods().List(ctx, repo.GoodListQuery{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Steel Sword", left[0].Name)
}
