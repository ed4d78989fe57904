package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGood(t *testing.T, s *Store, name string, qty int64) model.Good {
	t.Helper()
	g, err := s.Repos().Goods().Create(context.Background(), model.Good{
		Name:     name,
		Material: model.MaterialSilver,
		Weight:   1,
		Value:    decimal.NewFromInt(10),
		Quantity: qty,
	})
	require.NoError(t, err)
	return g
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	g := seedGood(t, s, "Herb Pouch", 5)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Inventory().AdjustQuantity(ctx, g.ID, -3); err != nil {
			return err
		}
		if _, err := r.Transactions().Create(ctx, model.Transaction{Kind: model.TransactionKindPurchase}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Repos().Goods().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)

	list, err := s.Repos().Transactions().List(ctx, repo.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWithinTx_SnapshotOnFirstWrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	g := seedGood(t, s, "Herb Pouch", 5)

	// 読み取りだけなら複製しない
	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Goods().FindByID(ctx, g.ID); err != nil {
			return err
		}
		if _, err := r.StockMovements().ListByGoodID(ctx, g.ID, 10); err != nil {
			return err
		}
		assert.Nil(t, r.(*repos).snap)
		return nil
	})
	require.NoError(t, err)

	// 読み取り後の書き込みでも書き込み前の状態に戻る
	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Goods().FindByID(ctx, g.ID); err != nil {
			return err
		}
		assert.Nil(t, r.(*repos).snap)
		if _, err := r.Inventory().AdjustQuantity(ctx, g.ID, -2); err != nil {
			return err
		}
		snap := r.(*repos).snap
		require.NotNil(t, snap)
		assert.Equal(t, int64(5), snap.goods[g.ID].Quantity)
		if _, err := r.Inventory().AdjustQuantity(ctx, g.ID, -1); err != nil {
			return err
		}
		assert.Same(t, snap, r.(*repos).snap)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Repos().Goods().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)

	// エラーで抜けた読み取り専用Txは何も変えない
	err = s.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Goods().FindByID(ctx, 999)
		return err
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)
	got, err = s.Repos().Goods().FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
}

func TestWithinTx_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore().WithinTx(ctx, func(r repo.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestGoods_UniqueName(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedGood(t, s, "Silver Sword", 1)

	_, err := s.Repos().Goods().Create(ctx, model.Good{Name: "Silver Sword"})
	assert.ErrorIs(t, err, repo.ErrConflict)

	other := seedGood(t, s, "Iron Axe", 1)
	other.Name = "Silver Sword"
	assert.ErrorIs(t, s.Repos().Goods().Update(ctx, other), repo.ErrConflict)
}

func TestInventory_Adjust(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	g := seedGood(t, s, "Leather Boots", 2)
	inv := s.Repos().Inventory()

	q, err := inv.AdjustQuantity(ctx, g.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q)

	_, err = inv.AdjustQuantity(ctx, g.ID, -1)
	assert.ErrorIs(t, err, repo.ErrInsufficientStock)

	_, err = inv.AdjustQuantity(ctx, 999, 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = inv.AdjustQuantity(ctx, g.ID, 3)
	require.NoError(t, err)

	applied, q, err := inv.AdjustQuantityClamped(ctx, g.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), applied)
	assert.Equal(t, int64(0), q)
}

func TestTransactions_ListFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	txs := s.Repos().Transactions()

	hunterID, merchantID := int64(1), int64(1)
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	a, err := txs.Create(ctx, model.Transaction{Kind: model.TransactionKindPurchase, HunterID: &hunterID, Date: day,
		Items: []model.TransactionItem{{GoodID: 1, Quantity: 1}}})
	require.NoError(t, err)
	b, err := txs.Create(ctx, model.Transaction{Kind: model.TransactionKindSell, MerchantID: &merchantID, Date: day.Add(48 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, a.ID, a.Items[0].TransactionID)

	both, err := txs.List(ctx, repo.TransactionFilter{HunterID: &hunterID, MerchantID: &merchantID})
	require.NoError(t, err)
	assert.Len(t, both, 2)

	sell := model.TransactionKindSell
	to := day.Add(48 * time.Hour)
	onlySell, err := txs.List(ctx, repo.TransactionFilter{From: &day, To: &to, Kind: &sell})
	require.NoError(t, err)
	require.Len(t, onlySell, 1)
	assert.Equal(t, b.ID, onlySell[0].ID)
}
