// Package memory はプロセス内だけで完結するストア。
// STORE=memory の開発起動とテストで使う。
package memory

import (
	"context"
	"sync"
	"time"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

type sequences struct {
	goods, hunters, merchants, transactions, items, movements int64
}

type state struct {
	goods        map[int64]model.Good
	hunters      map[int64]model.Hunter
	merchants    map[int64]model.Merchant
	transactions map[int64]model.Transaction
	movements    []model.StockMovement
	seq          sequences
}

func newState() *state {
	return &state{
		goods:        map[int64]model.Good{},
		hunters:      map[int64]model.Hunter{},
		merchants:    map[int64]model.Merchant{},
		transactions: map[int64]model.Transaction{},
	}
}

// ロールバック用の複製
func (s *state) clone() *state {
	c := newState()
	for id, g := range s.goods {
		c.goods[id] = g
	}
	for id, h := range s.hunters {
		c.hunters[id] = h
	}
	for id, m := range s.merchants {
		c.merchants[id] = m
	}
	for id, t := range s.transactions {
		c.transactions[id] = copyTransaction(t)
	}
	c.movements = append([]model.StockMovement(nil), s.movements...)
	c.seq = s.seq
	return c
}

func copyTransaction(t model.Transaction) model.Transaction {
	t.Items = append([]model.TransactionItem(nil), t.Items...)
	t.HunterID = copyID(t.HunterID)
	t.MerchantID = copyID(t.MerchantID)
	return t
}

func copyID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Store は全テーブルを1つのmutexで守る。
// WithinTxの間はロックを握ったままで、fnがエラーを返したらスナップショットに戻す。
// スナップショットは最初の書き込み直前に取る（読み取りだけのTxでは複製しない）。
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := &repos{store: s, inTx: true}
	if err := fn(r); err != nil {
		if r.snap != nil {
			s.st = r.snap
		}
		return err
	}
	return nil
}

// Tx外で使うrepo一式（1呼び出しごとにロックする）
func (s *Store) Repos() repo.TxRepos {
	return &repos{store: s}
}

type repos struct {
	store *Store
	inTx  bool
	snap  *state
}

func (r *repos) Goods() repo.GoodRepository                   { return goodRepo{r} }
func (r *repos) Inventory() repo.InventoryRepository           { return inventoryRepo{r} }
func (r *repos) StockMovements() repo.StockMovementRepository { return movementRepo{r} }
func (r *repos) Hunters() repo.HunterRepository               { return hunterRepo{r} }
func (r *repos) Merchants() repo.MerchantRepository           { return merchantRepo{r} }
func (r *repos) Transactions() repo.TransactionRepository     { return transactionRepo{r} }

func (r *repos) do(ctx context.Context, fn func(st *state, now time.Time) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.inTx {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
	}
	return fn(r.store.st, r.store.now())
}

// 書き込み系はこちらを通す
func (r *repos) write(ctx context.Context, fn func(st *state, now time.Time) error) error {
	return r.do(ctx, func(st *state, now time.Time) error {
		if r.inTx && r.snap == nil {
			r.snap = st.clone()
		}
		return fn(st, now)
	})
}
