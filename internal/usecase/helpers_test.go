package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"innledger/internal/domain/model"
	"innledger/internal/infra/lock"
	"innledger/internal/infra/memory"
	"innledger/internal/usecase"
)

// =====================
// test doubles
// =====================

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string {
	return fmt.Sprintf("ev-%d", s.n.Add(1))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.TransactionEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Types() []model.TransactionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.TransactionEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// 渡されたキーを記録してから本物のロックを取る
type recordingLocker struct {
	mu    sync.Mutex
	calls [][]string
	inner usecase.GoodLocker
}

func (l *recordingLocker) Lock(ctx context.Context, keys []string) (func(), error) {
	l.mu.Lock()
	l.calls = append(l.calls, append([]string(nil), keys...))
	l.mu.Unlock()
	return l.inner.Lock(ctx, keys)
}

func (l *recordingLocker) Last() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) == 0 {
		return nil
	}
	return l.calls[len(l.calls)-1]
}

// =====================
// fixture
// =====================

type ledgerFixture struct {
	store  *memory.Store
	uc     *usecase.TransactionUsecase
	clock  *fixedClock
	events *recordingPublisher
	logs   *observer.ObservedLogs
	goods  map[string]model.Good
}

// 初期在庫: Sword(100) x5, Potion(10) x3
// Hunter: Geralt / Merchant: Fenn
func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	r := store.Repos()

	f := &ledgerFixture{
		store:  store,
		clock:  newFixedClock(),
		events: &recordingPublisher{},
		goods:  map[string]model.Good{},
	}
	for _, g := range []model.Good{
		{Name: "Sword", Material: model.MaterialSteel, Weight: 3, Value: decimal.NewFromInt(100), Quantity: 5},
		{Name: "Potion", Material: model.MaterialHerbs, Weight: 0.2, Value: decimal.NewFromInt(10), Quantity: 3},
	} {
		created, err := r.Goods().Create(ctx, g)
		require.NoError(t, err)
		f.goods[g.Name] = created
	}
	_, err := r.Hunters().Create(ctx, model.Hunter{Name: "Geralt", Age: 90, Race: model.RaceWitcher, Location: model.LocationBrugge})
	require.NoError(t, err)
	_, err = r.Merchants().Create(ctx, model.Merchant{Name: "Fenn", Age: 40, Location: model.LocationCintra, Type: model.MerchantTypeHerbalist})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	f.logs = logs
	f.uc = usecase.NewTransactionUsecase(store, lock.NewLocalLocker(), f.events, f.clock, &seqIDs{}, zap.New(core))
	return f
}

func (f *ledgerFixture) quantity(t *testing.T, name string) int64 {
	t.Helper()
	g, err := f.store.Repos().Goods().FindByName(context.Background(), name)
	require.NoError(t, err)
	return g.Quantity
}

func (f *ledgerFixture) purchase(t *testing.T, items ...usecase.LineItemInput) usecase.TransactionOutput {
	t.Helper()
	out, err := f.uc.Create(context.Background(), usecase.CreateTransactionInput{HunterName: "Geralt", Goods: items})
	require.NoError(t, err)
	return out
}

func (f *ledgerFixture) sell(t *testing.T, items ...usecase.LineItemInput) usecase.TransactionOutput {
	t.Helper()
	out, err := f.uc.Create(context.Background(), usecase.CreateTransactionInput{MerchantName: "Fenn", Goods: items})
	require.NoError(t, err)
	return out
}

func item(name string, q int64) usecase.LineItemInput {
	return usecase.LineItemInput{Name: name, Quantity: q}
}

// =====================
// assertions
// =====================

func assertKind(t *testing.T, err error, kind usecase.ErrorKind) *usecase.AppError {
	t.Helper()
	require.Error(t, err)
	ae, ok := usecase.AsAppError(err)
	require.Truef(t, ok, "expected *usecase.AppError, got %T: %v", err, err)
	assert.Equal(t, kind, ae.Kind, "error: %v", err)
	return ae
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	w := decimal.RequireFromString(want)
	assert.Truef(t, w.Equal(got), "want %s, got %s", want, got)
}

var errBoom = errors.New("boom")
