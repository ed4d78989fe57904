package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

const tracerName = "innledger/internal/usecase"

// TransactionUsecase は取引台帳。
// 作成・更新・削除は在庫の増減と一緒に1トランザクションで行い、
// 対象の品物をロックしてから始める。
type TransactionUsecase struct {
	tx       repo.TransactionManager
	resolver *LineItemResolver
	locker   GoodLocker
	events   EventPublisher
	clock    Clock
	ids      IDGenerator
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewTransactionUsecase(
	tx repo.TransactionManager,
	locker GoodLocker,
	events EventPublisher,
	clock Clock,
	ids IDGenerator,
	logger *zap.Logger,
) *TransactionUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionUsecase{
		tx:       tx,
		resolver: NewLineItemResolver(),
		locker:   locker,
		events:   events,
		clock:    clock,
		ids:      ids,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

type CreateTransactionInput struct {
	HunterName   string
	MerchantName string
	Goods        []LineItemInput
}

// 空の項目は変更しない。Goodsがnilなら今の明細を今の単価で解決し直す。
type UpdateTransactionInput struct {
	HunterName   string
	MerchantName string
	Goods        []LineItemInput
}

// Typeは "purchase" / "sell" / "all"（空はall）
type DateRangeInput struct {
	Start time.Time
	End   time.Time
	Type  string
}

type TransactionItemOutput struct {
	GoodID    int64           `json:"good_id"`
	Name      string          `json:"name"`
	UnitValue decimal.Decimal `json:"unit_value"`
	Quantity  int64           `json:"quantity"`
}

type TransactionOutput struct {
	ID         int64                   `json:"id"`
	Type       string                  `json:"type"`
	HunterID   *int64                  `json:"hunter_id,omitempty"`
	MerchantID *int64                  `json:"merchant_id,omitempty"`
	Goods      []TransactionItemOutput `json:"goods"`
	Date       time.Time               `json:"date"`
	TotalValue decimal.Decimal         `json:"total_value"`
}

func toTransactionOutput(t model.Transaction) TransactionOutput {
	items := make([]TransactionItemOutput, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, TransactionItemOutput{
			GoodID:    it.GoodID,
			Name:      it.GoodName,
			UnitValue: it.UnitValue,
			Quantity:  it.Quantity,
		})
	}
	return TransactionOutput{
		ID:         t.ID,
		Type:       string(t.Kind),
		HunterID:   t.HunterID,
		MerchantID: t.MerchantID,
		Goods:      items,
		Date:       t.Date,
		TotalValue: t.TotalValue,
	}
}

func toTransactionOutputs(ts []model.Transaction) []TransactionOutput {
	out := make([]TransactionOutput, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionOutput(t))
	}
	return out
}

// 取引相手。hunterならpurchase、merchantならsell。
type counterparty struct {
	kind model.TransactionKind
	name string
}

func parseCounterparty(hunterName, merchantName string) (counterparty, error) {
	h := strings.TrimSpace(hunterName)
	m := strings.TrimSpace(merchantName)
	switch {
	case h != "" && m != "":
		return counterparty{}, NewBadRequest("specify either hunterName or merchantName, not both")
	case h == "" && m == "":
		return counterparty{}, NewBadRequest("you must specify a hunter or a merchant")
	case h != "":
		return counterparty{kind: model.TransactionKindPurchase, name: h}, nil
	default:
		return counterparty{kind: model.TransactionKindSell, name: m}, nil
	}
}

func (u *TransactionUsecase) bindCounterparty(ctx context.Context, r repo.TxRepos, cp counterparty, t *model.Transaction) error {
	t.Kind = cp.kind
	if cp.kind == model.TransactionKindPurchase {
		h, err := r.Hunters().FindByName(ctx, cp.name)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFound("hunter", cp.name)
			}
			return storeError(err)
		}
		t.HunterID, t.MerchantID = &h.ID, nil
		return nil
	}
	m, err := r.Merchants().FindByName(ctx, cp.name)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("merchant", cp.name)
		}
		return storeError(err)
	}
	t.MerchantID, t.HunterID = &m.ID, nil
	return nil
}

func (u *TransactionUsecase) Create(ctx context.Context, in CreateTransactionInput) (TransactionOutput, error) {
	ctx, span := u.tracer.Start(ctx, "ledger.create")
	defer span.End()

	cp, err := parseCounterparty(in.HunterName, in.MerchantName)
	if err != nil {
		return TransactionOutput{}, u.fail(span, err)
	}
	if err := ValidateLineItems(in.Goods); err != nil {
		return TransactionOutput{}, u.fail(span, err)
	}

	unlock, err := u.lockGoods(ctx, lineItemNames(in.Goods))
	if err != nil {
		return TransactionOutput{}, u.fail(span, err)
	}
	defer unlock()

	var (
		created   model.Transaction
		movements []model.StockMovement
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t := model.Transaction{Date: u.clock.Now()}
		if err := u.bindCounterparty(ctx, r, cp, &t); err != nil {
			return err
		}

		lines, err := u.resolver.Resolve(ctx, r, in.Goods, t.Kind)
		if err != nil {
			return err
		}
		t.Items = lines.Items
		t.TotalValue = lines.Total

		created, err = r.Transactions().Create(ctx, t)
		if err != nil {
			return storeError(err)
		}
		movements = lines.Movements
		return u.recordMovements(ctx, r, created.ID, movements)
	})
	if err != nil {
		return TransactionOutput{}, u.fail(span, storeError(err))
	}

	span.SetAttributes(attribute.Int64("transaction.id", created.ID), attribute.String("transaction.type", string(created.Kind)))
	u.logger.Info("transaction created",
		zap.Int64("transaction_id", created.ID),
		zap.String("type", string(created.Kind)),
		zap.String("total_value", created.TotalValue.String()),
	)
	u.publish(ctx, model.TransactionEventCreated, created)
	return toTransactionOutput(created), nil
}

func (u *TransactionUsecase) GetByID(ctx context.Context, id int64) (TransactionOutput, error) {
	if id <= 0 {
		return TransactionOutput{}, NewBadRequest("invalid id")
	}
	var t model.Transaction
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		t, err = findTransaction(ctx, r, id)
		return err
	})
	if err != nil {
		return TransactionOutput{}, storeError(err)
	}
	return toTransactionOutput(t), nil
}

// ListByName は名前が一致するhunterとmerchantの取引をまとめて返す。
// どちらも見つからなければNotFound。取引がないだけなら空で返す。
func (u *TransactionUsecase) ListByName(ctx context.Context, name string) ([]TransactionOutput, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewBadRequest("name is required")
	}

	var ts []model.Transaction
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var f repo.TransactionFilter

		h, err := r.Hunters().FindByName(ctx, name)
		switch {
		case err == nil:
			f.HunterID = &h.ID
		case !errors.Is(err, repo.ErrNotFound):
			return storeError(err)
		}
		m, err := r.Merchants().FindByName(ctx, name)
		switch {
		case err == nil:
			f.MerchantID = &m.ID
		case !errors.Is(err, repo.ErrNotFound):
			return storeError(err)
		}
		if f.HunterID == nil && f.MerchantID == nil {
			return NewNotFound("hunter or merchant", name)
		}

		ts, err = r.Transactions().List(ctx, f)
		if err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return toTransactionOutputs(ts), nil
}

// ListByDateRange は start <= date <= end の取引を返す。
func (u *TransactionUsecase) ListByDateRange(ctx context.Context, in DateRangeInput) ([]TransactionOutput, error) {
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, NewBadRequest("start and end are required")
	}
	if in.Start.After(in.End) {
		return nil, NewBadRequest("start must not be after end")
	}
	kind, err := parseKindFilter(in.Type)
	if err != nil {
		return nil, err
	}

	f := repo.TransactionFilter{From: &in.Start, To: &in.End, Kind: kind}
	var ts []model.Transaction
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		ts, err = r.Transactions().List(ctx, f)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return toTransactionOutputs(ts), nil
}

func parseKindFilter(s string) (*model.TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	case string(model.TransactionKindPurchase):
		k := model.TransactionKindPurchase
		return &k, nil
	case string(model.TransactionKindSell):
		k := model.TransactionKindSell
		return &k, nil
	}
	return nil, NewBadRequest(`transaction type must be "purchase", "sell" or "all"`)
}

// Update は今の取引の在庫影響を戻してから、新しい内容で解決し直して保存する。
// 途中で失敗したら何も変わらない。
func (u *TransactionUsecase) Update(ctx context.Context, id int64, in UpdateTransactionInput) (TransactionOutput, error) {
	ctx, span := u.tracer.Start(ctx, "ledger.update", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	if id <= 0 {
		return TransactionOutput{}, u.fail(span, NewBadRequest("invalid id"))
	}
	var cp *counterparty
	if strings.TrimSpace(in.HunterName) != "" || strings.TrimSpace(in.MerchantName) != "" {
		parsed, err := parseCounterparty(in.HunterName, in.MerchantName)
		if err != nil {
			return TransactionOutput{}, u.fail(span, err)
		}
		cp = &parsed
	}
	if in.Goods != nil {
		if err := ValidateLineItems(in.Goods); err != nil {
			return TransactionOutput{}, u.fail(span, err)
		}
	}

	held, err := u.lockNames(ctx, id)
	if err != nil {
		return TransactionOutput{}, u.fail(span, err)
	}
	keys := append(held, lineItemNames(in.Goods)...)
	unlock, err := u.lockGoods(ctx, keys)
	if err != nil {
		return TransactionOutput{}, u.fail(span, err)
	}
	defer unlock()

	var (
		updated   model.Transaction
		movements []model.StockMovement
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := findTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		names, err := goodNames(ctx, r, t.Items)
		if err != nil {
			return err
		}
		if !coveredBy(names, keys) {
			return NewConflict("transaction", "transaction was modified concurrently, retry")
		}

		reversal, err := u.resolver.Reverse(ctx, r, t)
		if err != nil {
			return err
		}

		if cp != nil {
			if err := u.bindCounterparty(ctx, r, *cp, &t); err != nil {
				return err
			}
		}

		items := in.Goods
		if items == nil {
			items, err = currentLineItems(ctx, r, t)
			if err != nil {
				return err
			}
		}

		lines, err := u.resolver.Resolve(ctx, r, items, t.Kind)
		if err != nil {
			return err
		}
		t.Items = lines.Items
		t.TotalValue = lines.Total
		t.Date = u.clock.Now()

		if err := r.Transactions().Update(ctx, t); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFound("transaction", "")
			}
			return storeError(err)
		}
		updated = t
		movements = append(reversal, lines.Movements...)
		return u.recordMovements(ctx, r, t.ID, movements)
	})
	if err != nil {
		return TransactionOutput{}, u.fail(span, storeError(err))
	}

	u.logClamped(updated.ID, movements)
	u.logger.Info("transaction updated",
		zap.Int64("transaction_id", updated.ID),
		zap.String("type", string(updated.Kind)),
		zap.String("total_value", updated.TotalValue.String()),
	)
	u.publish(ctx, model.TransactionEventUpdated, updated)
	return toTransactionOutput(updated), nil
}

// Delete は在庫影響を戻してから取引を消す。
func (u *TransactionUsecase) Delete(ctx context.Context, id int64) error {
	ctx, span := u.tracer.Start(ctx, "ledger.delete", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	if id <= 0 {
		return u.fail(span, NewBadRequest("invalid id"))
	}
	keys, err := u.lockNames(ctx, id)
	if err != nil {
		return u.fail(span, err)
	}
	unlock, err := u.lockGoods(ctx, keys)
	if err != nil {
		return u.fail(span, err)
	}
	defer unlock()

	var (
		deleted   model.Transaction
		movements []model.StockMovement
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := findTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		names, err := goodNames(ctx, r, t.Items)
		if err != nil {
			return err
		}
		if !coveredBy(names, keys) {
			return NewConflict("transaction", "transaction was modified concurrently, retry")
		}

		movements, err = u.resolver.Reverse(ctx, r, t)
		if err != nil {
			return err
		}
		// 履歴は取引を消す前に書く（取引IDは参照として残す）
		if err := u.recordMovements(ctx, r, t.ID, movements); err != nil {
			return err
		}
		if err := r.Transactions().Delete(ctx, t.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFound("transaction", "")
			}
			return storeError(err)
		}
		deleted = t
		return nil
	})
	if err != nil {
		return u.fail(span, storeError(err))
	}

	u.logClamped(deleted.ID, movements)
	u.logger.Info("transaction deleted",
		zap.Int64("transaction_id", deleted.ID),
		zap.String("type", string(deleted.Kind)),
	)
	u.publish(ctx, model.TransactionEventDeleted, deleted)
	return nil
}

// ロック対象を決めるために取引を先に読む
func (u *TransactionUsecase) lockNames(ctx context.Context, id int64) ([]string, error) {
	var names []string
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := findTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		names, err = goodNames(ctx, r, t.Items)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return names, nil
}

func findTransaction(ctx context.Context, r repo.TxRepos, id int64) (model.Transaction, error) {
	t, err := r.Transactions().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Transaction{}, NewNotFound("transaction", "")
		}
		return model.Transaction{}, storeError(err)
	}
	return t, nil
}

// 明細を今の品物名で入力に戻す。品物が消えていたらNotFound。
func currentLineItems(ctx context.Context, r repo.TxRepos, t model.Transaction) ([]LineItemInput, error) {
	items := make([]LineItemInput, 0, len(t.Items))
	for _, it := range t.Items {
		g, err := r.Goods().FindByID(ctx, it.GoodID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, NewNotFound("good", it.GoodName)
			}
			return nil, storeError(err)
		}
		items = append(items, LineItemInput{Name: g.Name, Quantity: it.Quantity})
	}
	return items, nil
}

func (u *TransactionUsecase) recordMovements(ctx context.Context, r repo.TxRepos, txID int64, movements []model.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	for i := range movements {
		id := txID
		movements[i].TransactionID = &id
	}
	if err := r.StockMovements().CreateBulk(ctx, movements); err != nil {
		return storeError(err)
	}
	return nil
}

func (u *TransactionUsecase) lockGoods(ctx context.Context, keys []string) (func(), error) {
	return lockGoods(ctx, u.locker, keys)
}

func (u *TransactionUsecase) logClamped(txID int64, movements []model.StockMovement) {
	for _, mv := range movements {
		if mv.Clamped() {
			u.logger.Warn("sell reversal clamped at zero",
				zap.Int64("transaction_id", txID),
				zap.Int64("good_id", mv.GoodID),
				zap.Int64("requested", mv.Requested),
				zap.Int64("applied", mv.Applied),
			)
		}
	}
}

// コミット後に送る。失敗しても取引は取り消さない。
func (u *TransactionUsecase) publish(ctx context.Context, typ model.TransactionEventType, t model.Transaction) {
	if u.events == nil {
		return
	}
	ev := model.TransactionEvent{
		EventID:     u.ids.NewID(),
		Type:        typ,
		Transaction: t,
		OccurredAt:  u.clock.Now(),
	}
	if err := u.events.Publish(ctx, ev); err != nil {
		u.logger.Warn("publish transaction event failed",
			zap.String("event_type", string(typ)),
			zap.Int64("transaction_id", t.ID),
			zap.Error(err),
		)
	}
}

func (u *TransactionUsecase) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func lineItemNames(items []LineItemInput) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, strings.TrimSpace(it.Name))
	}
	return names
}

// 明細の品物名（記録時の名前と、改名されていれば今の名前）
func goodNames(ctx context.Context, r repo.TxRepos, items []model.TransactionItem) ([]string, error) {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.GoodName)
		g, err := r.Goods().FindByID(ctx, it.GoodID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError(err)
		}
		if g.Name != it.GoodName {
			names = append(names, g.Name)
		}
	}
	return names, nil
}

func coveredBy(names, locked []string) bool {
	set := make(map[string]struct{}, len(locked))
	for _, k := range locked {
		set[k] = struct{}{}
	}
	for _, n := range names {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

