package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

// 取引の明細入力（品物名と数量）
type LineItemInput struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// 解決済みの明細と合計、反映した在庫調整
type ResolvedLines struct {
	Items     []model.TransactionItem
	Total     decimal.Decimal
	Movements []model.StockMovement
}

// LineItemResolver は品物名の明細を在庫品に結びつけ、在庫を増減する。
// 全件を引いて検証してから反映するので、失敗時に在庫を途中まで動かすことはない。
type LineItemResolver struct{}

func NewLineItemResolver() *LineItemResolver {
	return &LineItemResolver{}
}

// 明細の形式チェック
func ValidateLineItems(items []LineItemInput) error {
	if len(items) == 0 {
		return NewValidation("goods must contain at least one item")
	}
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return NewValidation(fmt.Sprintf("goods[%d].name is required", i))
		}
		if it.Quantity <= 0 {
			return NewValidation(fmt.Sprintf("goods[%d].quantity must be greater than 0", i))
		}
	}
	return nil
}

type plannedLine struct {
	good model.Good
	qty  int64
}

// Resolve は明細を解決し、purchaseなら在庫を減らし、sellなら増やす。
// 合計は解決時点の単価で計算する。
func (r *LineItemResolver) Resolve(ctx context.Context, repos repo.TxRepos, items []LineItemInput, kind model.TransactionKind) (ResolvedLines, error) {
	plan := make([]plannedLine, 0, len(items))
	need := map[int64]int64{}

	// 1. 全部引く
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		g, err := repos.Goods().FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ResolvedLines{}, NewNotFound("good", name)
			}
			return ResolvedLines{}, storeError(err)
		}
		plan = append(plan, plannedLine{good: g, qty: it.Quantity})
		need[g.ID] += it.Quantity
	}

	// 2. 同じ品物が複数行あっても合計で在庫を見る
	if kind == model.TransactionKindPurchase {
		for _, p := range plan {
			if p.good.Quantity < need[p.good.ID] {
				return ResolvedLines{}, NewInsufficientStock(p.good.Name)
			}
		}
	}

	// 3. 反映
	out := ResolvedLines{Total: decimal.Zero}
	for _, p := range plan {
		delta, reason := p.qty, model.MovementReasonSell
		if kind == model.TransactionKindPurchase {
			delta, reason = -p.qty, model.MovementReasonPurchase
		}

		q, err := repos.Inventory().AdjustQuantity(ctx, p.good.ID, delta)
		if err != nil {
			switch {
			case errors.Is(err, repo.ErrInsufficientStock):
				// 読んだ後に他から減らされた
				return ResolvedLines{}, NewInsufficientStock(p.good.Name)
			case errors.Is(err, repo.ErrNotFound):
				return ResolvedLines{}, NewNotFound("good", p.good.Name)
			}
			return ResolvedLines{}, storeError(err)
		}

		out.Items = append(out.Items, model.TransactionItem{
			GoodID:    p.good.ID,
			GoodName:  p.good.Name,
			UnitValue: p.good.Value,
			Quantity:  p.qty,
		})
		out.Total = out.Total.Add(p.good.Value.Mul(decimal.NewFromInt(p.qty)))
		out.Movements = append(out.Movements, model.StockMovement{
			GoodID:        p.good.ID,
			Reason:        reason,
			Requested:     delta,
			Applied:       delta,
			QuantityAfter: q,
		})
	}
	return out, nil
}

// Reverse は取引が在庫に与えた影響を打ち消す。
// purchaseの戻しは加算するだけ。sellの戻しは0で止める（足りない分は戻らない）。
// すでに削除された品物の明細は飛ばす。
func (r *LineItemResolver) Reverse(ctx context.Context, repos repo.TxRepos, t model.Transaction) ([]model.StockMovement, error) {
	movements := make([]model.StockMovement, 0, len(t.Items))
	for _, it := range t.Items {
		var (
			mv  model.StockMovement
			err error
		)
		switch t.Kind {
		case model.TransactionKindPurchase:
			var q int64
			q, err = repos.Inventory().AdjustQuantity(ctx, it.GoodID, it.Quantity)
			mv = model.StockMovement{
				Reason:        model.MovementReasonReversePurchase,
				Requested:     it.Quantity,
				Applied:       it.Quantity,
				QuantityAfter: q,
			}
		case model.TransactionKindSell:
			var applied, q int64
			applied, q, err = repos.Inventory().AdjustQuantityClamped(ctx, it.GoodID, -it.Quantity)
			mv = model.StockMovement{
				Reason:        model.MovementReasonReverseSell,
				Requested:     -it.Quantity,
				Applied:       applied,
				QuantityAfter: q,
			}
		default:
			return nil, &AppError{Kind: KindInternal, Message: "unknown transaction type: " + string(t.Kind)}
		}
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, storeError(err)
		}
		mv.GoodID = it.GoodID
		movements = append(movements, mv)
	}
	return movements, nil
}
