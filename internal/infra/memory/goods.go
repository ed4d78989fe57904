package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

type goodRepo struct{ r *repos }

func (g goodRepo) Create(ctx context.Context, in model.Good) (model.Good, error) {
	var out model.Good
	err := g.r.write(ctx, func(st *state, now time.Time) error {
		if goodNameTaken(st, in.Name, 0) {
			return repo.ErrConflict
		}
		if in.Quantity < 0 {
			return repo.ErrInsufficientStock
		}
		st.seq.goods++
		in.ID = st.seq.goods
		in.CreatedAt = now
		in.UpdatedAt = now
		st.goods[in.ID] = in
		out = in
		return nil
	})
	return out, err
}

func (g goodRepo) FindByID(ctx context.Context, id int64) (model.Good, error) {
	var out model.Good
	err := g.r.do(ctx, func(st *state, _ time.Time) error {
		found, ok := st.goods[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = found
		return nil
	})
	return out, err
}

func (g goodRepo) FindByName(ctx context.Context, name string) (model.Good, error) {
	var out model.Good
	err := g.r.do(ctx, func(st *state, _ time.Time) error {
		for _, found := range st.goods {
			if found.Name == name {
				out = found
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (g goodRepo) List(ctx context.Context, q repo.GoodListQuery) ([]model.Good, error) {
	out := []model.Good{}
	err := g.r.do(ctx, func(st *state, _ time.Time) error {
		name := strings.TrimSpace(q.Name)
		for _, found := range st.goods {
			if name != "" && found.Name != name {
				continue
			}
			if q.Material != "" && string(found.Material) != q.Material {
				continue
			}
			out = append(out, found)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (g goodRepo) Update(ctx context.Context, in model.Good) error {
	return g.r.write(ctx, func(st *state, now time.Time) error {
		cur, ok := st.goods[in.ID]
		if !ok {
			return repo.ErrNotFound
		}
		if goodNameTaken(st, in.Name, in.ID) {
			return repo.ErrConflict
		}
		cur.Name = in.Name
		cur.Description = in.Description
		cur.Material = in.Material
		cur.Weight = in.Weight
		cur.Value = in.Value
		cur.UpdatedAt = now
		st.goods[in.ID] = cur
		return nil
	})
}

func (g goodRepo) Delete(ctx context.Context, id int64) error {
	return g.r.write(ctx, func(st *state, _ time.Time) error {
		if _, ok := st.goods[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.goods, id)
		return nil
	})
}

func goodNameTaken(st *state, name string, exceptID int64) bool {
	for id, g := range st.goods {
		if id != exceptID && g.Name == name {
			return true
		}
	}
	return false
}

type inventoryRepo struct{ r *repos }

func (i inventoryRepo) AdjustQuantity(ctx context.Context, goodID int64, delta int64) (int64, error) {
	var quantity int64
	err := i.r.write(ctx, func(st *state, now time.Time) error {
		g, ok := st.goods[goodID]
		if !ok {
			return repo.ErrNotFound
		}
		if g.Quantity+delta < 0 {
			return repo.ErrInsufficientStock
		}
		g.Quantity += delta
		g.UpdatedAt = now
		st.goods[goodID] = g
		quantity = g.Quantity
		return nil
	})
	return quantity, err
}

func (i inventoryRepo) AdjustQuantityClamped(ctx context.Context, goodID int64, delta int64) (int64, int64, error) {
	var applied, quantity int64
	err := i.r.write(ctx, func(st *state, now time.Time) error {
		g, ok := st.goods[goodID]
		if !ok {
			return repo.ErrNotFound
		}
		next := g.Quantity + delta
		if next < 0 {
			next = 0
		}
		applied = next - g.Quantity
		g.Quantity = next
		g.UpdatedAt = now
		st.goods[goodID] = g
		quantity = next
		return nil
	})
	return applied, quantity, err
}

type movementRepo struct{ r *repos }

func (m movementRepo) CreateBulk(ctx context.Context, movements []model.StockMovement) error {
	return m.r.write(ctx, func(st *state, now time.Time) error {
		for _, mv := range movements {
			st.seq.movements++
			mv.ID = st.seq.movements
			mv.TransactionID = copyID(mv.TransactionID)
			mv.CreatedAt = now
			st.movements = append(st.movements, mv)
		}
		return nil
	})
}

func (m movementRepo) ListByGoodID(ctx context.Context, goodID int64, limit int) ([]model.StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := []model.StockMovement{}
	err := m.r.do(ctx, func(st *state, _ time.Time) error {
		//新しい順
		for i := len(st.movements) - 1; i >= 0 && len(out) < limit; i-- {
			if st.movements[i].GoodID == goodID {
				out = append(out, st.movements[i])
			}
		}
		return nil
	})
	return out, err
}
