package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

type hunterRepo struct{ r *repos }

func (h hunterRepo) Create(ctx context.Context, in model.Hunter) (model.Hunter, error) {
	var out model.Hunter
	err := h.r.write(ctx, func(st *state, now time.Time) error {
		for _, cur := range st.hunters {
			if cur.Name == in.Name {
				return repo.ErrConflict
			}
		}
		st.seq.hunters++
		in.ID = st.seq.hunters
		in.CreatedAt = now
		in.UpdatedAt = now
		st.hunters[in.ID] = in
		out = in
		return nil
	})
	return out, err
}

func (h hunterRepo) FindByID(ctx context.Context, id int64) (model.Hunter, error) {
	var out model.Hunter
	err := h.r.do(ctx, func(st *state, _ time.Time) error {
		found, ok := st.hunters[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = found
		return nil
	})
	return out, err
}

func (h hunterRepo) FindByName(ctx context.Context, name string) (model.Hunter, error) {
	var out model.Hunter
	err := h.r.do(ctx, func(st *state, _ time.Time) error {
		for _, found := range st.hunters {
			if found.Name == name {
				out = found
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (h hunterRepo) List(ctx context.Context, q repo.PartyListQuery) ([]model.Hunter, error) {
	out := []model.Hunter{}
	err := h.r.do(ctx, func(st *state, _ time.Time) error {
		name := strings.TrimSpace(q.Name)
		for _, found := range st.hunters {
			if name != "" && found.Name != name {
				continue
			}
			if q.Location != "" && string(found.Location) != q.Location {
				continue
			}
			out = append(out, found)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (h hunterRepo) Update(ctx context.Context, in model.Hunter) error {
	return h.r.write(ctx, func(st *state, now time.Time) error {
		cur, ok := st.hunters[in.ID]
		if !ok {
			return repo.ErrNotFound
		}
		for id, other := range st.hunters {
			if id != in.ID && other.Name == in.Name {
				return repo.ErrConflict
			}
		}
		in.CreatedAt = cur.CreatedAt
		in.UpdatedAt = now
		st.hunters[in.ID] = in
		return nil
	})
}

func (h hunterRepo) Delete(ctx context.Context, id int64) error {
	return h.r.write(ctx, func(st *state, _ time.Time) error {
		if _, ok := st.hunters[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.hunters, id)
		return nil
	})
}

type merchantRepo struct{ r *repos }

func (m merchantRepo) Create(ctx context.Context, in model.Merchant) (model.Merchant, error) {
	var out model.Merchant
	err := m.r.write(ctx, func(st *state, now time.Time) error {
		for _, cur := range st.merchants {
			if cur.Name == in.Name {
				return repo.ErrConflict
			}
		}
		st.seq.merchants++
		in.ID = st.seq.merchants
		in.CreatedAt = now
		in.UpdatedAt = now
		st.merchants[in.ID] = in
		out = in
		return nil
	})
	return out, err
}

func (m merchantRepo) FindByID(ctx context.Context, id int64) (model.Merchant, error) {
	var out model.Merchant
	err := m.r.do(ctx, func(st *state, _ time.Time) error {
		found, ok := st.merchants[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = found
		return nil
	})
	return out, err
}

func (m merchantRepo) FindByName(ctx context.Context, name string) (model.Merchant, error) {
	var out model.Merchant
	err := m.r.do(ctx, func(st *state, _ time.Time) error {
		for _, found := range st.merchants {
			if found.Name == name {
				out = found
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (m merchantRepo) List(ctx context.Context, q repo.PartyListQuery) ([]model.Merchant, error) {
	out := []model.Merchant{}
	err := m.r.do(ctx, func(st *state, _ time.Time) error {
		name := strings.TrimSpace(q.Name)
		for _, found := range st.merchants {
			if name != "" && found.Name != name {
				continue
			}
			if q.Location != "" && string(found.Location) != q.Location {
				continue
			}
			out = append(out, found)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (m merchantRepo) Update(ctx context.Context, in model.Merchant) error {
	return m.r.write(ctx, func(st *state, now time.Time) error {
		cur, ok := st.merchants[in.ID]
		if !ok {
			return repo.ErrNotFound
		}
		for id, other := range st.merchants {
			if id != in.ID && other.Name == in.Name {
				return repo.ErrConflict
			}
		}
		in.CreatedAt = cur.CreatedAt
		in.UpdatedAt = now
		st.merchants[in.ID] = in
		return nil
	})
}

func (m merchantRepo) Delete(ctx context.Context, id int64) error {
	return m.r.write(ctx, func(st *state, _ time.Time) error {
		if _, ok := st.merchants[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.merchants, id)
		return nil
	})
}
