package memory

import (
	"context"
	"sort"
	"time"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"
)

type transactionRepo struct{ r *repos }

func (t transactionRepo) Create(ctx context.Context, in model.Transaction) (model.Transaction, error) {
	var out model.Transaction
	err := t.r.write(ctx, func(st *state, now time.Time) error {
		st.seq.transactions++
		in = copyTransaction(in)
		in.ID = st.seq.transactions
		in.CreatedAt = now
		in.UpdatedAt = now
		assignItemIDs(st, &in, now)
		st.transactions[in.ID] = in
		out = copyTransaction(in)
		return nil
	})
	return out, err
}

func (t transactionRepo) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	var out model.Transaction
	err := t.r.do(ctx, func(st *state, _ time.Time) error {
		found, ok := st.transactions[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = copyTransaction(found)
		return nil
	})
	return out, err
}

func (t transactionRepo) List(ctx context.Context, f repo.TransactionFilter) ([]model.Transaction, error) {
	out := []model.Transaction{}
	err := t.r.do(ctx, func(st *state, _ time.Time) error {
		for _, tx := range st.transactions {
			if matches(tx, f) {
				out = append(out, copyTransaction(tx))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, err
}

func matches(tx model.Transaction, f repo.TransactionFilter) bool {
	hunterHit := f.HunterID != nil && tx.HunterID != nil && *tx.HunterID == *f.HunterID
	merchantHit := f.MerchantID != nil && tx.MerchantID != nil && *tx.MerchantID == *f.MerchantID
	if (f.HunterID != nil || f.MerchantID != nil) && !hunterHit && !merchantHit {
		return false
	}
	if f.From != nil && tx.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.Date.After(*f.To) {
		return false
	}
	if f.Kind != nil && tx.Kind != *f.Kind {
		return false
	}
	return true
}

func (t transactionRepo) Update(ctx context.Context, in model.Transaction) error {
	return t.r.write(ctx, func(st *state, now time.Time) error {
		cur, ok := st.transactions[in.ID]
		if !ok {
			return repo.ErrNotFound
		}
		in = copyTransaction(in)
		in.CreatedAt = cur.CreatedAt
		in.UpdatedAt = now
		assignItemIDs(st, &in, now)
		st.transactions[in.ID] = in
		return nil
	})
}

func (t transactionRepo) Delete(ctx context.Context, id int64) error {
	return t.r.write(ctx, func(st *state, _ time.Time) error {
		if _, ok := st.transactions[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.transactions, id)
		return nil
	})
}

func assignItemIDs(st *state, tx *model.Transaction, now time.Time) {
	for i := range tx.Items {
		st.seq.items++
		tx.Items[i].ID = st.seq.items
		tx.Items[i].TransactionID = tx.ID
		tx.Items[i].CreatedAt = now
	}
}
