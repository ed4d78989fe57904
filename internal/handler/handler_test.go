package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"innledger/internal/config"
	"innledger/internal/domain/model"
	"innledger/internal/handler"
	"innledger/internal/infra/event"
	"innledger/internal/infra/lock"
	"innledger/internal/infra/memory"
	"innledger/internal/server"
	"innledger/internal/usecase"
	"innledger/internal/validator"
)

type clock struct{}

func (clock) Now() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

type ids struct{}

func (ids) NewID() string { return "ev" }

func newTestServer(t *testing.T) (*echo.Echo, *memory.Store) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	r := store.Repos()
	_, err := r.Goods().Create(ctx, model.Good{Name: "Sword", Material: model.MaterialSteel, Weight: 3, Value: decimal.NewFromInt(100), Quantity: 5})
	require.NoError(t, err)
	_, err = r.Hunters().Create(ctx, model.Hunter{Name: "Geralt", Race: model.RaceWitcher, Location: model.LocationBrugge})
	require.NoError(t, err)
	_, err = r.Merchants().Create(ctx, model.Merchant{Name: "Fenn", Location: model.LocationCintra, Type: model.MerchantTypeTrader})
	require.NoError(t, err)

	locker := lock.NewLocalLocker()
	v := validator.NewInputValidator()
	logger := zap.NewNop()

	e := server.New(config.Config{RequestTimeout: time.Second}, logger, server.Handlers{
		Transactions: handler.NewTransactionHandler(usecase.NewTransactionUsecase(store, locker, event.NopPublisher{}, clock{}, ids{}, logger)),
		Goods:        handler.NewGoodHandler(usecase.NewGoodUsecase(store, locker, v, logger)),
		Parties:      handler.NewPartyHandler(usecase.NewPartyUsecase(store, v)),
	})
	return e, store
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Error
}

func TestTransactions_CreateAndGet(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/transactions", `{"hunterName":"Geralt","goods":[{"name":"Sword","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created usecase.TransactionOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "purchase", created.Type)
	assert.True(t, decimal.NewFromInt(200).Equal(created.TotalValue))

	rec = do(e, http.MethodGet, "/transactions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/goods/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var g model.Good
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, int64(3), g.Quantity)
}

func TestTransactions_ErrorStatuses(t *testing.T) {
	e, _ := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		errMsg string
	}{
		{"insufficient stock", http.MethodPost, "/transactions", `{"hunterName":"Geralt","goods":[{"name":"Sword","quantity":9}]}`, http.StatusConflict, "insufficient stock for the good: Sword"},
		{"unknown good", http.MethodPost, "/transactions", `{"hunterName":"Geralt","goods":[{"name":"Axe","quantity":1}]}`, http.StatusNotFound, "good not found: Axe"},
		{"no counterparty", http.MethodPost, "/transactions", `{"goods":[{"name":"Sword","quantity":1}]}`, http.StatusBadRequest, "you must specify a hunter or a merchant"},
		{"validation", http.MethodPost, "/transactions", `{"merchantName":"Fenn","goods":[{"name":"Sword","quantity":0}]}`, http.StatusUnprocessableEntity, "quantity must be greater than 0"},
		{"broken json", http.MethodPost, "/transactions", `{"hunterName":`, http.StatusBadRequest, "invalid body"},
		{"bad id", http.MethodGet, "/transactions/abc", "", http.StatusBadRequest, "invalid id"},
		{"missing transaction", http.MethodDelete, "/transactions/42", "", http.StatusNotFound, "transaction not found"},
		{"unknown patch field", http.MethodPatch, "/transactions/1", `{"totalValue":1}`, http.StatusBadRequest, "update not allowed"},
		{"list without query", http.MethodGet, "/transactions", "", http.StatusBadRequest, "specify name, or start and end"},
		{"unknown route", http.MethodGet, "/taverns", "", http.StatusNotImplemented, "not implemented"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Contains(t, decodeError(t, rec), tc.errMsg)
		})
	}
}

func TestTransactions_UpdateDeleteAndList(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/transactions", `{"merchantName":"Fenn","goods":[{"name":"Sword","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPatch, "/transactions/1", `{"goods":[{"name":"Sword","quantity":3}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/transactions?name=Fenn", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []usecase.TransactionOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].Goods[0].Quantity)

	// 日付だけのendはその日いっぱいを含む
	rec = do(e, http.MethodGet, "/transactions?start=2024-05-01&end=2024-05-01&type=sell", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/transactions?start=2024-05-01&end=2024-05-01&type=purchase", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/transactions?start=2024-05-01&end=2024-05-01&type=gift", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/transactions?name=Geralt", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/transactions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/goods/1", "")
	var g model.Good
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, int64(5), g.Quantity)
}

func TestGoodsAndParties(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/goods", `{"name":"Swallow Potion","material":"Herbs","weight":0.2,"value":"12.5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/goods", `{"name":"Sword","material":"Iron","weight":1,"value":"3"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/goods", `{"name":"Axe","material":"Gold","weight":1,"value":"3"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodPatch, "/goods/1", `{"quantity":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/goods/1/movements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var movements []model.StockMovement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementReasonManual, movements[0].Reason)

	rec = do(e, http.MethodPost, "/hunters", `{"name":"Ciri","age":21,"race":"Witcher","location":"Cintra"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPatch, "/hunters/1", `{"weapon":"sword"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/merchants?location=Cintra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var merchants []model.Merchant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merchants))
	assert.Len(t, merchants, 1)

	rec = do(e, http.MethodDelete, "/merchants/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQueryFormUpdateAndDelete(t *testing.T) {
	e, store := newTestServer(t)
	ctx := context.Background()

	rec := do(e, http.MethodPost, "/goods", `{"name":"Steel Axe","material":"Steel","weight":2,"value":"40","quantity":4}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// 条件に合う品物すべてに数量を設定
	rec = do(e, http.MethodPatch, "/goods?material=Steel", `{"quantity":9}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var goods []model.Good
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &goods))
	require.Len(t, goods, 2)
	for _, g := range goods {
		assert.Equal(t, int64(9), g.Quantity)
		movements, err := store.Repos().StockMovements().ListByGoodID(ctx, g.ID, 10)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, model.MovementReasonManual, movements[0].Reason)
	}

	rec = do(e, http.MethodPatch, "/goods?name=Sword", `{"color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "update not allowed", decodeError(t, rec))

	rec = do(e, http.MethodPatch, "/goods?name=Mace", `{"weight":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPatch, "/goods", `{"weight":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/goods?name=Steel%20Axe", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	goods = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &goods))
	require.Len(t, goods, 1)
	assert.Equal(t, "Steel Axe", goods[0].Name)

	rec = do(e, http.MethodDelete, "/goods?name=Steel%20Axe", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// hunters / merchants
	rec = do(e, http.MethodPatch, "/hunters?name=Geralt", `{"location":"Verden"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var hunters []model.Hunter
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hunters))
	require.Len(t, hunters, 1)
	assert.Equal(t, model.LocationVerden, hunters[0].Location)

	rec = do(e, http.MethodPatch, "/hunters?name=Geralt", `{"weapon":"sword"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/hunters?location=Brugge", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/hunters?location=Verden", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPatch, "/merchants?location=Cintra", `{"type":"blacksmith"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var merchants []model.Merchant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merchants))
	require.Len(t, merchants, 1)
	assert.Equal(t, model.MerchantTypeBlacksmith, merchants[0].Type)

	rec = do(e, http.MethodDelete, "/merchants", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/merchants?name=Fenn", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodGet, "/merchants", "")
	require.Equal(t, http.StatusOK, rec.Code)
	merchants = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merchants))
	assert.Empty(t, merchants)
}
