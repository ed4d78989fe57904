package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"innledger/internal/usecase"
)

// /transactions のHTTP
type TransactionHandler struct {
	uc *usecase.TransactionUsecase
}

// DI
func NewTransactionHandler(uc *usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

type TransactionRequest struct {
	HunterName   string                  `json:"hunterName"`
	MerchantName string                  `json:"merchantName"`
	Goods        []usecase.LineItemInput `json:"goods"`
}

func (h *TransactionHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/transactions")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *TransactionHandler) create(c echo.Context) error {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), usecase.CreateTransactionInput{
		HunterName:   req.HunterName,
		MerchantName: req.MerchantName,
		Goods:        req.Goods,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *TransactionHandler) get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	out, err := h.uc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?name= か ?start=&end=[&type=] のどちらか
func (h *TransactionHandler) list(c echo.Context) error {
	ctx := c.Request().Context()

	if name := c.QueryParam("name"); name != "" {
		out, err := h.uc.ListByName(ctx, name)
		if err != nil {
			return writeError(c, err)
		}
		if len(out) == 0 {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no transactions found for " + name})
		}
		return c.JSON(http.StatusOK, out)
	}

	startRaw, endRaw := c.QueryParam("start"), c.QueryParam("end")
	if startRaw == "" || endRaw == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "specify name, or start and end"})
	}
	start, err := parseDate(startRaw, false)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid start"})
	}
	end, err := parseDate(endRaw, true)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid end"})
	}

	out, err := h.uc.ListByDateRange(ctx, usecase.DateRangeInput{Start: start, End: end, Type: c.QueryParam("type")})
	if err != nil {
		return writeError(c, err)
	}
	if len(out) == 0 {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no transactions found in the given range"})
	}
	return c.JSON(http.StatusOK, out)
}

// RFC3339 か YYYY-MM-DD。日付だけのendはその日の終わりまで含める。
func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (h *TransactionHandler) update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	var req TransactionRequest
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, err := h.uc.Update(c.Request().Context(), id, usecase.UpdateTransactionInput{
		HunterName:   req.HunterName,
		MerchantName: req.MerchantName,
		Goods:        req.Goods,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "transaction deleted"})
}
