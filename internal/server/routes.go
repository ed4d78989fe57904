package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"innledger/internal/handler"
)

// RouteRegistrar は自分のルートを登録できるhandler
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo)
}

type Handlers struct {
	Transactions *handler.TransactionHandler
	Goods        *handler.GoodHandler
	Parties      *handler.PartyHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, r := range []RouteRegistrar{h.Transactions, h.Goods, h.Parties} {
		r.RegisterRoutes(e)
	}

	// 未定義のルートは501
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotImplemented, handler.ErrorResponse{Error: "not implemented"})
	})
}
