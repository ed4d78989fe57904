package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	repo "innledger/internal/repository"
	"innledger/internal/usecase"
)

// /goods のHTTP
type GoodHandler struct {
	uc *usecase.GoodUsecase
}

// DI
func NewGoodHandler(uc *usecase.GoodUsecase) *GoodHandler {
	return &GoodHandler{uc: uc}
}

func (h *GoodHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/goods")
	g.POST("", h.create)
	g.GET("", h.list)
	g.PATCH("", h.updateWhere)
	g.DELETE("", h.deleteWhere)
	g.GET("/:id", h.get)
	g.GET("/:id/movements", h.movements)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *GoodHandler) create(c echo.Context) error {
	var req usecase.CreateGoodInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	out, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func goodQuery(c echo.Context) repo.GoodListQuery {
	return repo.GoodListQuery{Name: c.QueryParam("name"), Material: c.QueryParam("material")}
}

func (h *GoodHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), goodQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GoodHandler) get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GoodHandler) movements(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	// limit（default 50）
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.Movements(c.Request().Context(), id, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GoodHandler) update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	var req usecase.UpdateGoodInput
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.uc.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GoodHandler) delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "good deleted"})
}

// ?name= / ?material= に合う品物をまとめて更新
func (h *GoodHandler) updateWhere(c echo.Context) error {
	var req usecase.UpdateGoodInput
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.uc.UpdateWhere(c.Request().Context(), goodQuery(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GoodHandler) deleteWhere(c echo.Context) error {
	out, err := h.uc.DeleteWhere(c.Request().Context(), goodQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
