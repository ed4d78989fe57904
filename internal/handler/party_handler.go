package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	repo "innledger/internal/repository"
	"innledger/internal/usecase"
)

// /hunters と /merchants のHTTP
type PartyHandler struct {
	uc *usecase.PartyUsecase
}

// DI
func NewPartyHandler(uc *usecase.PartyUsecase) *PartyHandler {
	return &PartyHandler{uc: uc}
}

func (h *PartyHandler) RegisterRoutes(e *echo.Echo) {
	hg := e.Group("/hunters")
	hg.POST("", h.createHunter)
	hg.GET("", h.listHunters)
	hg.PATCH("", h.updateHuntersWhere)
	hg.DELETE("", h.deleteHuntersWhere)
	hg.GET("/:id", h.getHunter)
	hg.PATCH("/:id", h.updateHunter)
	hg.DELETE("/:id", h.deleteHunter)

	mg := e.Group("/merchants")
	mg.POST("", h.createMerchant)
	mg.GET("", h.listMerchants)
	mg.PATCH("", h.updateMerchantsWhere)
	mg.DELETE("", h.deleteMerchantsWhere)
	mg.GET("/:id", h.getMerchant)
	mg.PATCH("/:id", h.updateMerchant)
	mg.DELETE("/:id", h.deleteMerchant)
}

func partyQuery(c echo.Context) repo.PartyListQuery {
	return repo.PartyListQuery{Name: c.QueryParam("name"), Location: c.QueryParam("location")}
}

// ---- hunters ----

func (h *PartyHandler) createHunter(c echo.Context) error {
	var req usecase.CreateHunterInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	out, err := h.uc.CreateHunter(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PartyHandler) listHunters(c echo.Context) error {
	out, err := h.uc.ListHunters(c.Request().Context(), partyQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) getHunter(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	out, err := h.uc.GetHunter(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) updateHunter(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	var req usecase.UpdateHunterInput
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.uc.UpdateHunter(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) deleteHunter(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	if err := h.uc.DeleteHunter(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "hunter deleted"})
}

// ---- merchants ----

func (h *PartyHandler) createMerchant(c echo.Context) error {
	var req usecase.CreateMerchantInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	out, err := h.uc.CreateMerchant(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PartyHandler) listMerchants(c echo.Context) error {
	out, err := h.uc.ListMerchants(c.Request().Context(), partyQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) getMerchant(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	out, err := h.uc.GetMerchant(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) updateMerchant(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	var req usecase.UpdateMerchantInput
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.uc.UpdateMerchant(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) deleteMerchant(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	if err := h.uc.DeleteMerchant(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "merchant deleted"})
}

// ---- query form ----

func (h *PartyHandler) updateHuntersWhere(c echo.Context) error {
	var req usecase.UpdateHunterInput
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.uc.UpdateHuntersWhere(c.Request().Context(), partyQuery(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) deleteHuntersWhere(c echo.Context) error {
	out, err := h.uc.DeleteHuntersWhere(c.Request().Context(), partyQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) updateMerchantsWhere(c echo.Context) error {
	var req usecase.UpdateMerchantInput
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.uc.UpdateMerchantsWhere(c.Request().Context(), partyQuery(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PartyHandler) deleteMerchantsWhere(c echo.Context) error {
	out, err := h.uc.DeleteMerchantsWhere(c.Request().Context(), partyQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
