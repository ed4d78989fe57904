package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"innledger/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// エラーの種類ごとのステータス
var statusByKind = map[usecase.ErrorKind]int{
	usecase.KindBadRequest:        http.StatusBadRequest,
	usecase.KindNotFound:          http.StatusNotFound,
	usecase.KindInsufficientStock: http.StatusConflict,
	usecase.KindConflict:          http.StatusConflict,
	usecase.KindValidation:        http.StatusUnprocessableEntity,
	usecase.KindUnavailable:       http.StatusServiceUnavailable,
	usecase.KindInternal:          http.StatusInternalServerError,
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		status, found := statusByKind[ae.Kind]
		if !found || status == http.StatusInternalServerError {
			// 内部の詳細は返さない
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
		if ae.Kind == usecase.KindUnavailable {
			c.Response().Header().Set("Retry-After", "1")
		}
		return c.JSON(status, ErrorResponse{Error: ae.Message})
	}

	//500
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var errUnknownField = errors.New("update not allowed")

// PATCH用。知らない項目が含まれていたら拒否する。
func bindStrict(c echo.Context, dst interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("invalid body")
		}
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return errUnknownField
		}
		return errors.New("invalid body")
	}
	return nil
}
