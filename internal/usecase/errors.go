package usecase

import (
	"context"
	"errors"
	"fmt"

	repo "innledger/internal/repository"
)

// エラーの種類。handlerでHTTPステータスに対応付ける。
type ErrorKind string

const (
	KindBadRequest        ErrorKind = "bad_request"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindValidation        ErrorKind = "validation"
	KindConflict          ErrorKind = "conflict"
	KindUnavailable       ErrorKind = "unavailable"
	KindInternal          ErrorKind = "internal"
)

type AppError struct {
	Kind    ErrorKind
	Entity  string // not_found / insufficient_stock の対象（good, hunter など）
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// 呼び出し側が再試行してよいか
func (e *AppError) Retryable() bool {
	return e.Kind == KindUnavailable || (e.Kind == KindConflict && e.Entity == "transaction")
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

func IsKind(err error, kind ErrorKind) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Kind == kind
}

func NewBadRequest(message string) error {
	return &AppError{Kind: KindBadRequest, Message: message}
}

func NewNotFound(entity string, key string) error {
	msg := entity + " not found"
	if key != "" {
		msg = fmt.Sprintf("%s not found: %s", entity, key)
	}
	return &AppError{Kind: KindNotFound, Entity: entity, Message: msg}
}

func NewInsufficientStock(goodName string) error {
	return &AppError{
		Kind:    KindInsufficientStock,
		Entity:  "good",
		Message: "insufficient stock for the good: " + goodName,
	}
}

func NewValidation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewConflict(entity string, message string) error {
	return &AppError{Kind: KindConflict, Entity: entity, Message: message}
}

// ストアやロックなど協力先の失敗をまとめる。タイムアウトは再試行可能として返す。
func collaboratorError(message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AppError{Kind: KindUnavailable, Message: message + " timed out", Err: err}
	}
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

func storeError(err error) error {
	return collaboratorError("db error", err)
}

// リポジトリのエラーを対象名つきで変換する
func mapRepoError(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return NewNotFound(entity, "")
	case errors.Is(err, repo.ErrConflict):
		return NewConflict(entity, entity+" with this name already exists")
	case errors.Is(err, repo.ErrInsufficientStock):
		return NewValidation("quantity must not be negative")
	}
	return storeError(err)
}
