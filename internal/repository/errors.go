package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 一意制約違反（名前の重複など）
	ErrConflict = errors.New("conflict")

	// 在庫が足りず減算できない
	ErrInsufficientStock = errors.New("insufficient stock")
)
