package observability

import (
	"go.uber.org/zap"
)

// prodならJSON、それ以外は読みやすいコンソール出力
func NewLogger(prod bool) (*zap.Logger, error) {
	if prod {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
