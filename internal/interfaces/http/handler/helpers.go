package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/logger"
	"github.com/plfog/backoffice/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// middlewareLogger is the request-scoped logger set by the logging middleware
func middlewareLogger(c *gin.Context) *zap.Logger {
	return logger.FromGin(c)
}

// money renders a decimal amount the way reports show it
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

// parseDay reads a YYYY-MM-DD request field
func parseDay(field, value string) (time.Time, error) {
	t, err := shared.ParseDate(value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Invalid "+field+": expected YYYY-MM-DD")
	}
	return t, nil
}

func hasPermission(c *gin.Context, codename string) bool {
	return middleware.HasPermission(c, codename)
}
