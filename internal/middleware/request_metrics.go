package middleware

import (
	"strconv"
	"time"

	"bakery/internal/metrics"

	"github.com/labstack/echo/v4"
)

// ルート単位でリクエスト数とレイテンシを記録する
func RequestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// ステータスを確定させる
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(route, strconv.Itoa(c.Response().Status), time.Since(start))
			return nil
		}
	}
}
