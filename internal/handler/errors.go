package handler

import (
	"log/slog"
	"net/http"

	"bakery/internal/middleware"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// usecaseのエラー種別をHTTPステータスへ
func statusOf(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindUnauthenticated:
		return http.StatusUnauthorized
	case usecase.KindInvalidInput, usecase.KindInvalidPickupWindow, usecase.KindEmptyCart:
		return http.StatusBadRequest
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindCommitInProgress:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	ue, ok := usecase.AsError(err)
	if !ok {
		slog.Error("unhandled error", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	status := statusOf(ue.Kind)
	if status >= http.StatusInternalServerError {
		// 中身は利用者に返さない
		slog.Error("request failed", "path", c.Path(), "kind", ue.Kind, "error", err)
	}
	return c.JSON(status, ErrorResponse{Error: ue.Message})
}

// middleware.ActorJWT が c.Set した値を取り出す
func getActorIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxActorIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
