package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "github.com/zephyros1603/urbanup/internal/errors"
)

// errorBody is the stable error envelope: a machine code plus a human
// message. Internal failures are not leaked to clients.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondError(c echo.Context, err error) error {
	code := apperrors.Code(err)
	if code == "" {
		logrus.WithError(err).Error("unhandled internal error")
		return c.JSON(http.StatusInternalServerError, errorBody{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
	}
	return c.JSON(apperrors.StatusCode(err), errorBody{
		Code:    code,
		Message: err.Error(),
	})
}
