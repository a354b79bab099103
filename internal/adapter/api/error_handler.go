package api

import (
	"github.com/labstack/echo/v4"

	"droplink/pkg/logger"
	"droplink/pkg/response"
)

// HTTPErrorHandler renders errors that escape handlers, such as those from
// middleware or unknown routes, in the standard envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if rerr := response.Error(c, err); rerr != nil {
		logger.Error("failed to write error response: %v", rerr)
	}
}
