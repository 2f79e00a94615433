package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/http/dto/kiosk/response"
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedScheme),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidUnitPrice):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrSchema):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, response.ErrorResponse{Success: false, Error: message})
}

// parseQuantity reads an optional fiat quantity; an empty value means the smallest one.
func parseQuantity(raw string) (int, error) {
	if raw == "" {
		return domain.MinFiatQuantity, nil
	}
	q, err := strconv.Atoi(raw)
	if err != nil || q < domain.MinFiatQuantity || q > domain.MaxFiatQuantity {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidQuantity, raw)
	}
	return q, nil
}
