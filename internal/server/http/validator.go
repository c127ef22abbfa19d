package http

import (
	"fmt"
	"strconv"
	"strings"

	"chessindex/internal/server/core"
	"chessindex/internal/server/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// searchParams mirrors the optional search filters for declarative
// validation once the raw query strings have been parsed.
type searchParams struct {
	WhiteMin  *int    `validate:"omitempty,min=0,max=4000"`
	WhiteMax  *int    `validate:"omitempty,min=0,max=4000"`
	BlackMin  *int    `validate:"omitempty,min=0,max=4000"`
	BlackMax  *int    `validate:"omitempty,min=0,max=4000"`
	WhiteName *string `validate:"omitempty,max=80"`
	BlackName *string `validate:"omitempty,max=80"`
	Outcome   *string `validate:"omitempty,oneof=1-0 0-1 1/2-1/2 *"`
}

// parseGameFilter assembles a storage.GameFilter from the request's
// query parameters, validating each supplied value.
func parseGameFilter(c *fiber.Ctx) (storage.GameFilter, *core.ErrorResponse) {
	var p searchParams

	for _, field := range []struct {
		name string
		dst  **int
	}{
		{"whiteMin", &p.WhiteMin},
		{"whiteMax", &p.WhiteMax},
		{"blackMin", &p.BlackMin},
		{"blackMax", &p.BlackMax},
	} {
		raw := c.Query(field.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return storage.GameFilter{}, &core.ErrorResponse{
				Error:   "invalid filter",
				Code:    core.ErrInvalidRequest,
				Details: fmt.Sprintf("%s must be an integer", field.name),
			}
		}
		*field.dst = &v
	}

	for _, field := range []struct {
		name string
		dst  **string
	}{
		{"whiteName", &p.WhiteName},
		{"blackName", &p.BlackName},
		{"outcome", &p.Outcome},
	} {
		if raw := c.Query(field.name); raw != "" {
			v := raw
			*field.dst = &v
		}
	}

	if errs := validate.Struct(p); errs != nil {
		return storage.GameFilter{}, &core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: validationDetails(errs.(validator.ValidationErrors)),
		}
	}

	return storage.GameFilter{
		WhiteMin:  p.WhiteMin,
		WhiteMax:  p.WhiteMax,
		BlackMin:  p.BlackMin,
		BlackMax:  p.BlackMax,
		WhiteName: p.WhiteName,
		BlackName: p.BlackName,
		Outcome:   p.Outcome,
	}, nil
}

// validationDetails renders validator errors into a readable list
func validationDetails(errs validator.ValidationErrors) string {
	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", err.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param()))
		case "min":
			details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
		case "max":
			details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
		}
	}
	return details.String()
}
