package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ctoutbank/portal-outbank-sub005/internal/apierror"
	"github.com/ctoutbank/portal-outbank-sub005/internal/pricing"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps domain errors onto HTTP statuses. Illegal status
// transitions get the structured 400 body carrying the valid-target list so
// clients can render the actions actually available.
func respondServiceError(c *gin.Context, err error) {
	var (
		fieldErr      *pricing.FieldError
		transitionErr *pricing.TransitionError
		configErr     *service.ConfigError
	)
	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, apierror.NewValidation(map[string]string{fieldErr.Field: fieldErr.Message}))
	case errors.As(err, &transitionErr):
		valid := make([]string, len(transitionErr.Valid))
		for i, s := range transitionErr.Valid {
			valid[i] = string(s)
		}
		c.JSON(http.StatusBadRequest, apierror.NewTransition(
			transitionErr.Error(), string(transitionErr.Current), valid))
	case errors.As(err, &configErr):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(configErr.Msg))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled service error")
		c.JSON(http.StatusInternalServerError, apierror.New("internal error"))
	}
}
