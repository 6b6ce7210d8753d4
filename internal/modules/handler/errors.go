package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gridspace-io/gridspace/internal/middleware"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/serializer"
	"github.com/gridspace-io/gridspace/internal/modules/service"
	"github.com/gridspace-io/gridspace/internal/pkg/csvimport"
)

// writeErr maps service errors onto HTTP statuses and writes the response.
func writeErr(c *gin.Context, err error) {
	var (
		verr  *service.ValidationError
		perr  *csvimport.ParseError
		bverr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, serializer.ValidationErr("invalid input", verr.Fields))
	case errors.As(err, &bverr):
		c.JSON(http.StatusBadRequest, serializer.ValidationErr("invalid input", bindingFields(bverr)))
	case errors.As(err, &perr):
		c.JSON(http.StatusBadRequest, serializer.ValidationErr("invalid csv", perr.Diagnostics))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(""))
	case errors.Is(err, service.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid signature", err))
	case errors.Is(err, service.ErrPlanLimit):
		c.JSON(http.StatusPaymentRequired, serializer.PaymentRequiredErr("", err))
	case errors.Is(err, service.ErrConfig):
		c.JSON(http.StatusInternalServerError, serializer.ServerErr("service is not configured", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.ServerErr("", err))
	}
}

// bindErr reports a request binding failure with per-field details when available.
func bindErr(c *gin.Context, err error) {
	var bverr validator.ValidationErrors
	if errors.As(err, &bverr) {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
}

func bindingFields(errs validator.ValidationErrors) []service.FieldError {
	out := make([]service.FieldError, 0, len(errs))
	for _, fe := range errs {
		msg := "failed on " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out = append(out, service.FieldError{Field: lowerFirst(fe.Field()), Message: msg})
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func principal(c *gin.Context) (*model.Principal, bool) {
	v, ok := c.Get(middleware.PrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*model.Principal)
	return p, ok && p != nil && p.UserID != ""
}

// mustPrincipal writes a 401 and returns false when the request carries no principal.
func mustPrincipal(c *gin.Context) (*model.Principal, bool) {
	p, ok := principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
	}
	return p, ok
}

// scopeID parses a workspace or table id. An id that does not parse names nothing the caller
// can access, so it is answered with 403 like any other inaccessible resource.
func scopeID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
		return uuid.Nil, false
	}
	return id, true
}

// childID parses a row or column id. A malformed id becomes uuid.Nil, which matches no record:
// the service still checks table access first and then reports NotFound.
func childID(c *gin.Context, name string) uuid.UUID {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil
	}
	return id
}
