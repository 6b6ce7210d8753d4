package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger sets the logger used to report server-side errors.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response is the envelope of every API response.
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Msg     string      `json:"msg"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Err builds an error envelope. 5xx causes are logged, and the cause is echoed in Error outside release mode.
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	if err != nil && errCode >= http.StatusInternalServerError {
		log.Sugar().Errorw(msg, "code", errCode, "err", err)
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// ServerErr is a 500 whose cause is logged.
func ServerErr(msg string, err error) Response {
	if msg == "" {
		msg = "internal server error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr is a 400 for a malformed request.
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// ValidationErr is a ParamErr carrying per-field details.
func ValidationErr(msg string, details interface{}) Response {
	if msg == "" {
		msg = "invalid input"
	}
	res := Err(http.StatusBadRequest, msg, nil)
	res.Details = details
	return res
}

// AuthErr is a 401 for a missing or unknown session.
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// ForbiddenErr is a 403 for a resource the caller cannot access.
func ForbiddenErr(msg string) Response {
	if msg == "" {
		msg = "forbidden"
	}
	return Err(http.StatusForbidden, msg, nil)
}

// NotFoundErr is a 404 for a missing row or column inside an accessible table.
func NotFoundErr(msg string) Response {
	if msg == "" {
		msg = "not found"
	}
	return Err(http.StatusNotFound, msg, nil)
}

// PaymentRequiredErr is a 402 for a plan quota hit; err's message goes to Details.
func PaymentRequiredErr(msg string, err error) Response {
	if msg == "" {
		msg = "plan limit reached"
	}
	res := Err(http.StatusPaymentRequired, msg, nil)
	if err != nil {
		res.Details = err.Error()
	}
	return res
}
