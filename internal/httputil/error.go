package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/apperr"
	"go.uber.org/zap"
)

var ErrMalformedBody = apperr.New(apperr.KindValidation, "MALFORMED_BODY", "request body is not valid JSON")

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps an error kind to the HTTP status it is answered with.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindState:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Internal failures are logged in full
// and answered with a generic message.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	var appErr *apperr.Error
	if kind == apperr.KindInternal || !errors.As(err, &appErr) {
		logger.Error("request failed", zap.Error(err))
		JSON(w, status, errorBody{Code: apperr.ErrInternal.Code, Message: apperr.ErrInternal.Message})
		return
	}

	logger.Debug("request rejected", zap.String("code", appErr.Code), zap.Error(err))
	JSON(w, status, errorBody{Code: appErr.Code, Message: appErr.Message})
}

func BadRequest(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	logger.Warn("bad request", zap.String("message", msg), zap.Error(err))
	JSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: msg})
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrMalformedBody.Wrap(err)
	}
	return nil
}

func Unauthorized(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, errorBody{Code: "UNAUTHENTICATED", Message: "log in first"})
}
