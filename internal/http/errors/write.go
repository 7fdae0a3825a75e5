package errors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/linkjohn/internal/observability/logger"
)

type errorBody struct {
	Error *AppError `json:"error"`
}

// WriteError serializa un AppError como JSON y loguea la causa si existe.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := FromError(err)

	log := logger.From(ctx)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed", logger.String("code", appErr.Code), logger.Err(appErr.Err))
	} else if appErr.Err != nil {
		log.Debug("request rejected", logger.String("code", appErr.Code), logger.Err(appErr.Err))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorBody{Error: appErr})
}

// WriteJSON serializa una respuesta exitosa.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
