package oauth

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/linkjohn/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/linkjohn/internal/http/errors"
)

// Login handles POST /v2/oauth/{provider}/login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	client, err := c.clientFromPath(r)
	if err != nil {
		httperrors.WriteError(r.Context(), w, err)
		return
	}

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(r.Context(), w, httperrors.ErrInvalidJSON.WithCause(err))
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(r.Context(), w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}

	res, err := c.svc.Login(r.Context(), req.Code, client)
	if err != nil {
		httperrors.WriteError(r.Context(), w, mapServiceError(err))
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, loginResponse(res))
}
