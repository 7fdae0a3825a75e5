package oauth

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/linkjohn/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/linkjohn/internal/http/errors"
)

// Refresh handles POST /v2/auth/refresh. The refresh token is opaque;
// the service finds the provider that owns it.
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(r.Context(), w, httperrors.ErrInvalidJSON.WithCause(err))
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(r.Context(), w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}

	res, err := c.svc.Reissue(r.Context(), req.RefreshToken)
	if err != nil {
		httperrors.WriteError(r.Context(), w, mapServiceError(err))
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, dto.RefreshResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}
