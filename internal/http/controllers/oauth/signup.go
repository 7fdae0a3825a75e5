package oauth

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/linkjohn/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/linkjohn/internal/http/errors"
	oauthsvc "github.com/dropDatabas3/linkjohn/internal/http/services/oauth"
)

// Signup handles POST /v2/oauth/{provider}/signup. It completes a
// staged identity: the sub must come from a prior login response.
func (c *Controller) Signup(w http.ResponseWriter, r *http.Request) {
	client, err := c.clientFromPath(r)
	if err != nil {
		httperrors.WriteError(r.Context(), w, err)
		return
	}

	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(r.Context(), w, httperrors.ErrInvalidJSON.WithCause(err))
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(r.Context(), w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}

	res, err := c.svc.Signup(r.Context(), oauthsvc.SignupRequest{
		Sub:        req.Sub,
		Email:      req.Email,
		Nickname:   req.Nickname,
		Agreements: req.CoreAgreements(),
	}, client)
	if err != nil {
		httperrors.WriteError(r.Context(), w, mapServiceError(err))
		return
	}

	httperrors.WriteJSON(w, http.StatusCreated, dto.SignupResponse{
		MemberID:     res.MemberID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}
