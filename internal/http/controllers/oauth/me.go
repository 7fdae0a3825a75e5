package oauth

import (
	"net/http"

	dto "github.com/dropDatabas3/linkjohn/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/linkjohn/internal/http/errors"
	"github.com/dropDatabas3/linkjohn/internal/http/middlewares"
)

// Me handles GET /v2/auth/me. The auth middleware already resolved the
// principal; this just echoes it.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middlewares.PrincipalFrom(r.Context())
	if !ok {
		httperrors.WriteError(r.Context(), w, httperrors.ErrUnauthorized)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, dto.MeResponse{
		MemberID: principal.MemberID,
		Username: principal.Username,
	})
}
