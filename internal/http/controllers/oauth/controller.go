// Package oauth exposes the federated login HTTP surface.
package oauth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	dto "github.com/dropDatabas3/linkjohn/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/linkjohn/internal/http/errors"
	oauthsvc "github.com/dropDatabas3/linkjohn/internal/http/services/oauth"
	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// Deps wires the controller.
type Deps struct {
	Service oauthsvc.Service
	Clients map[core.ProviderType]oauth.Client
}

// Controller handles /v2/oauth/{provider}/* and /v2/auth/*.
type Controller struct {
	svc     oauthsvc.Service
	clients map[core.ProviderType]oauth.Client
}

func NewController(d Deps) *Controller {
	return &Controller{svc: d.Service, clients: d.Clients}
}

// clientFromPath resolves the {provider} path parameter to its wire
// client. Unknown or unconfigured providers are a 400, not a 404: the
// route exists, the provider does not.
func (c *Controller) clientFromPath(r *http.Request) (oauth.Client, error) {
	name := core.ProviderType(chi.URLParam(r, "provider"))
	if !name.IsValid() {
		return nil, httperrors.ErrUnsupportedProvider.WithDetail(string(name))
	}
	client, ok := c.clients[name]
	if !ok {
		return nil, httperrors.ErrUnsupportedProvider.WithDetail(string(name) + " is not configured")
	}
	return client, nil
}

// mapServiceError translates orchestrator errors into HTTP errors.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, oauthsvc.ErrAlreadyCompleted):
		return httperrors.ErrConflict.WithDetail("signup already completed").WithCause(err)
	case errors.Is(err, core.ErrNotFound):
		return httperrors.ErrNotFound.WithDetail("no pending signup for sub").WithCause(err)
	case errors.Is(err, auth.ErrUnauthenticated):
		return httperrors.ErrUnauthorized.WithCause(err)
	case errors.Is(err, auth.ErrUnsupportedProvider):
		return httperrors.ErrUnsupportedProvider.WithCause(err)
	case errors.Is(err, oauth.ErrExchange):
		return httperrors.ErrBadRequest.WithDetail("authorization code rejected by provider").WithCause(err)
	case errors.Is(err, oauth.ErrAccountFetch), errors.Is(err, oauth.ErrRefresh):
		return httperrors.ErrProviderUnavailable.WithCause(err)
	default:
		return err
	}
}

func loginResponse(res *oauthsvc.LoginResult) any {
	if res.SignupRequired {
		return dto.SignupRequiredResponse{
			SignupRequired: true,
			Sub:            res.Sub,
			Provider:       res.Provider.String(),
		}
	}
	return dto.LoginResponse{
		MemberID:     res.MemberID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}
}
