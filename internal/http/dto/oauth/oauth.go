// Package oauth contains the request and response shapes of the
// federated login endpoints.
package oauth

import (
	"strings"

	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// LoginRequest carries the authorization code returned by the provider.
type LoginRequest struct {
	Code string `json:"code"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errMissing("code")
	}
	return nil
}

// LoginResponse is returned once the member is fully signed up.
type LoginResponse struct {
	MemberID     string `json:"member_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignupRequiredResponse is returned when the federated account has no
// member yet. The client must call the signup endpoint with this sub.
type SignupRequiredResponse struct {
	SignupRequired bool   `json:"signup_required"`
	Sub            string `json:"sub"`
	Provider       string `json:"provider"`
}

// AgreementDTO mirrors core.Agreement on the wire.
type AgreementDTO struct {
	Name   string `json:"name"`
	Agreed bool   `json:"agreed"`
}

// SignupRequest completes a staged signup.
type SignupRequest struct {
	Sub        string         `json:"sub"`
	Email      string         `json:"email,omitempty"`
	Nickname   string         `json:"nickname,omitempty"`
	Agreements []AgreementDTO `json:"agreements,omitempty"`
}

func (r *SignupRequest) Validate() error {
	if strings.TrimSpace(r.Sub) == "" {
		return errMissing("sub")
	}
	for _, a := range r.Agreements {
		if strings.TrimSpace(a.Name) == "" {
			return errMissing("agreements[].name")
		}
	}
	return nil
}

// CoreAgreements converts the wire agreements to store types.
func (r *SignupRequest) CoreAgreements() []core.Agreement {
	if len(r.Agreements) == 0 {
		return nil
	}
	out := make([]core.Agreement, 0, len(r.Agreements))
	for _, a := range r.Agreements {
		out = append(out, core.Agreement{Name: a.Name, Agreed: a.Agreed})
	}
	return out
}

// SignupResponse returns the first token pair of the new member.
type SignupResponse struct {
	MemberID     string `json:"member_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest carries the opaque provider refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return errMissing("refresh_token")
	}
	return nil
}

// RefreshResponse returns the rotated pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MeResponse describes the authenticated member.
type MeResponse struct {
	MemberID string `json:"member_id"`
	Username string `json:"username"`
}

type validationError struct{ field string }

func (e validationError) Error() string { return "missing required field: " + e.field }

func errMissing(field string) error { return validationError{field: field} }
