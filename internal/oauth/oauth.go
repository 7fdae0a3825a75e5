// Package oauth define el contrato con los proveedores de identidad
// externos. Cada sub-paquete implementa el protocolo de un proveedor;
// fuera de acá nadie conoce endpoints ni formatos de wire.
package oauth

import (
	"context"

	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// TokenInfo son los tokens emitidos por el proveedor.
// El IDToken (JWT firmado por el proveedor) se reusa como access token
// de sesión de la aplicación.
type TokenInfo struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresIn    int
}

// AccountInfo es el perfil normalizado de la cuenta en el proveedor.
type AccountInfo struct {
	Email         string
	Nickname      string
	EmailVerified bool
}

// Client es la capability por proveedor. Sin comportamiento compartido:
// cada implementación encapsula el wire protocol completo de su proveedor.
type Client interface {
	// Provider identifica el tipo de proveedor.
	Provider() core.ProviderType

	// Issuers retorna los valores de `iss` que emite este proveedor.
	// Lo usa el resolver para rutear tokens.
	Issuers() []string

	// ExchangeCode canjea un authorization code por tokens.
	// Retorna ErrExchange si el code es inválido/expirado/usado.
	ExchangeCode(ctx context.Context, code string) (*TokenInfo, error)

	// FetchAccount obtiene el perfil de la cuenta con un access token.
	// Retorna ErrAccountFetch si el token no sirve.
	FetchAccount(ctx context.Context, accessToken string) (*AccountInfo, error)

	// ReissueToken rota tokens con un refresh token del proveedor.
	// Retorna ErrRefresh si el proveedor lo rechaza.
	ReissueToken(ctx context.Context, refreshToken string) (*TokenInfo, error)

	// ValidateToken verifica firma y claims de un id_token de este proveedor.
	ValidateToken(ctx context.Context, token string) bool
}
