package core

import "context"

// Repository agrupa la persistencia de members y links.
//
// InTx ejecuta fn dentro de una transacción: el Repository que recibe fn
// opera sobre la misma transacción y un error (o panic) revierte todo.
// El driver memory emula la semántica con snapshot + restore.
type Repository interface {
	MemberRepository
	OAuthRepository

	Ping(ctx context.Context) error
	InTx(ctx context.Context, fn func(Repository) error) error
	Close()
}

// MemberRepository persiste cuentas locales.
type MemberRepository interface {
	// CreateMember inserta el member y sus agreements.
	// Retorna ErrConflict si el username ya existe.
	CreateMember(ctx context.Context, m *Member, agreements []Agreement) error

	// GetMemberByID retorna ErrNotFound si no existe.
	GetMemberByID(ctx context.Context, id string) (*Member, error)

	// GetMemberByUsername retorna ErrNotFound si no existe.
	GetMemberByUsername(ctx context.Context, username string) (*Member, error)
}

// OAuthRepository persiste los vínculos con identidades externas.
type OAuthRepository interface {
	// CreateLink inserta un link huérfano.
	// Retorna ErrConflict si ya existe un link para (sub, provider);
	// es la guarda contra dos primeros logins concurrentes.
	CreateLink(ctx context.Context, l *OAuthLink) error

	// GetLinkBySub retorna el link para un subject, sin importar proveedor.
	GetLinkBySub(ctx context.Context, sub string) (*OAuthLink, error)

	// GetLinkBySubAndProvider retorna ErrNotFound si no existe.
	GetLinkBySubAndProvider(ctx context.Context, sub string, p ProviderType) (*OAuthLink, error)

	// GetLinkByRefreshTokenAndProvider localiza el link que guarda
	// actualmente ese refresh token. ErrNotFound si fue rotado o no existe.
	GetLinkByRefreshTokenAndProvider(ctx context.Context, refreshToken string, p ProviderType) (*OAuthLink, error)

	// AttachMember asocia un member a un link huérfano.
	AttachMember(ctx context.Context, linkID, memberID string) error

	// RotateLinkTokens reemplaza los tokens del proveedor guardados en el link.
	RotateLinkTokens(ctx context.Context, linkID, accessToken, refreshToken string) error
}
