// Package core define tipos de dominio y contratos de persistencia
// compartidos entre drivers (pg, memory) y la capa de servicios.
package core

import "time"

// ProviderType identifica un proveedor de identidad externo.
type ProviderType string

const (
	ProviderKakao  ProviderType = "kakao"
	ProviderGoogle ProviderType = "google"
)

// IsValid retorna true si el proveedor está soportado.
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderKakao, ProviderGoogle:
		return true
	}
	return false
}

func (p ProviderType) String() string { return string(p) }

// Member es una cuenta local.
// Username es un identificador interno: para cuentas creadas vía signup
// federado es un UUID sintético, nunca el email crudo del proveedor.
type Member struct {
	ID        string
	Username  string
	Nickname  string
	CreatedAt time.Time
}

// Agreement registra la aceptación de un término durante el signup.
type Agreement struct {
	Name   string
	Agreed bool
}

// OAuthLink vincula un Member con una identidad externa.
// MemberID es nil mientras el link está huérfano: se crea en el primer
// login (antes de que exista el Member) y se adjunta al completar el
// signup. (Sub, Provider) es único en todo el sistema.
type OAuthLink struct {
	ID           string
	MemberID     *string
	Sub          string
	Provider     ProviderType
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Linked retorna true si el link ya tiene un Member asociado.
func (l *OAuthLink) Linked() bool { return l != nil && l.MemberID != nil }
