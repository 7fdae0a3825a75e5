package oauth

import "errors"

// Errores de comunicación con el proveedor. Se propagan al caller sin
// retry interno: suelen ser accionables por el usuario (ej. code vencido).
var (
	ErrExchange     = errors.New("oauth: code exchange failed")
	ErrAccountFetch = errors.New("oauth: account fetch failed")
	ErrRefresh      = errors.New("oauth: token refresh failed")
)
