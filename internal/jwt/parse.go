// Package jwt extrae claims de session tokens.
//
// Solo parsea: la verificación de firma es responsabilidad del proveedor
// que emitió el token (oauth.Client.ValidateToken), no de este paquete.
package jwt

import (
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken indica un token que no es un JWT parseable.
	ErrMalformedToken = errors.New("malformed token")

	// ErrClaimMissing indica que el claim pedido no está o no es string.
	ErrClaimMissing = errors.New("claim missing")
)

// ParseClaims retorna todas las claims del token sin verificar la firma.
func ParseClaims(token string) (map[string]any, error) {
	claims := jwtv5.MapClaims{}
	parser := jwtv5.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}

// ParseClaimsField extrae un claim string por nombre.
func ParseClaimsField(token, name string) (string, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return "", err
	}
	s, ok := claims[name].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s", ErrClaimMissing, name)
	}
	return s, nil
}
