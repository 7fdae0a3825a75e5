package jwt_test

import (
	"errors"
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	jwtx "github.com/dropDatabas3/linkjohn/internal/jwt"
)

func mintToken(t *testing.T, claims jwtv5.MapClaims) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestParseClaims(t *testing.T) {
	raw := mintToken(t, jwtv5.MapClaims{
		"sub":      "kakao-12345",
		"iss":      "https://kauth.kakao.com",
		"provider": "kakao",
	})

	claims, err := jwtx.ParseClaims(raw)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims["sub"] != "kakao-12345" {
		t.Errorf("sub = %v", claims["sub"])
	}
	if claims["iss"] != "https://kauth.kakao.com" {
		t.Errorf("iss = %v", claims["iss"])
	}
}

func TestParseClaims_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		if _, err := jwtx.ParseClaims(raw); !errors.Is(err, jwtx.ErrMalformedToken) {
			t.Errorf("ParseClaims(%q) err = %v, want ErrMalformedToken", raw, err)
		}
	}
}

func TestParseClaimsField(t *testing.T) {
	raw := mintToken(t, jwtv5.MapClaims{"sub": "google-999"})

	sub, err := jwtx.ParseClaimsField(raw, "sub")
	if err != nil {
		t.Fatalf("ParseClaimsField: %v", err)
	}
	if sub != "google-999" {
		t.Errorf("sub = %q", sub)
	}
}

func TestParseClaimsField_Missing(t *testing.T) {
	raw := mintToken(t, jwtv5.MapClaims{"sub": "x"})

	if _, err := jwtx.ParseClaimsField(raw, "provider"); !errors.Is(err, jwtx.ErrClaimMissing) {
		t.Errorf("err = %v, want ErrClaimMissing", err)
	}

	// claim presente pero no string
	raw = mintToken(t, jwtv5.MapClaims{"sub": 42})
	if _, err := jwtx.ParseClaimsField(raw, "sub"); !errors.Is(err, jwtx.ErrClaimMissing) {
		t.Errorf("err = %v, want ErrClaimMissing", err)
	}
}
