// Package google implementa oauth.Client para Google (OIDC).
// A diferencia de Kakao, los endpoints salen del discovery document.
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

const discoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

// Google emite ambos formatos de iss.
var issuers = []string{"https://accounts.google.com", "accounts.google.com"}

type discoveryDoc struct {
	Issuer           string `json:"issuer"`
	TokenEndpoint    string `json:"token_endpoint"`
	UserinfoEndpoint string `json:"userinfo_endpoint"`
	JWKSURI          string `json:"jwks_uri"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string

	http *http.Client
	sf   singleflight.Group

	mu     sync.RWMutex
	disc   *discoveryDoc
	discAt time.Time

	jwks     *jwks
	jwksAt   time.Time
	jwksETag string
}

func New(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Provider() core.ProviderType { return core.ProviderGoogle }
func (c *Client) Issuers() []string           { return issuers }

func (c *Client) discovery(ctx context.Context) (*discoveryDoc, error) {
	c.mu.RLock()
	disc := c.disc
	fresh := time.Since(c.discAt) < 24*time.Hour
	c.mu.RUnlock()
	if disc != nil && fresh {
		return disc, nil
	}

	v, err, _ := c.sf.Do("discovery", func() (any, error) {
		req, _ := http.NewRequestWithContext(ctx, "GET", discoveryURL, nil)
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		var dd discoveryDoc
		if err := json.NewDecoder(resp.Body).Decode(&dd); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.disc = &dd
		c.discAt = time.Now()
		c.mu.Unlock()
		return &dd, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*discoveryDoc), nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth.TokenInfo, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)

	tr, err := c.postToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchange, err)
	}
	return &oauth.TokenInfo{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		IDToken:      tr.IDToken,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}

func (c *Client) ReissueToken(ctx context.Context, refreshToken string) (*oauth.TokenInfo, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)

	tr, err := c.postToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrRefresh, err)
	}
	// Google no rota el refresh token en cada refresh.
	if tr.RefreshToken == "" {
		tr.RefreshToken = refreshToken
	}
	return &oauth.TokenInfo{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		IDToken:      tr.IDToken,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}

func (c *Client) postToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	disc, err := c.discovery(ctx)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, "POST", disc.TokenEndpoint, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var b struct {
			Error     string `json:"error"`
			ErrorDesc string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		return nil, fmt.Errorf("token http %d: %s %s", resp.StatusCode, b.Error, b.ErrorDesc)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

func (c *Client) FetchAccount(ctx context.Context, accessToken string) (*oauth.AccountInfo, error) {
	disc, err := c.discovery(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrAccountFetch, err)
	}
	req, _ := http.NewRequestWithContext(ctx, "GET", disc.UserinfoEndpoint, nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrAccountFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: http %d", oauth.ErrAccountFetch, resp.StatusCode)
	}

	var body struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrAccountFetch, err)
	}
	return &oauth.AccountInfo{
		Email:         body.Email,
		Nickname:      body.Name,
		EmailVerified: body.EmailVerified,
	}, nil
}

// ValidateToken verifica firma RS256 contra la JWKS de Google, iss, aud
// y exp con tolerancia de 30s.
func (c *Client) ValidateToken(ctx context.Context, token string) bool {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid missing")
		}
		return c.rsaKeyForKid(ctx, kid)
	}

	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithAudience(c.clientID),
		jwtv5.WithLeeway(30*time.Second),
	)
	if err != nil || !tok.Valid {
		return false
	}
	iss, _ := tok.Claims.GetIssuer()
	for _, want := range issuers {
		if iss == want {
			return true
		}
	}
	return false
}

func (c *Client) rsaKeyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, err := c.getJWKS(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range keys.Keys {
		if k.Kid == kid && strings.EqualFold(k.Kty, "RSA") {
			return parseRSAKey(k)
		}
	}
	return nil, errors.New("kid not found")
}

func (c *Client) getJWKS(ctx context.Context) (*jwks, error) {
	c.mu.RLock()
	j := c.jwks
	fresh := time.Since(c.jwksAt) < time.Hour
	c.mu.RUnlock()
	if j != nil && fresh {
		return j, nil
	}

	disc, err := c.discovery(ctx)
	if err != nil {
		return nil, err
	}

	v, err, _ := c.sf.Do("jwks", func() (any, error) {
		req, _ := http.NewRequestWithContext(ctx, "GET", disc.JWKSURI, nil)
		if c.jwksETag != "" {
			req.Header.Set("If-None-Match", c.jwksETag)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotModified {
			c.mu.Lock()
			out := c.jwks
			c.jwksAt = time.Now()
			c.mu.Unlock()
			return out, nil
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("jwks http %d", resp.StatusCode)
		}
		var jj jwks
		if err := json.NewDecoder(resp.Body).Decode(&jj); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.jwks = &jj
		c.jwksAt = time.Now()
		c.jwksETag = resp.Header.Get("ETag")
		c.mu.Unlock()
		return &jj, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jwks), nil
}

func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 65537
	if len(eb) > 0 {
		e = 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
