package oauth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	"github.com/dropDatabas3/linkjohn/internal/cache"
	oauthctl "github.com/dropDatabas3/linkjohn/internal/http/controllers/oauth"
	"github.com/dropDatabas3/linkjohn/internal/http/router"
	oauthsvc "github.com/dropDatabas3/linkjohn/internal/http/services/oauth"
	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
	"github.com/dropDatabas3/linkjohn/internal/store/memory"
)

// stubService respuestas fijas por operación.
type stubService struct {
	login   *oauthsvc.LoginResult
	signup  *oauthsvc.LoginResult
	reissue *oauthsvc.ReissueResult
	err     error
}

func (s *stubService) Login(ctx context.Context, code string, client oauth.Client) (*oauthsvc.LoginResult, error) {
	return s.login, s.err
}
func (s *stubService) Signup(ctx context.Context, req oauthsvc.SignupRequest, client oauth.Client) (*oauthsvc.LoginResult, error) {
	return s.signup, s.err
}
func (s *stubService) Reissue(ctx context.Context, refreshToken string) (*oauthsvc.ReissueResult, error) {
	return s.reissue, s.err
}

// nullClient implementa oauth.Client sin comportamiento; el stubService
// nunca lo toca.
type nullClient struct{ provider core.ProviderType }

func (n nullClient) Provider() core.ProviderType { return n.provider }
func (n nullClient) Issuers() []string           { return nil }
func (n nullClient) ExchangeCode(ctx context.Context, code string) (*oauth.TokenInfo, error) {
	return nil, oauth.ErrExchange
}
func (n nullClient) FetchAccount(ctx context.Context, at string) (*oauth.AccountInfo, error) {
	return nil, oauth.ErrAccountFetch
}
func (n nullClient) ReissueToken(ctx context.Context, rt string) (*oauth.TokenInfo, error) {
	return nil, oauth.ErrRefresh
}
func (n nullClient) ValidateToken(ctx context.Context, tok string) bool { return false }

// fakeTokenProvider acepta cualquier token cuyo claim sub tenga un
// principal registrado.
type fakeTokenProvider struct {
	provider   core.ProviderType
	principals map[string]*auth.Principal // sub → principal
}

func (f *fakeTokenProvider) Provider() core.ProviderType { return f.provider }
func (f *fakeTokenProvider) ValidateToken(ctx context.Context, token string) bool {
	sub, err := f.ParseSub(token)
	if err != nil {
		return false
	}
	_, ok := f.principals[sub]
	return ok
}
func (f *fakeTokenProvider) Authentication(ctx context.Context, token string) (*auth.Principal, error) {
	sub, err := f.ParseSub(token)
	if err != nil {
		return nil, auth.ErrUnauthenticated
	}
	p, ok := f.principals[sub]
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	return p, nil
}
func (f *fakeTokenProvider) ValidateRefreshToken(ctx context.Context, rt string) (string, error) {
	return "", auth.ErrUnauthenticated
}
func (f *fakeTokenProvider) Reissue(ctx context.Context, rt string) (*auth.TokenPair, error) {
	return nil, auth.ErrUnauthenticated
}
func (f *fakeTokenProvider) CreateToken(ctx context.Context, code string) (*oauth.TokenInfo, error) {
	return nil, oauth.ErrExchange
}
func (f *fakeTokenProvider) ParseSub(token string) (string, error) {
	claims := jwtv5.MapClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

func newTestServer(t *testing.T, svc oauthsvc.Service, tp auth.TokenProvider) *httptest.Server {
	t.Helper()

	resolver := auth.NewResolver()
	if tp != nil {
		resolver.Register(tp, "https://test.issuer")
	}

	ctl := oauthctl.NewController(oauthctl.Deps{
		Service: svc,
		Clients: map[core.ProviderType]oauth.Client{
			core.ProviderKakao: nullClient{provider: core.ProviderKakao},
		},
	})

	h := router.New(router.Deps{
		OAuth:    ctl,
		Resolver: resolver,
		Repo:     memory.New(),
		Cache:    cache.NewMemory(""),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginEndpoint_Tokens(t *testing.T) {
	svc := &stubService{login: &oauthsvc.LoginResult{
		MemberID:     "m-1",
		AccessToken:  "at",
		RefreshToken: "rt",
	}}
	srv := newTestServer(t, svc, nil)

	resp := postJSON(t, srv.URL+"/v2/oauth/kakao/login", map[string]string{"code": "abc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		MemberID     string `json:"member_id"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "m-1", out.MemberID)
	require.Equal(t, "at", out.AccessToken)
}

func TestLoginEndpoint_SignupRequired(t *testing.T) {
	svc := &stubService{login: &oauthsvc.LoginResult{
		SignupRequired: true,
		Sub:            "k-1",
		Provider:       core.ProviderKakao,
	}}
	srv := newTestServer(t, svc, nil)

	resp := postJSON(t, srv.URL+"/v2/oauth/kakao/login", map[string]string{"code": "abc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		SignupRequired bool   `json:"signup_required"`
		Sub            string `json:"sub"`
		Provider       string `json:"provider"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.SignupRequired)
	require.Equal(t, "k-1", out.Sub)
	require.Equal(t, "kakao", out.Provider)
}

func TestLoginEndpoint_Validation(t *testing.T) {
	srv := newTestServer(t, &stubService{}, nil)

	// sin code
	resp := postJSON(t, srv.URL+"/v2/oauth/kakao/login", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// provider desconocido
	resp = postJSON(t, srv.URL+"/v2/oauth/naver/login", map[string]string{"code": "abc"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// provider válido pero no configurado
	resp = postJSON(t, srv.URL+"/v2/oauth/google/login", map[string]string{"code": "abc"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignupEndpoint_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"already completed", oauthsvc.ErrAlreadyCompleted, http.StatusConflict},
		{"never staged", core.ErrNotFound, http.StatusNotFound},
		{"provider down", oauth.ErrAccountFetch, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &stubService{err: tc.err}, nil)
			resp := postJSON(t, srv.URL+"/v2/oauth/kakao/signup", map[string]string{"sub": "k-1"})
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRefreshEndpoint(t *testing.T) {
	svc := &stubService{reissue: &oauthsvc.ReissueResult{
		MemberID:     "m-1",
		AccessToken:  "at-2",
		RefreshToken: "rt-2",
	}}
	srv := newTestServer(t, svc, nil)

	resp := postJSON(t, srv.URL+"/v2/auth/refresh", map[string]string{"refresh_token": "rt-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "rt-2", out.RefreshToken)
}

func TestRefreshEndpoint_Unauthorized(t *testing.T) {
	srv := newTestServer(t, &stubService{err: auth.ErrUnauthenticated}, nil)
	resp := postJSON(t, srv.URL+"/v2/auth/refresh", map[string]string{"refresh_token": "dead"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeEndpoint(t *testing.T) {
	tp := &fakeTokenProvider{
		provider: core.ProviderKakao,
		principals: map[string]*auth.Principal{
			"k-1": {MemberID: "m-1", Username: "m-1@example.com"},
		},
	}
	srv := newTestServer(t, &stubService{}, tp)

	mint := func(sub string) string {
		tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
			"iss": "https://test.issuer",
			"sub": sub,
		})
		s, err := tok.SignedString([]byte("fake"))
		require.NoError(t, err)
		return s
	}

	get := func(token string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/v2/auth/me", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// autenticado
	resp := get(mint("k-1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		MemberID string `json:"member_id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "m-1", out.MemberID)

	// sub sin principal
	require.Equal(t, http.StatusUnauthorized, get(mint("ghost")).StatusCode)

	// sin header
	require.Equal(t, http.StatusUnauthorized, get("").StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubService{}, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, &stubService{}, nil)
	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "not_found", out.Error.Code)
}
