package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
	"github.com/dropDatabas3/linkjohn/internal/store/memory"
)

// fakeClient implementa oauth.Client contra tokens propios, sin red.
// Los refresh tokens válidos viven en refreshSubs: refresh token → sub.
type fakeClient struct {
	provider    core.ProviderType
	issuer      string
	refreshSubs map[string]string
	rotation    int
}

func newFakeClient(p core.ProviderType, issuer string) *fakeClient {
	return &fakeClient{provider: p, issuer: issuer, refreshSubs: map[string]string{}}
}

func (f *fakeClient) Provider() core.ProviderType { return f.provider }
func (f *fakeClient) Issuers() []string           { return []string{f.issuer} }

func (f *fakeClient) mintIDToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss": f.issuer,
		"sub": sub,
	})
	s, err := tok.SignedString([]byte("fake"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return s
}

func (f *fakeClient) tokenInfo(sub string) *oauth.TokenInfo {
	f.rotation++
	rt := fmt.Sprintf("rt-%s-%d", sub, f.rotation)
	f.refreshSubs[rt] = sub
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss": f.issuer,
		"sub": sub,
	})
	signed, _ := tok.SignedString([]byte("fake"))
	return &oauth.TokenInfo{
		AccessToken:  fmt.Sprintf("at-%s-%d", sub, f.rotation),
		RefreshToken: rt,
		IDToken:      signed,
	}
}

func (f *fakeClient) ExchangeCode(ctx context.Context, code string) (*oauth.TokenInfo, error) {
	// el code codifica el sub: "code:<sub>"
	if len(code) < 6 || code[:5] != "code:" {
		return nil, oauth.ErrExchange
	}
	return f.tokenInfo(code[5:]), nil
}

func (f *fakeClient) FetchAccount(ctx context.Context, accessToken string) (*oauth.AccountInfo, error) {
	return &oauth.AccountInfo{Email: "user@example.com", Nickname: "user", EmailVerified: true}, nil
}

func (f *fakeClient) ReissueToken(ctx context.Context, refreshToken string) (*oauth.TokenInfo, error) {
	sub, ok := f.refreshSubs[refreshToken]
	if !ok {
		return nil, oauth.ErrRefresh
	}
	return f.tokenInfo(sub), nil
}

func (f *fakeClient) ValidateToken(ctx context.Context, token string) bool {
	claims := jwtv5.MapClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	iss, _ := claims["iss"].(string)
	return iss == f.issuer
}

// seedLinkedMember crea un member y su link vinculado.
func seedLinkedMember(t *testing.T, repo core.Repository, sub string, p core.ProviderType, refreshToken string) *core.Member {
	t.Helper()
	ctx := context.Background()

	m := &core.Member{Username: sub + "@example.com", Nickname: "seeded"}
	if err := repo.CreateMember(ctx, m, nil); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	l := &core.OAuthLink{Sub: sub, Provider: p, AccessToken: "at-seed", RefreshToken: refreshToken}
	if err := repo.CreateLink(ctx, l); err != nil {
		t.Fatalf("seed link: %v", err)
	}
	if err := repo.AttachMember(ctx, l.ID, m.ID); err != nil {
		t.Fatalf("seed attach: %v", err)
	}
	return m
}

func TestAuthentication(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	client := newFakeClient(core.ProviderKakao, "https://kauth.kakao.com")
	tp := auth.NewOIDCProvider(client, repo)

	member := seedLinkedMember(t, repo, "k-100", core.ProviderKakao, "rt-seed")

	principal, err := tp.Authentication(ctx, client.mintIDToken(t, "k-100"))
	if err != nil {
		t.Fatalf("Authentication: %v", err)
	}
	if principal.MemberID != member.ID {
		t.Errorf("member id = %q, want %q", principal.MemberID, member.ID)
	}
	if principal.Username != member.Username {
		t.Errorf("username = %q", principal.Username)
	}
}

func TestAuthentication_UnknownSub(t *testing.T) {
	repo := memory.New()
	client := newFakeClient(core.ProviderKakao, "https://kauth.kakao.com")
	tp := auth.NewOIDCProvider(client, repo)

	_, err := tp.Authentication(context.Background(), client.mintIDToken(t, "ghost"))
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthentication_StagedLink(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	client := newFakeClient(core.ProviderGoogle, "https://accounts.google.com")
	tp := auth.NewOIDCProvider(client, repo)

	// link sin member: identidad a mitad de signup, no autentica
	if err := repo.CreateLink(ctx, &core.OAuthLink{Sub: "g-7", Provider: core.ProviderGoogle}); err != nil {
		t.Fatalf("seed link: %v", err)
	}

	_, err := tp.Authentication(ctx, client.mintIDToken(t, "g-7"))
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	client := newFakeClient(core.ProviderKakao, "https://kauth.kakao.com")
	tp := auth.NewOIDCProvider(client, repo)

	member := seedLinkedMember(t, repo, "k-200", core.ProviderKakao, "rt-live")

	id, err := tp.ValidateRefreshToken(ctx, "rt-live")
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if id != member.ID {
		t.Errorf("member id = %q", id)
	}

	if _, err := tp.ValidateRefreshToken(ctx, "rt-unknown"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("unknown token err = %v, want ErrUnauthenticated", err)
	}
}

func TestReissue_RotatesStoredTokens(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	client := newFakeClient(core.ProviderKakao, "https://kauth.kakao.com")
	tp := auth.NewOIDCProvider(client, repo)

	seedLinkedMember(t, repo, "k-300", core.ProviderKakao, "rt-old")
	client.refreshSubs["rt-old"] = "k-300"

	pair, err := tp.Reissue(ctx, "rt-old")
	if err != nil {
		t.Fatalf("Reissue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty pair: %+v", pair)
	}
	if pair.RefreshToken == "rt-old" {
		t.Error("refresh token not rotated")
	}

	// el link quedó con los tokens nuevos: el viejo ya no resuelve
	if _, err := repo.GetLinkByRefreshTokenAndProvider(ctx, "rt-old", core.ProviderKakao); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("stale refresh err = %v, want ErrNotFound", err)
	}
	link, err := repo.GetLinkByRefreshTokenAndProvider(ctx, pair.RefreshToken, core.ProviderKakao)
	if err != nil {
		t.Fatalf("rotated link: %v", err)
	}
	if !link.Linked() {
		t.Error("link lost its member")
	}
}

func TestReissue_ProviderRejects(t *testing.T) {
	repo := memory.New()
	client := newFakeClient(core.ProviderKakao, "https://kauth.kakao.com")
	tp := auth.NewOIDCProvider(client, repo)

	if _, err := tp.Reissue(context.Background(), "rt-bogus"); !errors.Is(err, oauth.ErrRefresh) {
		t.Errorf("err = %v, want ErrRefresh", err)
	}
}

func TestReissue_NoLinkForRotatedSubject(t *testing.T) {
	repo := memory.New()
	client := newFakeClient(core.ProviderKakao, "https://kauth.kakao.com")
	tp := auth.NewOIDCProvider(client, repo)

	// el proveedor rota pero no tenemos link para ese sub
	client.refreshSubs["rt-orphan"] = "k-nowhere"

	_, err := tp.Reissue(context.Background(), "rt-orphan")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
