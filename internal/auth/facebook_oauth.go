package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hitoshi/dailyjournal/internal/model"
)

const (
	defaultFacebookAuthURL     = "https://www.facebook.com/v12.0/dialog/oauth"
	defaultFacebookTokenURL    = "https://graph.facebook.com/v12.0/oauth/access_token"
	defaultFacebookUserInfoURL = "https://graph.facebook.com/me"
)

// FacebookOAuthConfig はFacebook OAuthプロバイダーの設定。
// FacebookではクライアントIDをApp ID、シークレットをApp Secretと呼ぶ。
type FacebookOAuthConfig struct {
	AppID       string
	AppSecret   string
	RedirectURL string

	// テスト用にオーバーライド可能なURL
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// FacebookOAuthProvider はFacebook OAuthによる認証を提供する。
type FacebookOAuthProvider struct {
	config FacebookOAuthConfig
}

// NewFacebookOAuthProvider はFacebookOAuthProviderを生成する。
func NewFacebookOAuthProvider(config FacebookOAuthConfig) *FacebookOAuthProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultFacebookAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultFacebookTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultFacebookUserInfoURL
	}
	return &FacebookOAuthProvider{config: config}
}

// LoginURL はFacebook OAuthの認可URLを生成する。
func (p *FacebookOAuthProvider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.AppID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// facebookTokenResponse はFacebookのトークンエンドポイントのレスポンス。
type facebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// facebookUserInfo はGraph APIの/meエンドポイントのレスポンス。
type facebookUserInfo struct {
	ID string `json:"id"`
}

// Exchange は認可コードをアクセストークンに交換し、subject IDを取得する。
func (p *FacebookOAuthProvider) Exchange(ctx context.Context, code string) (*SubjectInfo, error) {
	tokenResp, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	userInfo, err := p.fetchUserInfo(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return &SubjectInfo{
		SubjectID: userInfo.ID,
		Provider:  model.ProviderFacebook,
	}, nil
}

// exchangeToken は認可コードをアクセストークンに交換する。
// Facebookのトークンエンドポイントはクエリパラメータ付きGETを受け付ける。
func (p *FacebookOAuthProvider) exchangeToken(ctx context.Context, code string) (*facebookTokenResponse, error) {
	params := url.Values{
		"code":          {code},
		"client_id":     {p.config.AppID},
		"client_secret": {p.config.AppSecret},
		"redirect_uri":  {p.config.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.TokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp facebookTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &tokenResp, nil
}

// fetchUserInfo はアクセストークンでGraph APIからユーザーIDを取得する。
func (p *FacebookOAuthProvider) fetchUserInfo(ctx context.Context, accessToken string) (*facebookUserInfo, error) {
	params := url.Values{
		"fields":       {"id"},
		"access_token": {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo facebookUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	if userInfo.ID == "" {
		return nil, fmt.Errorf("empty id in user info response")
	}

	return &userInfo, nil
}

// compile-time interface check
var _ OAuthProvider = (*FacebookOAuthProvider)(nil)
