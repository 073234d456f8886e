package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"perch/logger"
	"perch/model"
	"perch/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"
)

const kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

// KakaoProfile is the subset of the kakao userinfo response the bridge needs.
type KakaoProfile struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
	KakaoAccount struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
}

// KakaoBridge exchanges a kakao authorization grant for a local user,
// creating the account on first login.
type KakaoBridge struct {
	cfg         *oauth2.Config
	stateKey    []byte
	users       repository.UserRepository
	userInfoURL string
}

// NewKakaoBridge creates a KakaoBridge.
func NewKakaoBridge(clientID, clientSecret, redirectURL, stateSecret string, users repository.UserRepository) *KakaoBridge {
	return &KakaoBridge{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     kakao.Endpoint,
		},
		stateKey:    []byte(stateSecret),
		users:       users,
		userInfoURL: kakaoUserInfoURL,
	}
}

// MakeState signs the raw state value with HMAC-SHA256 for CSRF protection.
func (b *KakaoBridge) MakeState(raw string) string {
	mac := hmac.New(sha256.New, b.stateKey)
	mac.Write([]byte(raw))
	return raw + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyState checks a state value produced by MakeState.
func (b *KakaoBridge) VerifyState(got string) bool {
	i := strings.LastIndexByte(got, '.')
	if i < 0 {
		return false
	}
	sig, err := base64.RawURLEncoding.DecodeString(got[i+1:])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, b.stateKey)
	mac.Write([]byte(got[:i]))
	return hmac.Equal(mac.Sum(nil), sig)
}

// AuthCodeURL returns the provider URL the user is redirected to.
func (b *KakaoBridge) AuthCodeURL(state string) string {
	return b.cfg.AuthCodeURL(state)
}

// ExchangeAndResolve trades the authorization code for a token, fetches the
// kakao profile with it and resolves the local user. Provider and network
// failures surface as exchange errors, never as credential failures.
func (b *KakaoBridge) ExchangeAndResolve(ctx context.Context, code string) (*model.User, error) {
	tok, err := b.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("kakao code exchange failed: %w", err)
	}

	profile, err := b.fetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}
	return b.Resolve(ctx, profile)
}

func (b *KakaoBridge) fetchProfile(ctx context.Context, tok *oauth2.Token) (*KakaoProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build kakao userinfo request: %w", err)
	}

	resp, err := b.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao userinfo returned status %d", resp.StatusCode)
	}

	profile := &KakaoProfile{}
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, fmt.Errorf("failed to decode kakao profile: %w", err)
	}
	if profile.ID == 0 {
		return nil, fmt.Errorf("kakao profile has no id")
	}
	return profile, nil
}

// Resolve looks up the user for a kakao profile, creating one on first
// login. A duplicate-key race between concurrent first-logins for the same
// external id collapses into a second lookup.
func (b *KakaoBridge) Resolve(ctx context.Context, profile *KakaoProfile) (*model.User, error) {
	snsID := strconv.FormatInt(profile.ID, 10)

	user, err := b.users.FindBySNS(ctx, model.ProviderKakao, snsID)
	if err != nil {
		return nil, fmt.Errorf("kakao user lookup failed: %w", err)
	}
	if user != nil {
		return user, nil
	}

	nick := profile.Properties.Nickname
	if nick == "" {
		nick = "kakao_" + snsID
	}
	user = &model.User{
		Nick:     nick,
		Provider: model.ProviderKakao,
		SNSID:    &snsID,
	}
	if email := profile.KakaoAccount.Email; email != "" {
		user.Email = &email
	}

	err = b.users.Create(ctx, user)
	if err == repository.ErrDuplicateUser {
		// Lost the first-login race; the row exists now.
		logger.Debug("kakao first-login race, re-reading user", logger.String("snsId", snsID))
		user, err = b.users.FindBySNS(ctx, model.ProviderKakao, snsID)
		if err != nil {
			return nil, fmt.Errorf("kakao user re-lookup failed: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("kakao user vanished after duplicate-key race")
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create kakao user: %w", err)
	}

	logger.Info("created kakao user", logger.Int64("userId", user.ID), logger.String("nick", user.Nick))
	return user, nil
}
