package server

import (
	"errors"
	"net/http"

	"perch/core/auth"
	"perch/logger"
	"perch/model"
	"perch/repository"

	"github.com/google/uuid"
)

// Login failure reasons surfaced to the user via the loginError query
// parameter.
const (
	reasonNoSuchUser     = "가입하지 않은 회원입니다."
	reasonWrongPassword  = "비밀번호가 일치하지 않습니다."
	reasonWrongMethod    = "소셜 로그인으로 가입된 계정입니다."
	reasonKakaoLoginFail = "카카오 로그인에 실패했습니다."
)

// JoinHandler registers a local account and logs it in.
// POST /auth/join (guarded by RequireNoAuth)
func (h *WebHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	nick := r.PostFormValue("nick")
	password := r.PostFormValue("password")
	if email == "" || nick == "" || password == "" {
		http.Error(w, "email, nick and password are required", http.StatusBadRequest)
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		serverError(w, "join lookup failed", err)
		return
	}
	if existing != nil {
		http.Redirect(w, r, "/join?error=exist", http.StatusFound)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		serverError(w, "password hashing failed", err)
		return
	}

	user := &model.User{
		Email:    &email,
		Nick:     nick,
		Password: hash,
		Provider: model.ProviderLocal,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		// A concurrent join for the same email loses the unique-index race.
		if errors.Is(err, repository.ErrDuplicateUser) {
			http.Redirect(w, r, "/join?error=exist", http.StatusFound)
			return
		}
		serverError(w, "join create failed", err)
		return
	}

	logger.Info("user joined", logger.Int64("userId", user.ID), logger.String("nick", user.Nick))
	h.establishAndGoHome(w, r, user)
}

// LoginHandler verifies local credentials and establishes a session.
// POST /auth/login (guarded by RequireNoAuth)
func (h *WebHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	user, err := h.verifier.Verify(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNoSuchUser):
			redirectWithReason(w, r, "/", "loginError", reasonNoSuchUser)
		case errors.Is(err, auth.ErrWrongPassword):
			redirectWithReason(w, r, "/", "loginError", reasonWrongPassword)
		case errors.Is(err, auth.ErrWrongCredentialMethod):
			redirectWithReason(w, r, "/", "loginError", reasonWrongMethod)
		default:
			serverError(w, "login verification failed", err)
		}
		return
	}

	h.establishAndGoHome(w, r, user)
}

// LogoutHandler destroys the session and clears the cookie.
// GET /auth/logout (guarded by RequireAuth)
func (h *WebHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if token, ok := h.signer.Verify(cookie.Value); ok {
			if err := h.identity.Drop(r.Context(), token); err != nil {
				serverError(w, "logout failed", err)
				return
			}
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// KakaoHandler sends the user to the kakao consent page.
// GET /auth/kakao
func (h *WebHandler) KakaoHandler(w http.ResponseWriter, r *http.Request) {
	state := h.kakao.MakeState(uuid.NewString())
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
	})
	http.Redirect(w, r, h.kakao.AuthCodeURL(state), http.StatusFound)
}

// KakaoCallbackHandler completes the kakao login.
// GET /auth/kakao/callback
func (h *WebHandler) KakaoCallbackHandler(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || state == "" || state != stateCookie.Value || !h.kakao.VerifyState(state) {
		logger.Warn("kakao callback with bad state")
		redirectWithReason(w, r, "/", "loginError", reasonKakaoLoginFail)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithReason(w, r, "/", "loginError", reasonKakaoLoginFail)
		return
	}

	user, err := h.kakao.ExchangeAndResolve(r.Context(), code)
	if err != nil {
		// Exchange failure, not a credential failure.
		logger.Error("kakao exchange failed", logger.ErrorField(err))
		redirectWithReason(w, r, "/", "loginError", reasonKakaoLoginFail)
		return
	}

	h.establishAndGoHome(w, r, user)
}

func (h *WebHandler) establishAndGoHome(w http.ResponseWriter, r *http.Request, user *model.User) {
	token, err := h.identity.Establish(r.Context(), user)
	if err != nil {
		serverError(w, "session establishment failed", err)
		return
	}
	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}
