package server

import (
	"net/http"
	"net/url"

	"perch/config"
	"perch/core/auth"
	"perch/core/follow"
	"perch/logger"
	"perch/repository"
	"perch/session"
	"perch/storage"
	"perch/view"
)

// WebHandler bundles the dependencies of the HTTP surface.
type WebHandler struct {
	cfg      *config.Config
	users    repository.UserRepository
	posts    repository.PostRepository
	verifier *auth.Verifier
	kakao    *auth.KakaoBridge
	identity *auth.Serializer
	follows  *follow.Service
	signer   *session.Signer
	renderer view.Renderer
	uploader storage.Uploader
}

// NewWebHandler creates a WebHandler.
func NewWebHandler(
	cfg *config.Config,
	users repository.UserRepository,
	posts repository.PostRepository,
	verifier *auth.Verifier,
	kakao *auth.KakaoBridge,
	identity *auth.Serializer,
	follows *follow.Service,
	signer *session.Signer,
	renderer view.Renderer,
	uploader storage.Uploader,
) *WebHandler {
	return &WebHandler{
		cfg:      cfg,
		users:    users,
		posts:    posts,
		verifier: verifier,
		kakao:    kakao,
		identity: identity,
		follows:  follows,
		signer:   signer,
		renderer: renderer,
		uploader: uploader,
	}
}

// serverError logs the cause and answers a generic 500. Internal detail
// never reaches the response.
func serverError(w http.ResponseWriter, msg string, err error) {
	logger.Error(msg, logger.ErrorField(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// redirectWithReason redirects to path with a human-readable reason in the
// given query parameter.
func redirectWithReason(w http.ResponseWriter, r *http.Request, path, param, reason string) {
	v := url.Values{}
	v.Set(param, reason)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusFound)
}
