package server

import (
	"fmt"
	"net/http"

	"perch/logger"

	"github.com/gorilla/mux"
)

// Routes builds the router. Identity resolution runs on every route before
// any guard or handler.
func (h *WebHandler) Routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(Recover, LogRequests, h.SessionGate)

	// Pages
	router.HandleFunc("/", h.RenderMain).Methods(http.MethodGet)
	router.HandleFunc("/join", h.RequireNoAuth(h.RenderJoin)).Methods(http.MethodGet)
	router.HandleFunc("/profile", h.RequireAuth(h.RenderProfile)).Methods(http.MethodGet)

	// Authentication
	router.HandleFunc("/auth/join", h.RequireNoAuth(h.JoinHandler)).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", h.RequireNoAuth(h.LoginHandler)).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", h.RequireAuth(h.LogoutHandler)).Methods(http.MethodGet)
	router.HandleFunc("/auth/kakao", h.KakaoHandler).Methods(http.MethodGet)
	router.HandleFunc("/auth/kakao/callback", h.KakaoCallbackHandler).Methods(http.MethodGet)

	// Follow graph
	router.HandleFunc("/user/{id:[0-9]+}/follow", h.RequireAuth(h.FollowHandler)).Methods(http.MethodPost)
	router.HandleFunc("/user/{id:[0-9]+}/unfollow", h.RequireAuth(h.UnfollowHandler)).Methods(http.MethodPost)

	// Posts
	router.HandleFunc("/post", h.RequireAuth(h.CreatePostHandler)).Methods(http.MethodPost)
	router.HandleFunc("/post/img", h.RequireAuth(h.UploadImageHandler)).Methods(http.MethodPost)

	// Undefined routes get their own 404, never conflated with a missing
	// follow target.
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("no such route", logger.String("method", r.Method), logger.String("path", r.URL.Path))
		http.Error(w, fmt.Sprintf("%s %s 라우터가 없습니다.", r.Method, r.URL.Path), http.StatusNotFound)
	})

	return router
}
