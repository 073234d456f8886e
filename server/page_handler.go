package server

import (
	"net/http"

	"perch/model"
)

// viewData builds the template data bag. The session gate's view context
// fields ride along on every page.
func viewData(r *http.Request, title string) map[string]interface{} {
	vc := ViewContextFrom(r.Context())
	var user *model.User
	if vc.Authenticated() {
		user = vc.User
	}
	return map[string]interface{}{
		"title":           title,
		"user":            user,
		"followerCount":   vc.FollowerCount,
		"followingCount":  vc.FollowingCount,
		"followingIdList": vc.FollowingIDList,
	}
}

// RenderMain renders the timeline.
// GET /
func (h *WebHandler) RenderMain(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Latest(r.Context(), 20)
	if err != nil {
		serverError(w, "failed to load timeline", err)
		return
	}

	data := viewData(r, "Perch")
	data["twits"] = posts
	data["error"] = r.URL.Query().Get("error")
	data["loginError"] = r.URL.Query().Get("loginError")

	if err := h.renderer.Render(w, "main.html", data); err != nil {
		serverError(w, "failed to render main page", err)
	}
}

// RenderJoin renders the registration form.
// GET /join (guarded by RequireNoAuth)
func (h *WebHandler) RenderJoin(w http.ResponseWriter, r *http.Request) {
	data := viewData(r, "회원가입 - Perch")
	data["error"] = r.URL.Query().Get("error")

	if err := h.renderer.Render(w, "join.html", data); err != nil {
		serverError(w, "failed to render join page", err)
	}
}

// RenderProfile renders the authenticated user's profile.
// GET /profile (guarded by RequireAuth)
func (h *WebHandler) RenderProfile(w http.ResponseWriter, r *http.Request) {
	data := viewData(r, "내 정보 - Perch")

	if err := h.renderer.Render(w, "profile.html", data); err != nil {
		serverError(w, "failed to render profile page", err)
	}
}
