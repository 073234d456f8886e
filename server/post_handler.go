package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"perch/logger"
	"perch/model"
)

const maxImageSize = 20 << 20 // 20MB, matching the upload surface limit

var hashtagPattern = regexp.MustCompile(`#[^\s#]+`)

// UploadImageHandler stores an attached image in object storage and returns
// its public URL for the subsequent post submission.
// POST /post/img (guarded by RequireAuth)
func (h *WebHandler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "image too large or invalid form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("img")
	if err != nil {
		http.Error(w, "img file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		http.Error(w, "image too large", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("original/%d_%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	url, err := h.uploader.Upload(r.Context(), objectName, file, header.Size, contentType)
	if err != nil {
		serverError(w, "image upload failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// CreatePostHandler stores a post, extracting #hashtags from its content.
// POST /post (guarded by RequireAuth)
func (h *WebHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	content := strings.TrimSpace(r.PostFormValue("content"))
	if content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	actor := ViewContextFrom(r.Context()).User
	post := &model.Post{
		Content: content,
		Img:     r.PostFormValue("url"),
		UserID:  actor.ID,
	}

	var tags []string
	for _, raw := range hashtagPattern.FindAllString(content, -1) {
		tags = append(tags, strings.ToLower(strings.TrimPrefix(raw, "#")))
	}

	if err := h.posts.Create(r.Context(), post, tags); err != nil {
		serverError(w, "post creation failed", err)
		return
	}

	logger.Info("post created", logger.Int64("postId", post.ID), logger.Int64("userId", actor.ID))
	http.Redirect(w, r, "/", http.StatusFound)
}
