package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/wavefeed/wavefeed-be/internal/auth"
	"github.com/wavefeed/wavefeed-be/internal/services"
)

// PostHandler handles HTTP requests for the post feed.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// PostPayload defines the structure for create/edit requests.
type PostPayload struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// CommentPayload defines the structure for comment requests.
type CommentPayload struct {
	Text string `json:"text"`
}

// Create handles the request to create a new post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrors(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.service.CreatePost(callerID, payload.Text, payload.Image)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// Edit handles the request to edit a post's text or image.
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrors(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.service.EditPost(callerID, chi.URLParam(r, "postId"), payload.Text, payload.Image)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Delete handles the request to delete a post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := h.service.DeletePost(callerID, chi.URLParam(r, "postId")); err != nil {
		h.respondError(w, err)
		return
	}
	respondMsg(w, http.StatusOK, "Post removed")
}

// GetAll handles the request to list the feed, newest first.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetAllPosts()
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Get handles the request to get a single post.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(chi.URLParam(r, "postId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Like handles the request to like a post.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	likes, err := h.service.LikePost(callerID, chi.URLParam(r, "postId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, likes)
}

// Unlike handles the request to remove a like from a post.
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	likes, err := h.service.UnlikePost(callerID, chi.URLParam(r, "postId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, likes)
}

// AddComment handles the request to comment on a post.
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	var payload CommentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrors(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comments, err := h.service.AddComment(callerID, chi.URLParam(r, "postId"), payload.Text)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// DeleteComment handles the request to delete a comment from a post.
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		respondMsg(w, http.StatusInternalServerError, "Server error")
		return
	}

	comments, err := h.service.DeleteComment(callerID, chi.URLParam(r, "postId"), chi.URLParam(r, "commentId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// respondError translates domain errors to responses. Ownership and
// role violations come back as 401, matching the auth failures.
func (h *PostHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		respondMsg(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrCommentNotFound):
		respondMsg(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, services.ErrForbidden):
		respondMsg(w, http.StatusUnauthorized, "User not authorized")
	case errors.Is(err, services.ErrAlreadyLiked):
		respondMsg(w, http.StatusBadRequest, "Post already liked")
	case errors.Is(err, services.ErrNotLiked):
		respondMsg(w, http.StatusBadRequest, "Post has not yet been liked")
	case errors.Is(err, services.ErrEmptyPost):
		respondErrors(w, http.StatusBadRequest, "Text or image is required")
	case errors.Is(err, services.ErrEmptyComment):
		respondErrors(w, http.StatusBadRequest, "Text is required")
	case errors.Is(err, services.ErrStaleWrite):
		respondMsg(w, http.StatusConflict, "Post was modified concurrently")
	default:
		log.Error().Err(err).Msg("Post operation failed")
		respondMsg(w, http.StatusInternalServerError, "Server error")
	}
}
