package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tripTagAPI/middleware"
	"tripTagAPI/services"
)

// Photo uploads are capped well below this; the form limit just bounds
// memory use while parsing.
const maxPhotoUploadBytes = 10 << 20

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// CreatePost accepts a multipart form: "photo" (the JPEG) and "attraction"
// (the attraction name the user is posting at).
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	attractionName := r.FormValue("attraction")
	if attractionName == "" {
		respondWithError(w, http.StatusBadRequest, "attraction is required")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read photo")
		return
	}

	p, err := h.postService.CreatePost(ctx, userID, attractionName, photo)
	if err != nil {
		log.Printf("CreatePost Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to create post")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *PostHandler) GetMyPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	posts, err := h.postService.GetUserPosts(ctx, userID)
	if err != nil {
		log.Printf("GetMyPosts Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load posts")
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	posts, err := h.postService.GetFriendsPosts(ctx, userID)
	if err != nil {
		log.Printf("GetFeed Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load feed")
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	postID := mux.Vars(r)["postId"]
	if postID == "" {
		respondWithError(w, http.StatusBadRequest, "postId is required")
		return
	}

	status, err := h.postService.ToggleLike(ctx, postID, userID)
	if err != nil {
		log.Printf("ToggleLike Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to toggle like")
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

func (h *PostHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	postID := mux.Vars(r)["postId"]
	if postID == "" {
		respondWithError(w, http.StatusBadRequest, "postId is required")
		return
	}

	count, err := h.postService.GetLikesCount(ctx, postID)
	if err != nil {
		log.Printf("GetLikes Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to count likes")
		return
	}

	liked, err := h.postService.IsPostLikedByUser(ctx, postID, userID)
	if err != nil {
		log.Printf("GetLikes Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to check like")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"post_id": postID,
		"count":   count,
		"liked":   liked,
	})
}
