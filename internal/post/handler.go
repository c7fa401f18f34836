package handler

import (
	"encoding/json"
	"net/http"

	"sosmed/internal/post/model"
	"sosmed/internal/post/service"
	"sosmed/middleware"
	"sosmed/pkg/logger"
	"sosmed/pkg/response"

	"github.com/gorilla/mux"
)

type PostHandler struct {
	Service *service.PostService
}

func NewPostHandler(service *service.PostService) *PostHandler {
	return &PostHandler{Service: service}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.Service.CreatePost(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create post: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Service.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.Service.UpdatePost(r.Context(), id, middleware.UserID(r.Context()), req); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Post Updated")
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.DeletePost(r.Context(), id, middleware.UserID(r.Context())); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Post deleted successfully")
}

func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.Service.ToggleLike(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, res.Message())
}

func (h *PostHandler) GetTimelinePosts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	feed, err := h.Service.Timeline(r.Context(), id)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to build timeline for %s: %v", id, err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, feed)
}
