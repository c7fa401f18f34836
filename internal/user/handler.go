package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"sosmed/internal/user/model"
	"sosmed/internal/user/service"
	"sosmed/middleware"
	"sosmed/pkg/apperror"
	"sosmed/pkg/logger"
	"sosmed/pkg/response"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Service.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, acc)
}

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Service.ListUsers(r.Context())
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to list users: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, accounts)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := mux.Vars(r)["id"]
	resp, err := h.Service.UpdateUser(r.Context(), id, middleware.UserID(r.Context()), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.DeleteUser(r.Context(), id, middleware.UserID(r.Context())); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "User deleted successfully")
}

func (h *UserHandler) FollowUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.Follow(r.Context(), id, middleware.UserID(r.Context())); err != nil {
		followError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "User followed!")
}

func (h *UserHandler) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.Unfollow(r.Context(), id, middleware.UserID(r.Context())); err != nil {
		followError(w, err)
		return
	}
	response.Message(w, http.StatusOK, "User Unfollowed!")
}

// Follow routes answer an already/not-following conflict with 403.
func followError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperror.ErrConflict) {
		response.Message(w, http.StatusForbidden, err.Error())
		return
	}
	response.Error(w, err)
}
