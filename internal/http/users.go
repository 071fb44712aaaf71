package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/auth"
)

// UsersController serves the admin user management endpoints and the
// current user's profile.
type UsersController struct {
	service *auth.Service
}

// NewUsersController creates a new users controller.
func NewUsersController(service *auth.Service) *UsersController {
	return &UsersController{service: service}
}

// List returns all users. Admin only.
func (controller *UsersController) List(c *gin.Context) {
	all, err := controller.service.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": all, "count": len(all)})
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// Create adds a user. Admin only.
func (controller *UsersController) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.service.CreateUser(req.Username, req.Password, req.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondConflict(c, err.Error())
		case errors.Is(err, auth.ErrUsernameRequired),
			errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrUsernameInvalid),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "create user")
		}
		return
	}

	respondCreated(c, user)
}

type updateUserRequest struct {
	IsAdmin       *bool `json:"is_admin"`
	ShareShelves  *bool `json:"share_shelves"`
	ShareProgress *bool `json:"share_progress"`
}

// Update changes a user's role or privacy settings. Admin only. Demoting the
// last admin is refused.
func (controller *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := make(map[string]any)
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}
	if req.ShareShelves != nil {
		updates["share_shelves"] = *req.ShareShelves
	}
	if req.ShareProgress != nil {
		updates["share_progress"] = *req.ShareProgress
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields provided")
		return
	}

	user, err := controller.service.UpdateUser(id, updates)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, auth.ErrLastAdmin):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "update user")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes a user. Admin only. Deleting the last admin is refused.
func (controller *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.service.DeleteUser(id); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, auth.ErrLastAdmin):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "delete user")
		}
		return
	}

	respondSuccess(c, "user deleted")
}

// GetProfile returns the authenticated user.
func (controller *UsersController) GetProfile(c *gin.Context) {
	user, err := controller.service.GetUserByID(GetUserID(c))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	ShareShelves  *bool `json:"share_shelves"`
	ShareProgress *bool `json:"share_progress"`
}

// UpdateProfile lets the authenticated user change their own privacy
// settings. Role changes go through the admin endpoints.
func (controller *UsersController) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := make(map[string]any)
	if req.ShareShelves != nil {
		updates["share_shelves"] = *req.ShareShelves
	}
	if req.ShareProgress != nil {
		updates["share_progress"] = *req.ShareProgress
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields provided")
		return
	}

	user, err := controller.service.UpdateUser(GetUserID(c), updates)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}
