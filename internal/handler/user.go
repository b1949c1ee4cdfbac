package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// UserHandler handles HTTP requests for users (ops/introspection only;
// users are created by texting the service, not through this API).
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// UserResponse is the HTTP response for user data. The verification code
// is deliberately never exposed here.
type UserResponse struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	FullName    string    `json:"full_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{
			ID:          u.ID,
			PhoneNumber: u.PhoneNumber,
			FullName:    u.FullName,
			Email:       u.Email,
			Verified:    u.Verified,
			CreatedAt:   u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}
