package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// RideHandler handles HTTP requests for rides (ops/introspection).
type RideHandler struct {
	rideRepo repository.RideRepository
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideRepo repository.RideRepository) *RideHandler {
	return &RideHandler{rideRepo: rideRepo}
}

// RideResponse is the HTTP response for ride data.
type RideResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	OriginalMessage string    `json:"original_message"`
	FromLocation    string    `json:"from_location"`
	ToLocation      string    `json:"to_location"`
	DepartureTime   time.Time `json:"departure_time"`
	PartySize       int       `json:"party_size"`
	Status          string    `json:"status"`
	MatchedRideID   string    `json:"matched_ride_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	rides, err := h.rideRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}
	c.JSON(http.StatusOK, response)
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride))
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		OriginalMessage: r.OriginalMessage,
		FromLocation:    string(r.FromLocation),
		ToLocation:      string(r.ToLocation),
		DepartureTime:   r.DepartureTime,
		PartySize:       r.PartySize,
		Status:          string(r.Status),
		MatchedRideID:   r.MatchedRideID,
		CreatedAt:       r.CreatedAt,
	}
}
