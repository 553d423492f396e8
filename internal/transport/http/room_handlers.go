package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor-server/internal/config"
	"github.com/parlorchat/parlor-server/internal/core"
	"github.com/parlorchat/parlor-server/internal/store"
)

// RoomHandlers provides HTTP handlers for room listing, creation, and
// history.
type RoomHandlers struct {
	store        store.Store
	historyLimit int
	log          *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, cfg *config.Config, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store:        st,
		historyLimit: cfg.HistoryLimit,
		log:          logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Group string `json:"group" binding:"required,min=1,max=32"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Group     string `json:"group"`
	CreatedAt string `json:"created_at"`
}

// HistoryResponse represents a history response body.
type HistoryResponse struct {
	History []core.HistoryEntry `json:"history"`
}

// ListRooms lists rooms under a group.
// GET /api/rooms?group=G
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	group := c.Query("group")
	if group == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "group is required"})
		return
	}

	rooms, err := h.store.ListRoomsByGroup(c.Request.Context(), group)
	if err != nil {
		h.log.Error().Err(err).Str("group", group).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, roomResponse(room))
	}

	c.JSON(http.StatusOK, response)
}

// CreateRoom creates the next room in a group, named "<group>-<n>".
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	existing, err := h.store.ListRoomsByGroup(c.Request.Context(), req.Group)
	if err != nil {
		h.log.Error().Err(err).Str("group", req.Group).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	name := fmt.Sprintf("%s-%d", req.Group, len(existing)+1)
	room, err := h.store.CreateRoom(c.Request.Context(), name, req.Group)
	if err != nil {
		// SQLite UNIQUE constraint means a concurrent create won the name.
		if strings.Contains(err.Error(), "UNIQUE") {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room with this name already exists"})
			return
		}
		h.log.Error().Err(err).Str("room_name", name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_name", room.Name).Int64("room_id", room.ID).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// RoomHistory returns the room's history visible to the authenticated user,
// shaped exactly like the socket history event.
// GET /api/rooms/:name/history
func (h *RoomHandlers) RoomHistory(c *gin.Context) {
	userID := c.GetString(ContextKeyUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	room, err := h.store.GetRoomByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room", c.Param("name")).Msg("failed to look up room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	rows, err := h.store.ListVisibleHistory(c.Request.Context(), room.ID, userID, h.historyLimit)
	if err != nil {
		h.log.Error().Err(err).Str("room", room.Name).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{History: core.HistoryEntries(rows)})
}

func roomResponse(room *store.Room) RoomResponse {
	return RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		Group:     room.Group,
		CreatedAt: room.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
