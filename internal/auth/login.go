package auth

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"SamLoc/internal/game/engine"
	"SamLoc/internal/utils"
)

type GuestRequest struct {
	Name string `json:"name"`
}

type GuestResponse struct {
	Token     string `json:"token"`
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expiresAt"`
}

type Handler struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// 工厂方法：创建 handler
func NewHandler(secret string, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Guest POST /auth/guest
//
// Issues a fresh opaque player id. An empty body is allowed; the display name
// then falls back to a prefix of the id.
func (h *Handler) Guest(c *gin.Context) {
	var req GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	id := uuid.NewString()
	name := engine.NormalizeName(req.Name, id)
	now := h.now()

	token, err := Issue(h.secret, id, name, h.ttl, now)
	if err != nil {
		utils.Log.Error("jwt generation failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}

	utils.Log.Debug("guest login", "player", id, "name", name)
	c.JSON(http.StatusOK, GuestResponse{
		Token:     token,
		PlayerID:  id,
		Name:      name,
		ExpiresAt: now.Add(h.ttl).Unix(),
	})
}
