package handler

import (
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/pkg/serverutils"
	internalWS "tumaini-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// FeedHandler upgrades admin dashboard connections onto the live ledger
// feed.
type FeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, log logger.ILogger) *FeedHandler {
	return &FeedHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from admin dashboards.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	// Token via query param (browser WebSocket API can't set headers) or
	// Authorization header for tooling.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return serverutils.JwtSecret(), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("FeedHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
	}
	adminEmail, _ := claims["email"].(string)

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("FeedHandler", "Starting feed session", map[string]interface{}{"admin": adminEmail})
			internalWS.ServeWs(h.hub, conn, adminEmail)
			h.logger.Info("FeedHandler", "Feed session ended", map[string]interface{}{"admin": adminEmail})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the feed route under the admin group.
func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/admin/feed", h.ServeWs)
}
