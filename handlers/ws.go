package handlers

import (
	"encoding/json"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/middleware"
	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

const sessionUserKey = "user_id"

// WSHandler pushes change notifications to a user's open dashboards.
type WSHandler struct {
	M *melody.Melody
}

type changeEvent struct {
	Type  string `json:"type"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024

	// Keep-alive for proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		utils.LogWebSocket("connected", toString(userID))
	})

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		utils.LogWebSocket("disconnected", toString(userID))
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeWarn("WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades an authenticated request.
func (h *WSHandler) HandleWS(c *gin.Context) {
	keys := map[string]interface{}{sessionUserKey: middleware.GetUserID(c)}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		utils.SafeWarn("Failed to upgrade websocket: %v", err)
	}
}

// NotifyUser sends an event to every session of userID.
func (h *WSHandler) NotifyUser(userID, eventType string, period models.Period) {
	msg, err := json.Marshal(changeEvent{Type: eventType, Year: period.Year, Month: int(period.Month)})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, exists := s.Get(sessionUserKey)
		return exists && id == userID
	})
	if err != nil {
		utils.SafeWarn("Error broadcasting to user %s: %v", utils.MaskID(userID), err)
	}
}

func (h *WSHandler) Close() error {
	return h.M.Close()
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
