// Package http is the REST control surface of a chat node.
package http

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts the chat routes and the websocket upgrade behind authentication.
// ws may be nil when the node only serves the control surface.
func NewRouter(log *slog.Logger, resolver *auth.Resolver, members contract.IMemberService,
	rooms contract.IRoomService, messages contract.IMessageService, ws http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewHandlers(log, rooms, messages)
	authenticated := router.Group("/", Authenticate(log, resolver, members))

	chat := authenticated.Group("/chat")
	chat.POST("/room/group/create", h.CreateGroupRoom)
	chat.GET("/room/group/list", h.ListGroupRooms)
	chat.POST("/room/group/:roomId/join", h.JoinGroupRoom)
	chat.DELETE("/room/group/:roomId/leave", h.LeaveGroupRoom)
	chat.POST("/room/private/create", h.GetOrCreatePrivateRoom)
	chat.POST("/room/:roomId/read", h.AcknowledgeRead)
	chat.GET("/room/:roomId/search", h.Search)
	chat.GET("/history/:roomId", h.GetHistory)
	chat.GET("/my/rooms", h.ListMyRooms)

	if ws != nil {
		authenticated.GET("/connect", gin.WrapH(ws))
	}
	return router
}
