package api

import (
	"parklot/internal/api/handler"
	"parklot/internal/api/middleware"
	"parklot/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	authService *service.AuthService,
	allocationService *service.AllocationService,
	ticketService *service.TicketService,
	adminService *service.AdminService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Live display-board feed; no auth so lobby displays can connect.
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(authService)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		ticketH := handler.NewTicketHandler(ticketService)
		ticketRoutes := v1.Group("/tickets")
		{
			ticketRoutes.POST("", ticketH.Park)
			ticketRoutes.GET("", ticketH.ListOpenTickets)
			ticketRoutes.GET("/:id", ticketH.GetTicket)
			ticketRoutes.POST("/:id/close", ticketH.Unpark)
			ticketRoutes.PATCH("/:id/vehicle", ticketH.UpdateVehicle)
		}

		spotH := handler.NewSpotHandler(allocationService, adminService)
		v1.GET("/board", spotH.GetBoard)
		spotRoutes := v1.Group("/spots")
		{
			spotRoutes.GET("", spotH.ListSpotsByType)
			spotRoutes.POST("", authMw.AuthorizeRole("admin"), spotH.AddSpots)
			spotRoutes.PATCH("/:location/active", authMw.AuthorizeRole("admin"), spotH.SetSpotActive)
		}
	}
	return r
}
