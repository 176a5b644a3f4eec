package web

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP routing tree. The webhook handler is optional
// and only mounted when a Telegram bot is configured.
func NewRouter(handler *Handler, webhook *WebhookHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		raffle := api.Group("/raffle")
		{
			raffle.GET("/current", handler.CurrentRaffle)
			raffle.GET("/status", handler.RaffleStatus)
			raffle.POST("/bid", handler.PlaceBid)
			raffle.GET("/history", handler.History)
			raffle.GET("/:id", handler.GetRaffle)
			raffle.GET("/:id/verify", handler.VerifyRaffle)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/raffles/:id/cancel", handler.CancelRaffle)
		}

		if webhook != nil {
			api.POST("/webhook", webhook.HandleUpdate)
		}
	}

	return router
}
