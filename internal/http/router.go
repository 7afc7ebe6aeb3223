package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/networks", h.Networks)
		api.GET("/target-networks", h.TargetNetworks)
		api.GET("/contracts", h.Contracts)

		form := api.Group("/form")
		form.GET("", h.FormStatus)
		form.POST("/network", h.SelectNetwork)
		form.POST("/address", h.ChangeAddress)
		form.POST("/abi", h.ChangeAbi)
		form.POST("/load", h.Load)
		form.POST("/reset", h.Reset)
	}

	return r
}
