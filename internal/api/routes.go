package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the data set routes under /api/v1.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	v1 := router.Group("/api/v1")

	datasets := v1.Group("/datasets/:index")
	{
		datasets.GET("/bounds", handler.Bounds)

		datasets.GET("/activity", handler.EmailActivity)
		datasets.GET("/activity/daily", handler.DailyActivity)
		datasets.GET("/activity/total", handler.TotalActivity)
		datasets.GET("/activity/detect", handler.DetectActivity)

		datasets.GET("/attachments", handler.Attachments)
		datasets.GET("/attachments/senders/:email", handler.SenderAttachments)

		datasets.GET("/entities", handler.Entities)
	}
}
