package router

import (
	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/handler"
	"github.com/blues/ces/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config, sender logic.PayoutSender) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(corsMiddleware())
	r.Use(requestIdMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "crowdfunding-escrow-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		escrowHandler := handler.NewEscrowHandler(db, cfg, sender)
		voteHandler := handler.NewVoteHandler(db, cfg)

		// 活动维度
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("/:id/withdrawals", escrowHandler.CreateWithdrawal)
			campaigns.GET("/:id/withdrawals", escrowHandler.GetCampaignWithdrawals)
		}

		// 提现申请维度
		withdrawals := v1.Group("/withdrawals")
		{
			withdrawals.GET("/:id", escrowHandler.GetWithdrawal)
			withdrawals.POST("/:id/cancel", escrowHandler.Cancel)
			withdrawals.POST("/:id/review", escrowHandler.Review)
			withdrawals.POST("/:id/release", escrowHandler.Release)
			withdrawals.POST("/:id/votes", voteHandler.SubmitVote)
			withdrawals.GET("/:id/votes", voteHandler.GetVotes)
			withdrawals.GET("/:id/results", voteHandler.GetResults)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// 请求ID中间件，便于跨服务排查
func requestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader("X-Request-Id")
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header("X-Request-Id", requestId)
		c.Next()
	}
}
