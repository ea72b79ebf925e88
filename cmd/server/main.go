package main

import (
	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/database"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/payout"
	"github.com/blues/ces/internal/router"
	"github.com/blues/ces/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if cfg.Log.Output == "file" {
		l, err := logger.NewWithFileRotation(logger.ParseLogLevel(cfg.Log.Level), cfg.Log.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(l)
	} else {
		logger.SetLevel(logger.ParseLogLevel(cfg.Log.Level))
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化放款客户端
	payoutClient, err := payout.Init(cfg.Payout)
	if err != nil {
		logger.Fatal("Failed to initialize payout client: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, cfg, payoutClient)

	// 启动定时任务
	manager := task.Start(db, payoutClient, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
