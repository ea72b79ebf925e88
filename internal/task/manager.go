package task

import (
	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/logic"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	sender    logic.PayoutSender
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, sender logic.PayoutSender, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		sender:    sender,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, sender logic.PayoutSender, cfg *config.Config) *Manager {
	manager := NewManager(db, sender, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// Job 定时任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 投票窗口到期结算
	m.register(NewVotingFinalizeJob(m.db, m.config))
	// 里程碑自动触发提现申请
	m.register(NewMilestoneTriggerJob(m.db, m.config))
	// 放款指令重试
	m.register(NewPayoutJob(m.db, m.sender, m.config))
}

// register 注册单个任务
func (m *Manager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
