package task

import (
	"time"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/logic"
	"github.com/blues/ces/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// PayoutJob 放款任务：驱动 pending/failed 状态的放款指令。
// 放款以 escrow_id 幂等，放款服务宕机或进程崩溃后重试安全
type PayoutJob struct {
	db           *gorm.DB
	config       *config.Config
	releaseLogic *logic.ReleaseLogic
}

// NewPayoutJob 创建放款任务
func NewPayoutJob(db *gorm.DB, sender logic.PayoutSender, cfg *config.Config) *PayoutJob {
	return &PayoutJob{
		db:           db,
		config:       cfg,
		releaseLogic: logic.NewReleaseLogic(db, sender),
	}
}

// GetName 获取任务名称
func (j *PayoutJob) GetName() string {
	return "payout_processor"
}

// GetSchedule 获取调度配置
func (j *PayoutJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *PayoutJob) Execute() {
	var records []model.PayoutRecordModel
	err := j.db.Where("status IN ?", []model.PayoutStatus{
		model.PayoutStatusPending,
		model.PayoutStatusFailed,
	}).Find(&records).Error
	if err != nil {
		logger.Error("Failed to fetch pending payout records: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	processed := 0
	for i := range records {
		record := &records[i]
		if err := j.releaseLogic.ProcessPayout(record); err != nil {
			logger.Error("Failed to process payout %d for escrow %d: %v",
				record.Id, record.EscrowId, err)
			continue
		}
		logger.Info("Payout %d for escrow %d completed, amount %d",
			record.Id, record.EscrowId, record.Amount)
		processed++
	}

	logger.Info("Payout task completed. Processed %d of %d records", processed, len(records))
}
