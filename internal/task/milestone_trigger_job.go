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

// MilestoneTriggerJob 里程碑触发任务：筹款进度越过配置阈值时
// 自动为创建者发起提现申请。触发是建议性的，已有活跃申请时静默跳过
type MilestoneTriggerJob struct {
	db           *gorm.DB
	config       *config.Config
	requestLogic *logic.EscrowRequestLogic
}

// NewMilestoneTriggerJob 创建里程碑触发任务
func NewMilestoneTriggerJob(db *gorm.DB, cfg *config.Config) *MilestoneTriggerJob {
	return &MilestoneTriggerJob{
		db:           db,
		config:       cfg,
		requestLogic: logic.NewEscrowRequestLogic(db, cfg.Voting),
	}
}

// GetName 获取任务名称
func (j *MilestoneTriggerJob) GetName() string {
	return "milestone_trigger"
}

// GetSchedule 获取调度配置
func (j *MilestoneTriggerJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *MilestoneTriggerJob) Execute() {
	var campaigns []model.CampaignModel
	err := j.db.Where("status IN ? AND goal_amount > 0", []model.CampaignStatus{
		model.CampaignStatusActive,
		model.CampaignStatusSuccess,
	}).Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch campaigns for milestone check: %v", err)
		return
	}

	triggered := 0
	for _, campaign := range campaigns {
		progress := campaign.CurrentAmount * 100 / campaign.GoalAmount

		for _, milestone := range j.config.Voting.Milestones {
			if progress < int64(milestone) {
				continue
			}
			escrow, err := j.requestLogic.CreateMilestoneRequest(campaign.Id, milestone)
			if err != nil {
				logger.Error("Failed to create milestone request for campaign %d at %d%%: %v",
					campaign.Id, milestone, err)
				continue
			}
			if escrow != nil {
				triggered++
			}
		}
	}

	if triggered > 0 {
		logger.Info("Milestone trigger completed, created %d withdrawal requests", triggered)
	}
}
