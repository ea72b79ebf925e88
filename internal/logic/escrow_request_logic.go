package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/errs"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/model"
	"gorm.io/gorm"
)

// EscrowRequestLogic 提现申请的创建与撤销。
// "一个活动仅一条活跃申请"由 escrow_record 上的部分唯一索引保证，
// 并发创建时数据库只放行一个
type EscrowRequestLogic struct {
	db       *gorm.DB
	schedule *VotingScheduleLogic
}

// NewEscrowRequestLogic 创建提现申请逻辑
func NewEscrowRequestLogic(db *gorm.DB, voting config.VotingConfig) *EscrowRequestLogic {
	return &EscrowRequestLogic{
		db:       db,
		schedule: NewVotingScheduleLogic(db, voting),
	}
}

// CreateWithdrawalRequest 创建者发起提现申请
func (l *EscrowRequestLogic) CreateWithdrawalRequest(campaignId int64, requestedBy string, amount int64, reason string) (*model.EscrowRecordModel, error) {
	campaign, err := getCampaign(l.db, campaignId)
	if err != nil {
		return nil, err
	}
	if campaign.CreatorAddress != requestedBy {
		return nil, errs.ErrUnauthorized
	}

	escrow, err := l.create(campaign, requestedBy, amount, reason, false, 0)
	if err != nil {
		return nil, err
	}

	// 创建后立即开启投票窗口，失败时留在 pending_voting 由定时任务补开
	if opened, err := l.schedule.OpenVotingWindow(escrow.Id); err != nil {
		logger.Warn("Failed to open voting window for escrow %d: %v", escrow.Id, err)
	} else {
		escrow = opened
	}
	return escrow, nil
}

// CreateMilestoneRequest 筹款进度达到配置阈值时由系统自动发起提现申请。
// 已存在活跃申请或该阈值已触发过时静默跳过（返回 nil, nil），里程碑触发只是建议性的
func (l *EscrowRequestLogic) CreateMilestoneRequest(campaignId int64, percentage int) (*model.EscrowRecordModel, error) {
	campaign, err := getCampaign(l.db, campaignId)
	if err != nil {
		return nil, err
	}

	// 同一阈值对同一活动最多触发一次，之前的结果不论成败都不再重试
	var fired int64
	if err := l.db.Model(&model.EscrowRecordModel{}).
		Where("campaign_id = ? AND auto_created = ? AND milestone_percentage = ?", campaignId, true, percentage).
		Count(&fired).Error; err != nil {
		return nil, err
	}
	if fired > 0 {
		return nil, nil
	}

	amount := campaign.RemainingAmount()
	if amount <= 0 {
		return nil, nil
	}

	reason := fmt.Sprintf("筹款进度达到 %d%%，系统自动发起提现申请", percentage)
	escrow, err := l.create(campaign, campaign.CreatorAddress, amount, reason, true, percentage)
	if err != nil {
		if errors.Is(err, errs.ErrPendingRequestExists) {
			return nil, nil
		}
		return nil, err
	}

	if opened, err := l.schedule.OpenVotingWindow(escrow.Id); err != nil {
		logger.Warn("Failed to open voting window for escrow %d: %v", escrow.Id, err)
	} else {
		escrow = opened
	}

	logger.Info("Milestone %d%% triggered withdrawal request %d for campaign %d, amount %d",
		percentage, escrow.Id, campaignId, amount)
	return escrow, nil
}

// create 校验并落库，所有前置条件在任何写入之前检查
func (l *EscrowRequestLogic) create(campaign *model.CampaignModel, requestedBy string, amount int64, reason string, autoCreated bool, milestonePercentage int) (*model.EscrowRecordModel, error) {
	if !campaign.IsFundable() {
		return nil, errs.ErrCampaignNotActive
	}
	// 剩余金额以最新提交值校验，绝不使用缓存
	if amount <= 0 || amount > campaign.RemainingAmount() {
		return nil, errs.ErrInvalidAmount
	}

	escrow := &model.EscrowRecordModel{
		CampaignId:              campaign.Id,
		TotalAmount:             campaign.CurrentAmount,
		RemainingAmount:         campaign.RemainingAmount(),
		WithdrawalRequestAmount: amount,
		RequestedBy:             requestedBy,
		RequestReason:           reason,
		RequestStatus:           model.EscrowStatusPendingVoting,
		AutoCreated:             autoCreated,
		MilestonePercentage:     milestonePercentage,
	}

	if err := l.db.Create(escrow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrPendingRequestExists
		}
		return nil, fmt.Errorf("创建提现申请失败: %w", err)
	}

	return escrow, nil
}

// Cancel 申请人撤销提现申请，仅投票结束前可撤销。
// 窗口已到期时先结算再判断，到期结算优先于撤销
func (l *EscrowRequestLogic) Cancel(escrowId int64, requestedBy string) (*model.EscrowRecordModel, error) {
	escrow, err := getEscrow(l.db, escrowId)
	if err != nil {
		return nil, err
	}
	if escrow.RequestedBy != requestedBy {
		return nil, errs.ErrUnauthorized
	}

	if err := l.schedule.FinalizeIfExpired(escrowId, time.Now()); err != nil {
		return nil, err
	}

	res := l.db.Model(&model.EscrowRecordModel{}).
		Where("id = ? AND request_status IN ?", escrowId, []model.EscrowStatus{
			model.EscrowStatusPendingVoting,
			model.EscrowStatusVotingInProgress,
		}).
		Update("request_status", model.EscrowStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrInvalidStatus
	}

	logger.Info("Escrow %d cancelled by %s", escrowId, requestedBy)
	return getEscrow(l.db, escrowId)
}

// GetEscrow 获取提现申请详情
func (l *EscrowRequestLogic) GetEscrow(escrowId int64) (*model.EscrowRecordModel, error) {
	return getEscrow(l.db, escrowId)
}

// GetCampaignEscrows 获取活动的全部提现申请
func (l *EscrowRequestLogic) GetCampaignEscrows(campaignId int64) ([]model.EscrowRecordModel, error) {
	var escrows []model.EscrowRecordModel
	if err := l.db.Where("campaign_id = ?", campaignId).
		Order("created_at DESC").
		Find(&escrows).Error; err != nil {
		return nil, fmt.Errorf("获取提现申请列表失败: %w", err)
	}
	return escrows, nil
}

// getCampaign 读取活动
func getCampaign(db *gorm.DB, campaignId int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}
	return &campaign, nil
}
