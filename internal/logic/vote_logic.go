package logic

import (
	"time"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/errs"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteLogic 投票提交与结果统计。每个捐赠人对一条申请最多一票，
// 重复提交覆盖旧票（同一人并发重投按后写者生效，不同人的票互不影响）
type VoteLogic struct {
	db       *gorm.DB
	ledger   *DonationLedgerLogic
	schedule *VotingScheduleLogic
}

// NewVoteLogic 创建投票逻辑
func NewVoteLogic(db *gorm.DB, voting config.VotingConfig) *VoteLogic {
	return &VoteLogic{
		db:       db,
		ledger:   NewDonationLedgerLogic(db),
		schedule: NewVotingScheduleLogic(db, voting),
	}
}

// SubmitVote 提交或更新投票
func (l *VoteLogic) SubmitVote(escrowId int64, donorAddress string, value model.VoteValue) (*model.VoteModel, error) {
	if !value.Valid() {
		return nil, errs.ErrInvalidVoteValue
	}

	now := time.Now()

	// 碰到已到期未结算的窗口先顺手结算，正确性不依赖定时任务的节奏
	if err := l.schedule.FinalizeIfExpired(escrowId, now); err != nil {
		return nil, err
	}

	escrow, err := getEscrow(l.db, escrowId)
	if err != nil {
		return nil, err
	}
	if !escrow.RequestStatus.IsVotingOpen() {
		if escrow.RequestStatus.IsTerminal() || escrow.RequestStatus == model.EscrowStatusVotingCompleted {
			return nil, errs.ErrVotingPeriodExpired
		}
		return nil, errs.ErrInvalidStatus
	}
	if escrow.VotingEndDate == nil || !now.Before(*escrow.VotingEndDate) {
		return nil, errs.ErrVotingPeriodExpired
	}

	eligible, err := l.ledger.HasCompletedDonation(escrow.CampaignId, donorAddress)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, errs.ErrNotEligibleToVote
	}

	// 票权每次提交时按台账最新已完成捐款额重新计算，不沿用旧票的快照
	donated, err := l.ledger.GetCompletedDonationTotal(escrow.CampaignId, donorAddress)
	if err != nil {
		return nil, err
	}

	vote := &model.VoteModel{
		EscrowId:      escrowId,
		DonorAddress:  donorAddress,
		Value:         value,
		DonatedAmount: donated,
		VoteWeight:    donated,
	}

	// (escrow_id, donor_address) 唯一键上的原子upsert
	err = l.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "escrow_id"}, {Name: "donor_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":          vote.Value,
			"donated_amount": vote.DonatedAmount,
			"vote_weight":    vote.VoteWeight,
			"updated_at":     now,
		}),
	}).Create(vote).Error
	if err != nil {
		return nil, err
	}

	logger.Info("Vote recorded: escrow %d, donor %s, value %s, weight %d",
		escrowId, donorAddress, value, vote.VoteWeight)

	// upsert 命中已有行时返回的是旧主键之外的字段，重新读一次保证返回最新状态
	var saved model.VoteModel
	if err := l.db.Where("escrow_id = ? AND donor_address = ?", escrowId, donorAddress).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// ComputeResults 统计投票结果，只读聚合
func (l *VoteLogic) ComputeResults(escrowId int64) (*model.VotingResults, error) {
	if _, err := getEscrow(l.db, escrowId); err != nil {
		return nil, err
	}
	return computeVotingResults(l.db, escrowId)
}

// GetEscrowVotes 获取申请的全部投票
func (l *VoteLogic) GetEscrowVotes(escrowId int64) ([]model.VoteModel, error) {
	var votes []model.VoteModel
	if err := l.db.Where("escrow_id = ?", escrowId).
		Order("updated_at DESC").
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}
