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

// VotingScheduleLogic 投票窗口调度：开启、到期结算、延期
type VotingScheduleLogic struct {
	db     *gorm.DB
	voting config.VotingConfig
	ledger *DonationLedgerLogic
}

// NewVotingScheduleLogic 创建投票调度逻辑
func NewVotingScheduleLogic(db *gorm.DB, voting config.VotingConfig) *VotingScheduleLogic {
	return &VotingScheduleLogic{
		db:     db,
		voting: voting,
		ledger: NewDonationLedgerLogic(db),
	}
}

// OpenVotingWindow 开启投票窗口，仅允许从 pending_voting 进入
func (l *VotingScheduleLogic) OpenVotingWindow(escrowId int64) (*model.EscrowRecordModel, error) {
	escrow, err := getEscrow(l.db, escrowId)
	if err != nil {
		return nil, err
	}
	if escrow.RequestStatus != model.EscrowStatusPendingVoting {
		return nil, errs.ErrInvalidStatus
	}

	now := time.Now()
	end := now.Add(time.Duration(l.voting.PeriodDays) * 24 * time.Hour)

	// 状态CAS：并发开启时只有一个成功
	res := l.db.Model(&model.EscrowRecordModel{}).
		Where("id = ? AND request_status = ?", escrowId, model.EscrowStatusPendingVoting).
		Updates(map[string]interface{}{
			"request_status":    model.EscrowStatusVotingInProgress,
			"voting_start_date": &now,
			"voting_end_date":   &end,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrInvalidStatus
	}

	logger.Info("Voting window opened for escrow %d, ends at %s", escrowId, end.Format(time.RFC3339))
	return getEscrow(l.db, escrowId)
}

// FinalizeIfExpired 投票窗口到期结算。未到期或状态不符时为无操作，
// 可被定时任务与任何读写路径重复调用（幂等）
func (l *VotingScheduleLogic) FinalizeIfExpired(escrowId int64, now time.Time) error {
	escrow, err := getEscrow(l.db, escrowId)
	if err != nil {
		return err
	}
	return l.finalizeIfExpired(escrow, now)
}

func (l *VotingScheduleLogic) finalizeIfExpired(escrow *model.EscrowRecordModel, now time.Time) error {
	if !escrow.RequestStatus.IsVotingOpen() {
		return nil
	}
	if escrow.VotingEndDate == nil || now.Before(*escrow.VotingEndDate) {
		return nil
	}

	results, err := computeVotingResults(l.db, escrow.Id)
	if err != nil {
		return fmt.Errorf("统计投票结果失败: %w", err)
	}

	// 法定票权检查：已投票权不足合格总票权的配置比例时延长窗口，最多延长一次。
	// voting_extended 状态本身即"已延长过"的标记
	if escrow.RequestStatus == model.EscrowStatusVotingInProgress {
		eligible, err := l.ledger.GetTotalEligibleWeight(escrow.CampaignId)
		if err != nil {
			return err
		}
		quorum := eligible * int64(l.voting.QuorumPercent) / 100
		if results.CastWeight() < quorum {
			return l.extend(escrow, now)
		}
	}

	// 加权多数决
	target := model.EscrowStatusRejectedByCommunity
	if results.ApprovePercentage >= float64(l.voting.ApprovalPercent) {
		target = model.EscrowStatusVotingCompleted
	}

	res := l.db.Model(&model.EscrowRecordModel{}).
		Where("id = ? AND request_status = ?", escrow.Id, escrow.RequestStatus).
		Update("request_status", target)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 并发结算中输给了另一个调用方，结果一致，无需处理
		return nil
	}

	logger.Info("Escrow %d voting finalized: %s (approve %.1f%%, cast weight %d)",
		escrow.Id, target, results.ApprovePercentage, results.CastWeight())
	return nil
}

// extend 延长投票窗口
func (l *VotingScheduleLogic) extend(escrow *model.EscrowRecordModel, now time.Time) error {
	newEnd := now.Add(time.Duration(l.voting.ExtensionDays) * 24 * time.Hour)
	res := l.db.Model(&model.EscrowRecordModel{}).
		Where("id = ? AND request_status = ?", escrow.Id, model.EscrowStatusVotingInProgress).
		Updates(map[string]interface{}{
			"request_status":  model.EscrowStatusVotingExtended,
			"voting_end_date": &newEnd,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	logger.Info("Escrow %d voting extended to %s due to low turnout", escrow.Id, newEnd.Format(time.RFC3339))
	return nil
}

// getEscrow 读取提现申请
func getEscrow(db *gorm.DB, escrowId int64) (*model.EscrowRecordModel, error) {
	var escrow model.EscrowRecordModel
	if err := db.First(&escrow, escrowId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("获取提现申请失败: %w", err)
	}
	return &escrow, nil
}

// computeVotingResults 聚合统计投票结果，百分比按已投票权计算，无票为0
func computeVotingResults(db *gorm.DB, escrowId int64) (*model.VotingResults, error) {
	var row struct {
		TotalVotes         int64
		ApproveCount       int64
		RejectCount        int64
		TotalApproveWeight int64
		TotalRejectWeight  int64
	}
	err := db.Model(&model.VoteModel{}).
		Where("escrow_id = ?", escrowId).
		Select(
			"COUNT(*) AS total_votes, "+
				"COALESCE(SUM(CASE WHEN value = ? THEN 1 ELSE 0 END), 0) AS approve_count, "+
				"COALESCE(SUM(CASE WHEN value = ? THEN 1 ELSE 0 END), 0) AS reject_count, "+
				"COALESCE(SUM(CASE WHEN value = ? THEN vote_weight ELSE 0 END), 0) AS total_approve_weight, "+
				"COALESCE(SUM(CASE WHEN value = ? THEN vote_weight ELSE 0 END), 0) AS total_reject_weight",
			model.VoteValueApprove, model.VoteValueReject,
			model.VoteValueApprove, model.VoteValueReject).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	results := &model.VotingResults{
		TotalVotes:         row.TotalVotes,
		ApproveCount:       row.ApproveCount,
		RejectCount:        row.RejectCount,
		TotalApproveWeight: row.TotalApproveWeight,
		TotalRejectWeight:  row.TotalRejectWeight,
	}
	cast := results.CastWeight()
	if cast > 0 {
		results.ApprovePercentage = float64(results.TotalApproveWeight) / float64(cast) * 100
		results.RejectPercentage = float64(results.TotalRejectWeight) / float64(cast) * 100
	}
	return results, nil
}
