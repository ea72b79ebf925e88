package logic

import (
	"strings"
	"time"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/errs"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/model"
	"gorm.io/gorm"
)

// ReviewDecision 管理员审核决定
type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "approve" // 批准
	ReviewDecisionReject  ReviewDecision = "reject"  // 拒绝
)

// AdminReviewLogic 管理员审核。社区投票通过(voting_completed)后才允许审核，
// 社区否决的申请无管理员环节。审核没有超时：批准是人工决策队列，
// 申请可以无限期停留在 voting_completed
type AdminReviewLogic struct {
	db       *gorm.DB
	schedule *VotingScheduleLogic
}

// NewAdminReviewLogic 创建管理员审核逻辑
func NewAdminReviewLogic(db *gorm.DB, voting config.VotingConfig) *AdminReviewLogic {
	return &AdminReviewLogic{
		db:       db,
		schedule: NewVotingScheduleLogic(db, voting),
	}
}

// Review 审核提现申请。批准后放款是独立的后续步骤，
// 放款是不可逆的资金操作，需要独立重试，不与审批决策绑定
func (l *AdminReviewLogic) Review(escrowId int64, reviewerId string, decision ReviewDecision, rejectionReason string) (*model.EscrowRecordModel, error) {
	if decision != ReviewDecisionApprove && decision != ReviewDecisionReject {
		return nil, errs.ErrInvalidStatus
	}
	if decision == ReviewDecisionReject && strings.TrimSpace(rejectionReason) == "" {
		return nil, errs.ErrRejectionReasonRequired
	}

	// 管理员动作也可能碰到刚到期的窗口，先结算
	if err := l.schedule.FinalizeIfExpired(escrowId, time.Now()); err != nil {
		return nil, err
	}

	escrow, err := getEscrow(l.db, escrowId)
	if err != nil {
		return nil, err
	}
	if escrow.RequestStatus != model.EscrowStatusVotingCompleted {
		return nil, errs.ErrInvalidStatus
	}

	now := time.Now()
	updates := map[string]interface{}{
		"admin_reviewed_by": reviewerId,
		"admin_reviewed_at": &now,
	}
	if decision == ReviewDecisionApprove {
		updates["request_status"] = model.EscrowStatusAdminApproved
		updates["approved_at"] = &now
	} else {
		updates["request_status"] = model.EscrowStatusAdminRejected
		updates["admin_rejection_reason"] = rejectionReason
	}

	res := l.db.Model(&model.EscrowRecordModel{}).
		Where("id = ? AND request_status = ?", escrowId, model.EscrowStatusVotingCompleted).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrInvalidStatus
	}

	logger.Info("Escrow %d reviewed by %s: %s", escrowId, reviewerId, decision)
	return getEscrow(l.db, escrowId)
}
