package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/ces/internal/errs"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/model"
	"gorm.io/gorm"
)

// PayoutSender 外部放款通道，按 escrow_id 幂等
type PayoutSender interface {
	Send(escrowId int64, recipient string, amount int64) (txRef string, err error)
}

// ReleaseLogic 放款执行。余额扣减、状态流转、放款指令写入在同一事务内完成，
// 不存在部分可见的中间状态；事务提交后的实际转账由放款任务幂等重试
type ReleaseLogic struct {
	db     *gorm.DB
	sender PayoutSender
}

// NewReleaseLogic 创建放款逻辑，sender 可为 nil（仅记录指令，由任务驱动）
func NewReleaseLogic(db *gorm.DB, sender PayoutSender) *ReleaseLogic {
	return &ReleaseLogic{db: db, sender: sender}
}

// Release 执行放款，仅允许 admin_approved 状态。
// 释放金额在放款时以活动最新余额重新校验，校验失败时申请保持
// admin_approved 等待人工处理，绝不静默降级
func (l *ReleaseLogic) Release(escrowId int64) (*model.EscrowRecordModel, error) {
	var record *model.PayoutRecordModel

	err := l.db.Transaction(func(tx *gorm.DB) error {
		escrow, err := getEscrow(tx, escrowId)
		if err != nil {
			return err
		}
		if escrow.RequestStatus != model.EscrowStatusAdminApproved {
			return errs.ErrInvalidStatus
		}

		campaign, err := getCampaign(tx, escrow.CampaignId)
		if err != nil {
			return err
		}
		amount := escrow.WithdrawalRequestAmount
		if amount > campaign.RemainingAmount() {
			return errs.ErrInsufficientRemaining
		}

		// 带余额条件的扣减：并发释放同一活动资金时数据库兜底
		res := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND current_amount - released_amount >= ?", campaign.Id, amount).
			Update("released_amount", gorm.Expr("released_amount + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrInsufficientRemaining
		}

		now := time.Now()
		res = tx.Model(&model.EscrowRecordModel{}).
			Where("id = ? AND request_status = ?", escrowId, model.EscrowStatusAdminApproved).
			Updates(map[string]interface{}{
				"request_status": model.EscrowStatusReleased,
				"released_at":    &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 并发释放只有一个赢家，输家在此回滚余额扣减
			return errs.ErrInvalidStatus
		}

		// 放款指令即移交：escrow_id 唯一，重放安全
		record = &model.PayoutRecordModel{
			EscrowId:   escrowId,
			CampaignId: campaign.Id,
			Recipient:  campaign.CreatorAddress,
			Amount:     amount,
			Status:     model.PayoutStatusPending,
		}
		if err := tx.Create(record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrInvalidStatus
			}
			return fmt.Errorf("创建放款指令失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Escrow %d released, payout instruction %d queued for %d",
		escrowId, record.Id, record.Amount)

	// 提交后立刻尝试一次转账，失败交给放款任务重试
	if l.sender != nil {
		if err := l.ProcessPayout(record); err != nil {
			logger.Warn("Inline payout attempt for escrow %d failed: %v", escrowId, err)
		}
	}

	return getEscrow(l.db, escrowId)
}

// ProcessPayout 驱动一条放款指令的实际转账并更新其状态。
// 以 escrow_id 为幂等键，重复调用不会重复打款
func (l *ReleaseLogic) ProcessPayout(record *model.PayoutRecordModel) error {
	if l.sender == nil {
		return nil
	}
	if record.Status == model.PayoutStatusSuccess {
		return nil
	}

	txRef, err := l.sender.Send(record.EscrowId, record.Recipient, record.Amount)
	if err != nil {
		updates := map[string]interface{}{
			"status":      model.PayoutStatusFailed,
			"fail_reason": err.Error(),
		}
		if dbErr := l.db.Model(record).Updates(updates).Error; dbErr != nil {
			return dbErr
		}
		return err
	}

	now := time.Now()
	return l.db.Model(record).Updates(map[string]interface{}{
		"status":      model.PayoutStatusSuccess,
		"tx_ref":      txRef,
		"fail_reason": "",
		"payout_time": &now,
	}).Error
}
