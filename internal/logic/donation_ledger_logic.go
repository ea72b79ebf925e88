package logic

import (
	"github.com/blues/ces/internal/model"
	"gorm.io/gorm"
)

// DonationLedgerLogic 捐款台账只读视图，票权与投票资格的唯一来源
type DonationLedgerLogic struct {
	db *gorm.DB
}

// NewDonationLedgerLogic 创建捐款台账视图
func NewDonationLedgerLogic(db *gorm.DB) *DonationLedgerLogic {
	return &DonationLedgerLogic{db: db}
}

// GetCompletedDonationTotal 获取捐赠人对活动的已完成捐款总额（票权来源）
func (l *DonationLedgerLogic) GetCompletedDonationTotal(campaignId int64, donorAddress string) (int64, error) {
	var total int64
	err := l.db.Model(&model.DonationRecordModel{}).
		Where("campaign_id = ? AND donor_address = ? AND payment_status = ?",
			campaignId, donorAddress, model.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// HasCompletedDonation 捐赠人是否有已完成捐款（投票资格）
func (l *DonationLedgerLogic) HasCompletedDonation(campaignId int64, donorAddress string) (bool, error) {
	var count int64
	err := l.db.Model(&model.DonationRecordModel{}).
		Where("campaign_id = ? AND donor_address = ? AND payment_status = ?",
			campaignId, donorAddress, model.PaymentStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetTotalEligibleWeight 活动全部合格票权之和（法定票权的计算基数）
func (l *DonationLedgerLogic) GetTotalEligibleWeight(campaignId int64) (int64, error) {
	var total int64
	err := l.db.Model(&model.DonationRecordModel{}).
		Where("campaign_id = ? AND payment_status = ?",
			campaignId, model.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
