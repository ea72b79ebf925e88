package model

import (
	"time"
)

// DonationRecordModel 捐款记录（由支付侧写入，本服务只读）
type DonationRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId   int64         `json:"campaign_id" gorm:"not null;index"`
	DonorAddress string        `json:"donor_address" gorm:"not null;index"`
	Amount       int64         `json:"amount" gorm:"not null"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"default:'pending'"`
	TxRef        string        `json:"tx_ref" gorm:"uniqueIndex"`
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // 待支付
	PaymentStatusCompleted PaymentStatus = "completed" // 已完成
	PaymentStatusFailed    PaymentStatus = "failed"    // 失败
	PaymentStatusRefunded  PaymentStatus = "refunded"  // 已退款
)

// TableName 自定义表名
func (DonationRecordModel) TableName() string {
	return "donation_record"
}
