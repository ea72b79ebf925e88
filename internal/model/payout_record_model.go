package model

import (
	"time"
)

// PayoutRecordModel 放款指令记录，escrow_id 唯一保证放款幂等
type PayoutRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EscrowId   int64  `json:"escrow_id" gorm:"not null;uniqueIndex"`
	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	Recipient  string `json:"recipient" gorm:"not null"` // 收款地址（活动创建者）
	Amount     int64  `json:"amount" gorm:"not null"`

	Status     PayoutStatus `json:"status" gorm:"default:'pending';index"`
	TxRef      string       `json:"tx_ref"`
	FailReason string       `json:"fail_reason" gorm:"type:text"`
	PayoutTime *time.Time   `json:"payout_time"`
}

// PayoutStatus 放款状态
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending" // 待处理
	PayoutStatusSuccess PayoutStatus = "success" // 成功
	PayoutStatusFailed  PayoutStatus = "failed"  // 失败，等待重试
)

// TableName 自定义表名
func (PayoutRecordModel) TableName() string {
	return "payout_record"
}
