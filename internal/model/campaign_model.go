package model

import (
	"time"
)

// CampaignModel 众筹活动模型（外部聚合，本服务只读取，放款时更新已释放金额）
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	// 筹款信息
	GoalAmount     int64 `json:"goal_amount" gorm:"not null"`     // 目标金额
	CurrentAmount  int64 `json:"current_amount" gorm:"default:0"` // 已筹金额
	ReleasedAmount int64 `json:"released_amount" gorm:"default:0"` // 已释放给创建者的金额

	// 状态
	Status CampaignStatus `json:"status" gorm:"default:'pending'"`

	// 创建者信息
	CreatorAddress string `json:"creator_address" gorm:"not null"`
	CreatorName    string `json:"creator_name"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusPending   CampaignStatus = "pending"   // 待开始
	CampaignStatusActive    CampaignStatus = "active"    // 进行中
	CampaignStatusSuccess   CampaignStatus = "success"   // 成功
	CampaignStatusFailed    CampaignStatus = "failed"    // 失败
	CampaignStatusCancelled CampaignStatus = "cancelled" // 已取消
)

// RemainingAmount 尚未释放的金额
func (c *CampaignModel) RemainingAmount() int64 {
	return c.CurrentAmount - c.ReleasedAmount
}

// IsFundable 是否允许发起提现申请（进行中或已成功的活动才有可释放资金）
func (c *CampaignModel) IsFundable() bool {
	return c.Status == CampaignStatusActive || c.Status == CampaignStatusSuccess
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
