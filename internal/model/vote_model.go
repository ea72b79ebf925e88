package model

import (
	"time"
)

// VoteModel 投票记录，(escrow_id, donor_address) 唯一，重复提交覆盖旧票
type VoteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EscrowId     int64     `json:"escrow_id" gorm:"not null;uniqueIndex:idx_vote_escrow_donor"`
	DonorAddress string    `json:"donor_address" gorm:"not null;uniqueIndex:idx_vote_escrow_donor"`
	Value        VoteValue `json:"value" gorm:"not null"`

	// 投票时快照：该捐赠人对活动的已完成捐款总额，票权即此金额
	DonatedAmount int64 `json:"donated_amount" gorm:"not null"`
	VoteWeight    int64 `json:"vote_weight" gorm:"not null"`
}

// VoteValue 投票值
type VoteValue string

const (
	VoteValueApprove VoteValue = "approve" // 赞成
	VoteValueReject  VoteValue = "reject"  // 反对
)

// Valid 是否为合法投票值
func (v VoteValue) Valid() bool {
	return v == VoteValueApprove || v == VoteValueReject
}

// VotingResults 投票统计结果，始终实时计算，不落库
type VotingResults struct {
	TotalVotes         int64   `json:"total_votes"`
	ApproveCount       int64   `json:"approve_count"`
	RejectCount        int64   `json:"reject_count"`
	TotalApproveWeight int64   `json:"total_approve_weight"`
	TotalRejectWeight  int64   `json:"total_reject_weight"`
	ApprovePercentage  float64 `json:"approve_percentage"` // 占已投票总票权比例，无票时为0
	RejectPercentage   float64 `json:"reject_percentage"`
}

// CastWeight 已投出的总票权
func (r VotingResults) CastWeight() int64 {
	return r.TotalApproveWeight + r.TotalRejectWeight
}

// TableName 自定义表名
func (VoteModel) TableName() string {
	return "vote"
}
