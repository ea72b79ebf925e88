package model

import (
	"time"
)

// EscrowRecordModel 提现申请（托管记录），一个活动同时最多只能有一条非终态记录
type EscrowRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64 `json:"campaign_id" gorm:"not null;index"`

	// 金额信息（创建时快照，释放时以活动最新余额重新校验）
	TotalAmount             int64 `json:"total_amount" gorm:"not null"`              // 创建时活动已筹总额
	RemainingAmount         int64 `json:"remaining_amount" gorm:"not null"`          // 创建时尚未释放的金额
	WithdrawalRequestAmount int64 `json:"withdrawal_request_amount" gorm:"not null"` // 本次申请提现的金额

	// 申请信息
	RequestedBy   string       `json:"requested_by" gorm:"not null"`
	RequestReason string       `json:"request_reason" gorm:"type:text"`
	RequestStatus EscrowStatus `json:"request_status" gorm:"default:'pending_voting';index"`

	// 投票窗口
	VotingStartDate *time.Time `json:"voting_start_date"`
	VotingEndDate   *time.Time `json:"voting_end_date"`

	// 管理员审核
	AdminReviewedBy      string     `json:"admin_reviewed_by"`
	AdminReviewedAt      *time.Time `json:"admin_reviewed_at"`
	AdminRejectionReason string     `json:"admin_rejection_reason" gorm:"type:text"`

	// 里程碑自动触发
	AutoCreated         bool `json:"auto_created" gorm:"default:false"`
	MilestonePercentage int  `json:"milestone_percentage" gorm:"default:0"` // 25/50/75/100，手动申请为0

	ApprovedAt *time.Time `json:"approved_at"`
	ReleasedAt *time.Time `json:"released_at"`
}

// EscrowStatus 提现申请状态
type EscrowStatus string

const (
	EscrowStatusPendingVoting       EscrowStatus = "pending_voting"        // 待开启投票
	EscrowStatusVotingInProgress    EscrowStatus = "voting_in_progress"    // 投票中
	EscrowStatusVotingExtended      EscrowStatus = "voting_extended"       // 投票已延期（最多延期一次）
	EscrowStatusVotingCompleted     EscrowStatus = "voting_completed"      // 投票通过，待管理员审核
	EscrowStatusRejectedByCommunity EscrowStatus = "rejected_by_community" // 社区投票否决（终态）
	EscrowStatusAdminApproved       EscrowStatus = "admin_approved"        // 管理员批准，待放款
	EscrowStatusAdminRejected       EscrowStatus = "admin_rejected"        // 管理员拒绝（终态）
	EscrowStatusReleased            EscrowStatus = "released"              // 已放款（终态）
	EscrowStatusCancelled           EscrowStatus = "cancelled"             // 申请人撤销（终态）
)

// IsTerminal 是否为终态，终态记录不可再变更
func (s EscrowStatus) IsTerminal() bool {
	switch s {
	case EscrowStatusReleased,
		EscrowStatusRejectedByCommunity,
		EscrowStatusAdminRejected,
		EscrowStatusCancelled:
		return true
	}
	return false
}

// ActiveEscrowStatuses 非终态状态列表，用于"一个活动仅一条活跃申请"的唯一索引
func ActiveEscrowStatuses() []EscrowStatus {
	return []EscrowStatus{
		EscrowStatusPendingVoting,
		EscrowStatusVotingInProgress,
		EscrowStatusVotingExtended,
		EscrowStatusVotingCompleted,
		EscrowStatusAdminApproved,
	}
}

// IsVotingOpen 当前状态是否可以接受投票
func (s EscrowStatus) IsVotingOpen() bool {
	return s == EscrowStatusVotingInProgress || s == EscrowStatusVotingExtended
}

// TableName 自定义表名
func (EscrowRecordModel) TableName() string {
	return "escrow_record"
}
