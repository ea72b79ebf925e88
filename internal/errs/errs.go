package errs

import "errors"

// Error 业务错误，Code 为稳定的机器可读错误码，Message 为展示用文案，
// 调用方可按 Code 自行本地化
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New 创建业务错误
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	// 校验类错误
	ErrInvalidAmount           = New("INVALID_AMOUNT", "提现金额无效")
	ErrInvalidVoteValue        = New("INVALID_VOTE_VALUE", "投票值无效，只允许 approve 或 reject")
	ErrRejectionReasonRequired = New("REJECTION_REASON_REQUIRED", "拒绝时必须填写拒绝原因")

	// 权限类错误
	ErrUnauthorized = New("UNAUTHORIZED", "只有活动创建者可以执行该操作")

	// 状态冲突类错误
	ErrCampaignNotFound     = New("CAMPAIGN_NOT_FOUND", "活动不存在")
	ErrCampaignNotActive    = New("CAMPAIGN_NOT_ACTIVE", "活动当前状态不允许提现")
	ErrEscrowNotFound       = New("ESCROW_NOT_FOUND", "提现申请不存在")
	ErrPendingRequestExists = New("PENDING_REQUEST_EXISTS", "该活动已存在进行中的提现申请")
	ErrInvalidStatus        = New("INVALID_STATUS", "提现申请当前状态不允许该操作")
	ErrVotingPeriodExpired  = New("VOTING_PERIOD_EXPIRED", "投票期已结束")
	ErrNotEligibleToVote    = New("NOT_ELIGIBLE_TO_VOTE", "只有已完成捐款的捐赠人才能投票")

	// 一致性保护错误：释放时余额不足，申请保持 admin_approved 人工处理
	ErrInsufficientRemaining = New("INSUFFICIENT_REMAINING", "活动剩余可释放金额不足")
)

// AsError 提取业务错误，非业务错误返回 nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
