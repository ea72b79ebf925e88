package handler

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"` // 错误码，成功时为空
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CreateWithdrawalRequest 发起提现申请请求体
type CreateWithdrawalRequest struct {
	RequestedBy string `json:"requested_by" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Reason      string `json:"reason"`
}

// SubmitVoteRequest 投票请求体
type SubmitVoteRequest struct {
	DonorAddress string `json:"donor_address" binding:"required"`
	Value        string `json:"value" binding:"required"`
}

// ReviewRequest 管理员审核请求体
type ReviewRequest struct {
	ReviewerId      string `json:"reviewer_id" binding:"required"`
	Decision        string `json:"decision" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// CancelRequest 撤销申请请求体
type CancelRequest struct {
	RequestedBy string `json:"requested_by" binding:"required"`
}
