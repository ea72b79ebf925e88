package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EscrowHandler 提现申请相关接口
type EscrowHandler struct {
	requestLogic *logic.EscrowRequestLogic
	reviewLogic  *logic.AdminReviewLogic
	releaseLogic *logic.ReleaseLogic
}

func NewEscrowHandler(db *gorm.DB, cfg *config.Config, sender logic.PayoutSender) *EscrowHandler {
	return &EscrowHandler{
		requestLogic: logic.NewEscrowRequestLogic(db, cfg.Voting),
		reviewLogic:  logic.NewAdminReviewLogic(db, cfg.Voting),
		releaseLogic: logic.NewReleaseLogic(db, sender),
	}
}

// CreateWithdrawal 发起提现申请
func (h *EscrowHandler) CreateWithdrawal(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的活动ID"})
		return
	}

	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	escrow, err := h.requestLogic.CreateWithdrawalRequest(campaignId, req.RequestedBy, req.Amount, req.Reason)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "提现申请已创建", escrow)
}

// GetWithdrawal 获取提现申请详情
func (h *EscrowHandler) GetWithdrawal(c *gin.Context) {
	escrowId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的申请ID"})
		return
	}

	escrow, err := h.requestLogic.GetEscrow(escrowId)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", escrow)
}

// GetCampaignWithdrawals 获取活动的提现申请列表
func (h *EscrowHandler) GetCampaignWithdrawals(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的活动ID"})
		return
	}

	escrows, err := h.requestLogic.GetCampaignEscrows(campaignId)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"withdrawals": escrows,
		"total":       len(escrows),
	})
}

// Review 管理员审核
func (h *EscrowHandler) Review(c *gin.Context) {
	escrowId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的申请ID"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	escrow, err := h.reviewLogic.Review(escrowId, req.ReviewerId, logic.ReviewDecision(req.Decision), req.RejectionReason)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "审核完成", escrow)
}

// Release 执行放款
func (h *EscrowHandler) Release(c *gin.Context) {
	escrowId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的申请ID"})
		return
	}

	escrow, err := h.releaseLogic.Release(escrowId)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "放款已执行", escrow)
}

// Cancel 撤销提现申请
func (h *EscrowHandler) Cancel(c *gin.Context) {
	escrowId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的申请ID"})
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	escrow, err := h.requestLogic.Cancel(escrowId, req.RequestedBy)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "申请已撤销", escrow)
}
