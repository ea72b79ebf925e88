package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/logic"
	"github.com/blues/ces/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VoteHandler 投票相关接口
type VoteHandler struct {
	voteLogic *logic.VoteLogic
}

func NewVoteHandler(db *gorm.DB, cfg *config.Config) *VoteHandler {
	return &VoteHandler{
		voteLogic: logic.NewVoteLogic(db, cfg.Voting),
	}
}

// SubmitVote 提交投票
func (h *VoteHandler) SubmitVote(c *gin.Context) {
	escrowId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的申请ID"})
		return
	}

	var req SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.voteLogic.SubmitVote(escrowId, req.DonorAddress, model.VoteValue(req.Value))
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投票已记录", vote)
}

// GetResults 获取投票结果
func (h *VoteHandler) GetResults(c *gin.Context) {
	escrowId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的申请ID"})
		return
	}

	results, err := h.voteLogic.ComputeResults(escrowId)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", results)
}

// GetVotes 获取投票明细
func (h *VoteHandler) GetVotes(c *gin.Context) {
	escrowId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的申请ID"})
		return
	}

	votes, err := h.voteLogic.GetEscrowVotes(escrowId)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"votes": votes,
		"total": len(votes),
	})
}
