package handler

import (
	"net/http"

	"github.com/blues/ces/internal/errs"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应，业务错误按错误码映射HTTP状态，
// 其他错误一律500并隐藏内部细节
func ErrorResponse(c *gin.Context, err error) {
	if bizErr := errs.AsError(err); bizErr != nil {
		c.JSON(statusForCode(bizErr.Code), Response{
			Success: false,
			Code:    bizErr.Code,
			Message: bizErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Code:    "INTERNAL_ERROR",
		Message: "服务器内部错误",
	})
}

// statusForCode 错误码到HTTP状态码
func statusForCode(code string) int {
	switch code {
	case errs.ErrInvalidAmount.Code,
		errs.ErrInvalidVoteValue.Code,
		errs.ErrRejectionReasonRequired.Code:
		return http.StatusBadRequest
	case errs.ErrUnauthorized.Code,
		errs.ErrNotEligibleToVote.Code:
		return http.StatusForbidden
	case errs.ErrCampaignNotFound.Code,
		errs.ErrEscrowNotFound.Code:
		return http.StatusNotFound
	case errs.ErrPendingRequestExists.Code,
		errs.ErrCampaignNotActive.Code,
		errs.ErrInvalidStatus.Code,
		errs.ErrVotingPeriodExpired.Code,
		errs.ErrInsufficientRemaining.Code:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
