package logic

import (
	"errors"
	"testing"
	"time"

	"github.com/blues/ces/internal/errs"
	"github.com/blues/ces/internal/model"
)

func TestReviewApprove(t *testing.T) {
	db := setupTestDB(t)
	l := NewAdminReviewLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingCompleted, nil, nil)

	reviewed, err := l.Review(escrow.Id, "admin-1", ReviewDecisionApprove, "")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.RequestStatus != model.EscrowStatusAdminApproved {
		t.Fatalf("expected admin_approved, got %s", reviewed.RequestStatus)
	}
	if reviewed.AdminReviewedBy != "admin-1" || reviewed.AdminReviewedAt == nil || reviewed.ApprovedAt == nil {
		t.Fatalf("expected review audit fields to be set: %+v", reviewed)
	}
}

func TestReviewReject(t *testing.T) {
	db := setupTestDB(t)
	l := NewAdminReviewLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingCompleted, nil, nil)

	reviewed, err := l.Review(escrow.Id, "admin-1", ReviewDecisionReject, "资料不全")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.RequestStatus != model.EscrowStatusAdminRejected {
		t.Fatalf("expected admin_rejected, got %s", reviewed.RequestStatus)
	}
	if reviewed.AdminRejectionReason != "资料不全" {
		t.Fatalf("expected rejection reason to be recorded, got %q", reviewed.AdminRejectionReason)
	}
	if reviewed.ApprovedAt != nil {
		t.Fatalf("rejected escrow must not carry approved_at")
	}
}

func TestReviewRejectRequiresReason(t *testing.T) {
	db := setupTestDB(t)
	l := NewAdminReviewLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingCompleted, nil, nil)

	if _, err := l.Review(escrow.Id, "admin-1", ReviewDecisionReject, "   "); !errors.Is(err, errs.ErrRejectionReasonRequired) {
		t.Fatalf("expected REJECTION_REASON_REQUIRED, got %v", err)
	}

	// 校验失败不得改变状态
	final := mustGetEscrow(t, db, escrow.Id)
	if final.RequestStatus != model.EscrowStatusVotingCompleted {
		t.Fatalf("expected status unchanged, got %s", final.RequestStatus)
	}
}

func TestReviewWrongState(t *testing.T) {
	db := setupTestDB(t)
	l := NewAdminReviewLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)

	for _, status := range []model.EscrowStatus{
		model.EscrowStatusPendingVoting,
		model.EscrowStatusRejectedByCommunity,
		model.EscrowStatusAdminApproved,
		model.EscrowStatusReleased,
		model.EscrowStatusCancelled,
	} {
		escrow := mustCreateEscrow(t, db, campaign, 100_000, status, nil, nil)
		if _, err := l.Review(escrow.Id, "admin-1", ReviewDecisionApprove, ""); !errors.Is(err, errs.ErrInvalidStatus) {
			t.Fatalf("status %s: expected INVALID_STATUS, got %v", status, err)
		}
		// 腾出活跃位，部分唯一索引限制每个活动一条非终态申请
		db.Model(&model.EscrowRecordModel{}).Where("id = ?", escrow.Id).
			Update("request_status", model.EscrowStatusCancelled)
	}

	if _, err := l.Review(99999, "admin-1", ReviewDecisionApprove, ""); !errors.Is(err, errs.ErrEscrowNotFound) {
		t.Fatalf("expected ESCROW_NOT_FOUND, got %v", err)
	}
}

func TestReviewFinalizesExpiredWindowFirst(t *testing.T) {
	db := setupTestDB(t)
	l := NewAdminReviewLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	mustAddDonation(t, db, campaign.Id, "0xdonor1", 1_000)

	// 窗口到期且投票通过，但定时任务还没来得及结算
	start := time.Now().Add(-8 * 24 * time.Hour)
	end := time.Now().Add(-time.Hour)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingInProgress, timePtr(start), timePtr(end))
	mustCastVote(t, db, escrow.Id, "0xdonor1", model.VoteValueApprove, 1_000)

	reviewed, err := l.Review(escrow.Id, "admin-1", ReviewDecisionApprove, "")
	if err != nil {
		t.Fatalf("review after inline finalize failed: %v", err)
	}
	if reviewed.RequestStatus != model.EscrowStatusAdminApproved {
		t.Fatalf("expected admin_approved, got %s", reviewed.RequestStatus)
	}
}
