package logic

import (
	"errors"
	"testing"
	"time"

	"github.com/blues/ces/internal/errs"
	"github.com/blues/ces/internal/model"
	"gorm.io/gorm"
)

func TestOpenVotingWindow(t *testing.T) {
	db := setupTestDB(t)
	l := NewVotingScheduleLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 500_000, model.CampaignStatusActive)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusPendingVoting, nil, nil)

	opened, err := l.OpenVotingWindow(escrow.Id)
	if err != nil {
		t.Fatalf("open voting window failed: %v", err)
	}
	if opened.RequestStatus != model.EscrowStatusVotingInProgress {
		t.Fatalf("expected voting_in_progress, got %s", opened.RequestStatus)
	}
	if opened.VotingStartDate == nil || opened.VotingEndDate == nil {
		t.Fatalf("expected window dates to be set")
	}
	wantEnd := opened.VotingStartDate.Add(7 * 24 * time.Hour)
	if !opened.VotingEndDate.Equal(wantEnd) {
		t.Fatalf("expected end %s, got %s", wantEnd, opened.VotingEndDate)
	}

	// 仅允许从 pending_voting 开启
	if _, err := l.OpenVotingWindow(escrow.Id); !errors.Is(err, errs.ErrInvalidStatus) {
		t.Fatalf("expected INVALID_STATUS on reopen, got %v", err)
	}
}

func TestFinalizeMajorityReject(t *testing.T) {
	db := setupTestDB(t)
	l := NewVotingScheduleLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	mustAddDonation(t, db, campaign.Id, "0xdonor1", 100)
	mustAddDonation(t, db, campaign.Id, "0xdonor2", 200)
	mustAddDonation(t, db, campaign.Id, "0xdonor3", 700)

	start := time.Now().Add(-8 * 24 * time.Hour)
	end := time.Now().Add(-time.Hour)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingInProgress, timePtr(start), timePtr(end))

	// 赞成 300 / 反对 700，赞成占比 30% 未达 50%
	mustCastVote(t, db, escrow.Id, "0xdonor1", model.VoteValueApprove, 100)
	mustCastVote(t, db, escrow.Id, "0xdonor2", model.VoteValueApprove, 200)
	mustCastVote(t, db, escrow.Id, "0xdonor3", model.VoteValueReject, 700)

	if err := l.FinalizeIfExpired(escrow.Id, time.Now()); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	final := mustGetEscrow(t, db, escrow.Id)
	if final.RequestStatus != model.EscrowStatusRejectedByCommunity {
		t.Fatalf("expected rejected_by_community, got %s", final.RequestStatus)
	}
}

func TestFinalizeMajorityApprove(t *testing.T) {
	db := setupTestDB(t)
	l := NewVotingScheduleLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	mustAddDonation(t, db, campaign.Id, "0xdonor1", 100)
	mustAddDonation(t, db, campaign.Id, "0xdonor2", 200)
	mustAddDonation(t, db, campaign.Id, "0xdonor3", 700)

	start := time.Now().Add(-8 * 24 * time.Hour)
	end := time.Now().Add(-time.Hour)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingInProgress, timePtr(start), timePtr(end))

	// 赞成 900 / 反对 100，赞成占比 90%
	mustCastVote(t, db, escrow.Id, "0xdonor1", model.VoteValueReject, 100)
	mustCastVote(t, db, escrow.Id, "0xdonor2", model.VoteValueApprove, 200)
	mustCastVote(t, db, escrow.Id, "0xdonor3", model.VoteValueApprove, 700)

	if err := l.FinalizeIfExpired(escrow.Id, time.Now()); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	final := mustGetEscrow(t, db, escrow.Id)
	if final.RequestStatus != model.EscrowStatusVotingCompleted {
		t.Fatalf("expected voting_completed, got %s", final.RequestStatus)
	}
}

func TestFinalizeBelowQuorumExtendsOnce(t *testing.T) {
	db := setupTestDB(t)
	l := NewVotingScheduleLogic(db, testVotingConfig())

	// 合格总票权 10000，法定票权 20% 即 2000
	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	mustAddDonation(t, db, campaign.Id, "0xwhale", 9_500)
	mustAddDonation(t, db, campaign.Id, "0xdonor1", 500)

	start := time.Now().Add(-8 * 24 * time.Hour)
	end := time.Now().Add(-time.Hour)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingInProgress, timePtr(start), timePtr(end))

	// 仅 500 票权投出，低于法定值，窗口延长
	mustCastVote(t, db, escrow.Id, "0xdonor1", model.VoteValueApprove, 500)

	if err := l.FinalizeIfExpired(escrow.Id, time.Now()); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	extended := mustGetEscrow(t, db, escrow.Id)
	if extended.RequestStatus != model.EscrowStatusVotingExtended {
		t.Fatalf("expected voting_extended, got %s", extended.RequestStatus)
	}
	if !extended.VotingEndDate.After(time.Now()) {
		t.Fatalf("expected extended end date in the future, got %s", extended.VotingEndDate)
	}

	// 延长后的窗口再次到期时不再延长，即使仍未达法定票权
	lateEnd := extended.VotingEndDate.Add(time.Minute)
	if err := l.FinalizeIfExpired(escrow.Id, lateEnd); err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}
	final := mustGetEscrow(t, db, escrow.Id)
	if final.RequestStatus != model.EscrowStatusVotingCompleted {
		t.Fatalf("expected voting_completed on second expiry (approve 100%%), got %s", final.RequestStatus)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	db := setupTestDB(t)
	l := NewVotingScheduleLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 1_000_000, model.CampaignStatusSuccess)
	mustAddDonation(t, db, campaign.Id, "0xdonor1", 1_000)

	start := time.Now().Add(-8 * 24 * time.Hour)
	end := time.Now().Add(-time.Hour)
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingInProgress, timePtr(start), timePtr(end))
	mustCastVote(t, db, escrow.Id, "0xdonor1", model.VoteValueApprove, 1_000)

	if err := l.FinalizeIfExpired(escrow.Id, time.Now()); err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	first := mustGetEscrow(t, db, escrow.Id)
	if first.RequestStatus != model.EscrowStatusVotingCompleted {
		t.Fatalf("expected voting_completed, got %s", first.RequestStatus)
	}

	// 重复调用为无操作
	if err := l.FinalizeIfExpired(escrow.Id, time.Now()); err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}
	second := mustGetEscrow(t, db, escrow.Id)
	if second.RequestStatus != first.RequestStatus || !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("expected second finalize to be a no-op")
	}
}

func TestFinalizeBeforeExpiryIsNoop(t *testing.T) {
	db := setupTestDB(t)
	l := NewVotingScheduleLogic(db, testVotingConfig())

	campaign := mustCreateCampaign(t, db, 1_000_000, 500_000, model.CampaignStatusActive)
	start, end := votingWindow()
	escrow := mustCreateEscrow(t, db, campaign, 100_000, model.EscrowStatusVotingInProgress, start, end)

	if err := l.FinalizeIfExpired(escrow.Id, time.Now()); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	final := mustGetEscrow(t, db, escrow.Id)
	if final.RequestStatus != model.EscrowStatusVotingInProgress {
		t.Fatalf("expected window to stay open, got %s", final.RequestStatus)
	}
}

// mustCastVote 直接落一条投票记录
func mustCastVote(t *testing.T, db *gorm.DB, escrowId int64, donor string, value model.VoteValue, weight int64) {
	t.Helper()
	vote := &model.VoteModel{
		EscrowId:      escrowId,
		DonorAddress:  donor,
		Value:         value,
		DonatedAmount: weight,
		VoteWeight:    weight,
	}
	if err := db.Create(vote).Error; err != nil {
		t.Fatalf("cast vote: %v", err)
	}
}
