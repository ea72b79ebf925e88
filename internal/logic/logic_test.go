package logic

import (
	"fmt"
	"testing"
	"time"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/database"
	"github.com/blues/ces/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// setupTestDB 打开内存库并完成迁移
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// 内存库必须限制为单连接，否则连接池会各自拿到一个空库
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// testVotingConfig 测试用投票参数
func testVotingConfig() config.VotingConfig {
	return config.VotingConfig{
		PeriodDays:      7,
		ExtensionDays:   3,
		QuorumPercent:   20,
		ApprovalPercent: 50,
		Milestones:      []int{25, 50, 75, 100},
	}
}

// mustCreateCampaign 创建测试活动
func mustCreateCampaign(t *testing.T, db *gorm.DB, goal, current int64, status model.CampaignStatus) *model.CampaignModel {
	t.Helper()
	campaign := &model.CampaignModel{
		Title:          "测试活动",
		GoalAmount:     goal,
		CurrentAmount:  current,
		Status:         status,
		CreatorAddress: "0xcreator",
	}
	if err := db.Create(campaign).Error; err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return campaign
}

// mustAddDonation 写入一笔已完成捐款
func mustAddDonation(t *testing.T, db *gorm.DB, campaignId int64, donor string, amount int64) {
	t.Helper()
	mustAddDonationWithStatus(t, db, campaignId, donor, amount, model.PaymentStatusCompleted)
}

// mustAddDonationWithStatus 写入指定支付状态的捐款
func mustAddDonationWithStatus(t *testing.T, db *gorm.DB, campaignId int64, donor string, amount int64, status model.PaymentStatus) {
	t.Helper()
	record := &model.DonationRecordModel{
		CampaignId:    campaignId,
		DonorAddress:  donor,
		Amount:        amount,
		PaymentStatus: status,
		TxRef:         fmt.Sprintf("tx-%d-%s-%d", campaignId, donor, time.Now().UnixNano()),
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("create donation: %v", err)
	}
}

// mustCreateEscrow 在指定状态直接落一条提现申请
func mustCreateEscrow(t *testing.T, db *gorm.DB, campaign *model.CampaignModel, amount int64, status model.EscrowStatus, start, end *time.Time) *model.EscrowRecordModel {
	t.Helper()
	escrow := &model.EscrowRecordModel{
		CampaignId:              campaign.Id,
		TotalAmount:             campaign.CurrentAmount,
		RemainingAmount:         campaign.RemainingAmount(),
		WithdrawalRequestAmount: amount,
		RequestedBy:             campaign.CreatorAddress,
		RequestReason:           "测试提现",
		RequestStatus:           status,
		VotingStartDate:         start,
		VotingEndDate:           end,
	}
	if err := db.Create(escrow).Error; err != nil {
		t.Fatalf("create escrow: %v", err)
	}
	return escrow
}

// mustGetEscrow 重新读取提现申请
func mustGetEscrow(t *testing.T, db *gorm.DB, id int64) *model.EscrowRecordModel {
	t.Helper()
	var escrow model.EscrowRecordModel
	if err := db.First(&escrow, id).Error; err != nil {
		t.Fatalf("get escrow %d: %v", id, err)
	}
	return &escrow
}

// timePtr 时间指针
func timePtr(t time.Time) *time.Time {
	return &t
}
