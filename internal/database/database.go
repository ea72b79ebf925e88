package database

import (
	"fmt"
	"strings"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 禁用 GORM 的默认日志输出
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true, // 禁用复数表名
		},
		TranslateError: true, // 唯一约束冲突统一转为 gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 自动迁移并创建约束索引
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.CampaignModel{},
		&model.DonationRecordModel{},
		&model.EscrowRecordModel{},
		&model.VoteModel{},
		&model.PayoutRecordModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 部分唯一索引：同一活动同时最多一条非终态提现申请，
	// 并发创建时由数据库保证只有一个成功
	statuses := make([]string, 0, len(model.ActiveEscrowStatuses()))
	for _, s := range model.ActiveEscrowStatuses() {
		statuses = append(statuses, fmt.Sprintf("'%s'", s))
	}
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_escrow_active_campaign ON escrow_record (campaign_id) WHERE request_status IN (%s)",
		strings.Join(statuses, ", "),
	)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create active escrow index: %w", err)
	}

	return nil
}
