package config

import (
	"github.com/blues/ces/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Voting   VotingConfig   `mapstructure:"voting"`
	Payout   PayoutConfig   `mapstructure:"payout"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// VotingConfig 投票参数配置
type VotingConfig struct {
	PeriodDays      int   `mapstructure:"period_days"`      // 投票窗口天数
	ExtensionDays   int   `mapstructure:"extension_days"`   // 未达法定票权时的延长天数（最多延长一次）
	QuorumPercent   int   `mapstructure:"quorum_percent"`   // 法定票权占合格总票权的百分比
	ApprovalPercent int   `mapstructure:"approval_percent"` // 通过所需赞成票权占已投票权的百分比
	Milestones      []int `mapstructure:"milestones"`       // 自动触发提现申请的筹款进度百分比
}

// PayoutConfig 放款通道配置
type PayoutConfig struct {
	Endpoint string `mapstructure:"endpoint"` // 外部放款服务地址
	Enabled  bool   `mapstructure:"enabled"`  // 关闭时仅记录放款指令，不实际调用
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ces")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "crowdfunding")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("voting.period_days", 7)
	viper.SetDefault("voting.extension_days", 3)
	viper.SetDefault("voting.quorum_percent", 20)
	viper.SetDefault("voting.approval_percent", 50)
	viper.SetDefault("voting.milestones", []int{25, 50, 75, 100})
	viper.SetDefault("payout.endpoint", "")
	viper.SetDefault("payout.enabled", false)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
