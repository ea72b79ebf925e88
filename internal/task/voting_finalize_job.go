package task

import (
	"sync"
	"time"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/logger"
	"github.com/blues/ces/internal/logic"
	"github.com/blues/ces/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// finalizeWorkers 到期结算协程池大小
const finalizeWorkers = 8

// VotingFinalizeJob 投票窗口扫描任务：补开 pending_voting 的窗口，
// 结算已到期的窗口。结算本身幂等，投票、审核、撤销路径也会顺手结算，
// 本任务只是兜底，失败留到下一轮重试即可
type VotingFinalizeJob struct {
	db       *gorm.DB
	config   *config.Config
	schedule *logic.VotingScheduleLogic
}

// NewVotingFinalizeJob 创建投票窗口扫描任务
func NewVotingFinalizeJob(db *gorm.DB, cfg *config.Config) *VotingFinalizeJob {
	return &VotingFinalizeJob{
		db:       db,
		config:   cfg,
		schedule: logic.NewVotingScheduleLogic(db, cfg.Voting),
	}
}

// GetName 获取任务名称
func (j *VotingFinalizeJob) GetName() string {
	return "voting_finalize_sweeper"
}

// GetSchedule 获取调度配置
func (j *VotingFinalizeJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *VotingFinalizeJob) Execute() {
	j.openPendingWindows()
	j.finalizeExpired()
}

// openPendingWindows 补开创建时未能开启的投票窗口
func (j *VotingFinalizeJob) openPendingWindows() {
	var escrows []model.EscrowRecordModel
	err := j.db.Where("request_status = ?", model.EscrowStatusPendingVoting).
		Find(&escrows).Error
	if err != nil {
		logger.Error("Failed to fetch pending escrows: %v", err)
		return
	}

	for _, escrow := range escrows {
		if _, err := j.schedule.OpenVotingWindow(escrow.Id); err != nil {
			logger.Error("Failed to open voting window for escrow %d: %v", escrow.Id, err)
		}
	}
}

// finalizeExpired 并行结算所有已到期的窗口
func (j *VotingFinalizeJob) finalizeExpired() {
	now := time.Now()

	var escrows []model.EscrowRecordModel
	err := j.db.Where("request_status IN ? AND voting_end_date <= ?", []model.EscrowStatus{
		model.EscrowStatusVotingInProgress,
		model.EscrowStatusVotingExtended,
	}, now).Find(&escrows).Error
	if err != nil {
		logger.Error("Failed to fetch expired escrows: %v", err)
		return
	}
	if len(escrows) == 0 {
		return
	}

	workers := finalizeWorkers
	if len(escrows) < workers {
		workers = len(escrows)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		logger.Error("Failed to create finalize pool: %v", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, escrow := range escrows {
		escrowId := escrow.Id
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := j.schedule.FinalizeIfExpired(escrowId, now); err != nil {
				logger.Error("Failed to finalize escrow %d: %v", escrowId, err)
			}
		}); err != nil {
			wg.Done()
			logger.Error("Failed to submit finalize task for escrow %d: %v", escrowId, err)
		}
	}
	wg.Wait()

	logger.Info("Voting finalize sweep completed, processed %d escrows", len(escrows))
}
