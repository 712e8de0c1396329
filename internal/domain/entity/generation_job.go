package entity

import "time"

// JobStatus 生成任务状态
type JobStatus string

const (
	// JobStatusPending 已入队等待 worker 领取
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning 正在逐章生成
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted 本轮全部章节处理完毕（失败章节也算处理过）
	JobStatusCompleted JobStatus = "completed"
	// JobStatusAborted 遇到致命错误提前终止
	JobStatusAborted JobStatus = "aborted"
	// JobStatusCancelled 用户主动取消
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal 判断任务是否已进入终态
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusAborted || s == JobStatusCancelled
}

// GenerationJob 一次章节生成运行
// 同一项目同时只允许一个非终态任务存在
type GenerationJob struct {
	ID             string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID      string       `json:"project_id" gorm:"type:uuid;not null;index"`
	Status         JobStatus    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Style          WritingStyle `json:"style" gorm:"type:varchar(32);not null"`
	Cursor         int          `json:"cursor" gorm:"default:0"`
	ChaptersTotal  int          `json:"chapters_total" gorm:"default:0"`
	ChaptersDone   int          `json:"chapters_done" gorm:"default:0"`
	ChaptersFailed int          `json:"chapters_failed" gorm:"default:0"`
	AbortReason    string       `json:"abort_reason,omitempty" gorm:"type:text"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	FinishedAt     *time.Time   `json:"finished_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (GenerationJob) TableName() string {
	return "generation_jobs"
}

// NewGenerationJob 创建待执行任务
func NewGenerationJob(projectID string, style WritingStyle) *GenerationJob {
	now := time.Now()
	return &GenerationJob{
		ProjectID: projectID,
		Status:    JobStatusPending,
		Style:     style,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Start 标记任务开始执行
func (j *GenerationJob) Start(total int) {
	now := time.Now()
	j.Status = JobStatusRunning
	j.ChaptersTotal = total
	j.StartedAt = &now
	j.UpdatedAt = now
}

// Complete 标记任务正常结束
func (j *GenerationJob) Complete() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// Abort 因致命错误终止任务
func (j *GenerationJob) Abort(reason string) {
	now := time.Now()
	j.Status = JobStatusAborted
	j.AbortReason = reason
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// Cancel 用户取消任务
func (j *GenerationJob) Cancel() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.FinishedAt = &now
	j.UpdatedAt = now
}
