package entity

import "time"

// ChapterStatus 章节生成状态
type ChapterStatus string

const (
	// ChapterStatusPending 等待生成
	ChapterStatusPending ChapterStatus = "pending"
	// ChapterStatusGenerating 生成进行中，进程崩溃可能遗留此状态
	ChapterStatusGenerating ChapterStatus = "generating"
	// ChapterStatusDone 已生成完成
	ChapterStatusDone ChapterStatus = "done"
	// ChapterStatusFailed 生成失败，内容为占位文本
	ChapterStatusFailed ChapterStatus = "failed"
)

// GenerationMetadata 单章生成的元信息
type GenerationMetadata struct {
	Model       string `json:"model,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Attempts    int    `json:"attempts,omitempty"`
	TokensUsed  int    `json:"tokens_used,omitempty"`
	DurationMS  int64  `json:"duration_ms,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
}

// Chapter 章节实体
// 每个项目内章节号唯一，(project_id, number) 上有唯一索引
type Chapter struct {
	ID         string              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID  string              `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:uk_project_chapter,priority:1"`
	Number     int                 `json:"number" gorm:"not null;uniqueIndex:uk_project_chapter,priority:2"`
	Title      string              `json:"title" gorm:"type:varchar(255);not null"`
	Summary    string              `json:"summary,omitempty" gorm:"type:text"`
	Content    string              `json:"content,omitempty" gorm:"type:text"`
	Status     ChapterStatus       `json:"status" gorm:"type:varchar(20);default:'pending'"`
	FailureMsg string              `json:"failure_msg,omitempty" gorm:"type:text"`
	Metadata   *GenerationMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	WordCount  int                 `json:"word_count" gorm:"default:0"`
	CreatedAt  time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 按大纲条目创建待生成章节
func NewChapter(projectID string, oc OutlineChapter) *Chapter {
	now := time.Now()
	return &Chapter{
		ProjectID: projectID,
		Number:    oc.Number,
		Title:     oc.Title,
		Summary:   oc.Summary,
		Status:    ChapterStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkGenerating 标记生成开始
func (c *Chapter) MarkGenerating() {
	c.Status = ChapterStatusGenerating
	c.UpdatedAt = time.Now()
}

// MarkDone 写入生成结果并标记完成
func (c *Chapter) MarkDone(content string, meta *GenerationMetadata) {
	c.Content = content
	c.Status = ChapterStatusDone
	c.FailureMsg = ""
	c.Metadata = meta
	c.WordCount = len([]rune(content))
	c.UpdatedAt = time.Now()
}

// MarkFailed 写入占位内容并标记失败
func (c *Chapter) MarkFailed(placeholder, reason string) {
	c.Content = placeholder
	c.Status = ChapterStatusFailed
	c.FailureMsg = reason
	c.UpdatedAt = time.Now()
}

// IsDone 判断章节是否已完成
// 状态为 done 且内容非空才算完成，generating 视为上次运行中断的残留
func (c *Chapter) IsDone() bool {
	return c.Status == ChapterStatusDone && c.Content != ""
}
