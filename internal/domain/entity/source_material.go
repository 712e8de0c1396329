package entity

import "time"

// SourceKind 素材类型
type SourceKind string

const (
	SourceKindNote         SourceKind = "note"
	SourceKindTranscript   SourceKind = "transcript"
	SourceKindImageCaption SourceKind = "image_caption"
)

// Valid 检查素材类型是否合法
func (k SourceKind) Valid() bool {
	switch k {
	case SourceKindNote, SourceKindTranscript, SourceKindImageCaption:
		return true
	}
	return false
}

// SourceMaterial 项目素材实体，生成时整体注入提示词
type SourceMaterial struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID string     `json:"project_id" gorm:"type:uuid;not null;index"`
	Kind      SourceKind `json:"kind" gorm:"type:varchar(32);not null"`
	Title     string     `json:"title,omitempty" gorm:"type:varchar(255)"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (SourceMaterial) TableName() string {
	return "source_materials"
}

// NewSourceMaterial 创建素材
func NewSourceMaterial(projectID string, kind SourceKind, title, content string) *SourceMaterial {
	now := time.Now()
	return &SourceMaterial{
		ProjectID: projectID,
		Kind:      kind,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
