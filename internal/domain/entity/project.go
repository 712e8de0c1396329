// Package entity 定义领域实体
package entity

import (
	"fmt"
	"time"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusWriting   ProjectStatus = "writing"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// WritingStyle 写作风格
type WritingStyle string

const (
	StyleStandard  WritingStyle = "standard"
	StyleLiterary  WritingStyle = "literary"
	StyleHumorous  WritingStyle = "humorous"
	StyleTechnical WritingStyle = "technical"
	StyleSimple    WritingStyle = "simple"
	StyleSarcastic WritingStyle = "sarcastic"
)

// Valid 检查风格是否为已知枚举值
func (s WritingStyle) Valid() bool {
	switch s {
	case StyleStandard, StyleLiterary, StyleHumorous, StyleTechnical, StyleSimple, StyleSarcastic:
		return true
	}
	return false
}

// OutlineChapter 大纲中的章节条目
// 章节号唯一且从 1 起连续递增，由大纲生成阶段保证
type OutlineChapter struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Project 书籍项目实体
type Project struct {
	ID          string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     string           `json:"owner_id,omitempty" gorm:"type:uuid;index"`
	Title       string           `json:"title" gorm:"type:varchar(255);not null"`
	Description string           `json:"description,omitempty" gorm:"type:text"`
	Style       WritingStyle     `json:"style" gorm:"type:varchar(32);default:'standard'"`
	Outline     []OutlineChapter `json:"outline,omitempty" gorm:"type:jsonb;serializer:json"`
	Status      ProjectStatus    `json:"status" gorm:"type:varchar(50);default:'draft'"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(ownerID, title string) *Project {
	now := time.Now()
	return &Project{
		OwnerID:   ownerID,
		Title:     title,
		Style:     StyleStandard,
		Status:    ProjectStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateOutline 校验大纲章节号唯一且从 1 起连续
func (p *Project) ValidateOutline() error {
	seen := make(map[int]bool, len(p.Outline))
	for _, ch := range p.Outline {
		if ch.Number < 1 {
			return fmt.Errorf("chapter number must be >= 1, got %d", ch.Number)
		}
		if seen[ch.Number] {
			return fmt.Errorf("duplicate chapter number %d", ch.Number)
		}
		seen[ch.Number] = true
	}
	for n := 1; n <= len(p.Outline); n++ {
		if !seen[n] {
			return fmt.Errorf("chapter numbers not dense: missing %d", n)
		}
	}
	return nil
}

// IsEditable 检查项目是否可编辑
func (p *Project) IsEditable() bool {
	return p.Status == ProjectStatusDraft || p.Status == ProjectStatusWriting
}
