package dto

import (
	"time"

	"inkwell-book-api/internal/domain/entity"
)

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	Content    string    `json:"content,omitempty"`
	Status     string    `json:"status"`
	FailureMsg string    `json:"failure_msg,omitempty"`
	WordCount  int       `json:"word_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToChapterResponse 转换章节响应
func ToChapterResponse(ch *entity.Chapter) *ChapterResponse {
	return &ChapterResponse{
		ID:         ch.ID,
		ProjectID:  ch.ProjectID,
		Number:     ch.Number,
		Title:      ch.Title,
		Summary:    ch.Summary,
		Content:    ch.Content,
		Status:     string(ch.Status),
		FailureMsg: ch.FailureMsg,
		WordCount:  ch.WordCount,
		UpdatedAt:  ch.UpdatedAt,
	}
}

// ChapterListResponse 章节列表响应
type ChapterListResponse struct {
	Chapters []*ChapterResponse `json:"chapters"`
}

// ToChapterListResponse 转换章节列表响应
func ToChapterListResponse(items []*entity.Chapter) *ChapterListResponse {
	chapters := make([]*ChapterResponse, 0, len(items))
	for _, ch := range items {
		chapters = append(chapters, ToChapterResponse(ch))
	}
	return &ChapterListResponse{Chapters: chapters}
}
