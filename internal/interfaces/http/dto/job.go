package dto

import (
	"time"

	"inkwell-book-api/internal/domain/entity"
)

// StartRunRequest 发起生成运行请求
type StartRunRequest struct {
	Style string `json:"style,omitempty"`
}

// JobResponse 生成任务响应
type JobResponse struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	Status         string     `json:"status"`
	Style          string     `json:"style"`
	Cursor         int        `json:"cursor"`
	ChaptersTotal  int        `json:"chapters_total"`
	ChaptersDone   int        `json:"chapters_done"`
	ChaptersFailed int        `json:"chapters_failed"`
	AbortReason    string     `json:"abort_reason,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToJobResponse 转换任务响应
func ToJobResponse(j *entity.GenerationJob) *JobResponse {
	return &JobResponse{
		ID:             j.ID,
		ProjectID:      j.ProjectID,
		Status:         string(j.Status),
		Style:          string(j.Style),
		Cursor:         j.Cursor,
		ChaptersTotal:  j.ChaptersTotal,
		ChaptersDone:   j.ChaptersDone,
		ChaptersFailed: j.ChaptersFailed,
		AbortReason:    j.AbortReason,
		StartedAt:      j.StartedAt,
		FinishedAt:     j.FinishedAt,
		CreatedAt:      j.CreatedAt,
	}
}

// JobListResponse 任务列表响应
type JobListResponse struct {
	Jobs []*JobResponse `json:"jobs"`
}

// ToJobListResponse 转换任务列表响应
func ToJobListResponse(items []*entity.GenerationJob) *JobListResponse {
	jobs := make([]*JobResponse, 0, len(items))
	for _, j := range items {
		jobs = append(jobs, ToJobResponse(j))
	}
	return &JobListResponse{Jobs: jobs}
}
