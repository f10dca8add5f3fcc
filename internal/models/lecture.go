package models

import (
	"time"
)

type LectureStatus string

const (
	LectureDraft LectureStatus = "draft"
	LectureReady LectureStatus = "ready"
)

type Lecture struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	LectureTitle    string        `json:"lecture_title" gorm:"not null;size:200"`
	VideoURL        *string       `json:"video_url" gorm:"size:500"`
	PublicID        *string       `json:"public_id" gorm:"size:255"`
	DurationSeconds *int          `json:"duration_seconds"`
	Status          LectureStatus `json:"status" gorm:"size:20;default:draft"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lecture) TableName() string {
	return "lectures"
}

// CourseLecture is the join between a course and a lecture. The preview flag
// belongs to the link, not to the lecture.
type CourseLecture struct {
	CourseID      uint `json:"course_id" gorm:"primaryKey;autoIncrement:false"`
	LectureID     uint `json:"lecture_id" gorm:"primaryKey;autoIncrement:false;index"`
	IsPreviewFree bool `json:"is_preview_free" gorm:"default:false"`
}

func (CourseLecture) TableName() string {
	return "course_lectures"
}

// CourseLectureView is a lecture as seen through one course link.
type CourseLectureView struct {
	Lecture
	IsPreviewFree bool `json:"is_preview_free"`
}

// VideoInfo describes an uploaded video on the media host.
type VideoInfo struct {
	VideoURL string `json:"videoUrl" validate:"required,url"`
	PublicID string `json:"publicId" validate:"required"`
}

// MediaAsset is the result of a media host upload.
type MediaAsset struct {
	URL       string  `json:"url"`
	SecureURL string  `json:"secure_url"`
	PublicID  string  `json:"public_id"`
	Duration  float64 `json:"duration,omitempty"`
}
