package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// LectureProgress is a single entry of the viewed set.
type LectureProgress struct {
	LectureID uint `json:"lecture_id"`
	Viewed    bool `json:"viewed"`
}

type CourseProgress struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_course"`
	CourseID uint `json:"course_id" gorm:"not null;uniqueIndex:idx_progress_user_course"`

	// Derived from LectureProgress on write, not on read
	Completed bool `json:"completed" gorm:"default:false"`

	LectureProgress datatypes.JSON `json:"lecture_progress" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}

// Entries decodes the stored viewed set. A NULL column decodes as empty.
func (p *CourseProgress) Entries() ([]LectureProgress, error) {
	entries := []LectureProgress{}
	if len(p.LectureProgress) == 0 || string(p.LectureProgress) == "null" {
		return entries, nil
	}
	if err := json.Unmarshal(p.LectureProgress, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode lecture progress: %w", err)
	}
	return entries, nil
}

// SetEntries encodes the viewed set back into the JSON column.
func (p *CourseProgress) SetEntries(entries []LectureProgress) error {
	if entries == nil {
		entries = []LectureProgress{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode lecture progress: %w", err)
	}
	p.LectureProgress = datatypes.JSON(data)
	return nil
}

// MarkViewed upserts the entry for lectureID. It reports whether the set changed.
func MarkViewed(entries []LectureProgress, lectureID uint) ([]LectureProgress, bool) {
	for i := range entries {
		if entries[i].LectureID == lectureID {
			if entries[i].Viewed {
				return entries, false
			}
			entries[i].Viewed = true
			return entries, true
		}
	}
	return append(entries, LectureProgress{LectureID: lectureID, Viewed: true}), true
}

// CountViewed counts distinct viewed lectures among linked.
func CountViewed(entries []LectureProgress, linked []uint) int {
	viewed := make(map[uint]struct{}, len(entries))
	for _, e := range entries {
		if e.Viewed {
			viewed[e.LectureID] = struct{}{}
		}
	}
	count := 0
	for _, id := range linked {
		if _, ok := viewed[id]; ok {
			count++
		}
	}
	return count
}

// IsComplete reports whether every linked lecture has been viewed. A course
// without lectures is never complete.
func IsComplete(entries []LectureProgress, linked []uint) bool {
	return len(linked) > 0 && CountViewed(entries, linked) == len(linked)
}

// ProgressReportRow is one student line of an instructor progress report.
type ProgressReportRow struct {
	UserID        uint       `json:"user_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	EnrolledAt    time.Time  `json:"enrolled_at"`
	Viewed        int        `json:"viewed"`
	TotalLectures int        `json:"total_lectures"`
	Completed     bool       `json:"completed"`
	LastActivity  *time.Time `json:"last_activity"`
}
