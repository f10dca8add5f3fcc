package models

import (
	"time"
)

type CourseLevel string

const (
	LevelBeginner CourseLevel = "Beginner"
	LevelMedium   CourseLevel = "Medium"
	LevelAdvance  CourseLevel = "Advance"
)

type Course struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	CourseTitle     string       `json:"course_title" gorm:"not null;size:200"`
	SubTitle        *string      `json:"subtitle" gorm:"column:subtitle;size:300"`
	Description     *string      `json:"description" gorm:"type:text"`
	Category        string       `json:"category" gorm:"not null;size:100;index"`
	CourseLevel     *CourseLevel `json:"course_level" gorm:"size:20"`
	CoursePrice     *float64     `json:"course_price"`
	CourseThumbnail *string      `json:"course_thumbnail" gorm:"size:500"`
	IsPublished     bool         `json:"is_published" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// InstructorCourse links a course to the single instructor that owns it.
type InstructorCourse struct {
	InstructorID uint `json:"instructor_id" gorm:"not null;index"`
	CourseID     uint `json:"course_id" gorm:"primaryKey;autoIncrement:false"`

	Instructor User   `json:"-" gorm:"foreignKey:InstructorID"`
	Course     Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

func (InstructorCourse) TableName() string {
	return "instructor_courses"
}

// CourseWithInstructor is the read shape used by detail views.
type CourseWithInstructor struct {
	Course
	InstructorID       *uint   `json:"instructor_id"`
	InstructorName     *string `json:"instructor_name"`
	InstructorPhotoURL *string `json:"instructor_photo_url"`
	InstructorEmail    *string `json:"instructor_email"`
}

// CourseDetail is a course with its ordered lectures.
type CourseDetail struct {
	CourseWithInstructor
	Lectures []*CourseLectureView `json:"lectures"`
}

// UserCourse is an enrollment of a user in a course.
type UserCourse struct {
	UserID     uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	CourseID   uint      `json:"course_id" gorm:"primaryKey;autoIncrement:false"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"not null"`
}

func (UserCourse) TableName() string {
	return "user_courses"
}
