package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
)

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Name     string   `json:"name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"size:20;default:student"`

	// Profile info
	PhotoURL *string `json:"photo_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile is a user together with the ids of the courses they are enrolled in.
type UserProfile struct {
	User
	Courses []uint `json:"courses"`
}
