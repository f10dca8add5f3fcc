package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "lms-service"
	EventVersion = "1.0"
)

const (
	EventCourseCreated     = "course.created"
	EventCoursePublished   = "course.published"
	EventPurchaseCompleted = "purchase.completed"
	EventCourseCompleted   = "course.completed"
	EventPurchasesExpired  = "purchase.expired"
)

// Event is the envelope written to the message bus.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type CourseCreatedEvent struct {
	CourseID     uint   `json:"course_id"`
	InstructorID uint   `json:"instructor_id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
}

type CoursePublishedEvent struct {
	CourseID  uint `json:"course_id"`
	Published bool `json:"published"`
}

type PurchaseCompletedEvent struct {
	PurchaseID uint    `json:"purchase_id"`
	CourseID   uint    `json:"course_id"`
	UserID     uint    `json:"user_id"`
	Amount     float64 `json:"amount"`
	PaymentID  string  `json:"payment_id"`
}

type CourseCompletedEvent struct {
	CourseID uint `json:"course_id"`
	UserID   uint `json:"user_id"`
	Lectures int  `json:"lectures"`
}

type PurchasesExpiredEvent struct {
	Count  int64     `json:"count"`
	Before time.Time `json:"before"`
}
