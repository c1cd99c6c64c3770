package content

import (
	"time"

	"github.com/localnerve/jam-build-learnhub/internal/types"
)

// Collection names. Each also serves as the local mirror key for its list.
const (
	Users         = "users"
	Subjects      = "subjects"
	Topics        = "topics"
	Notes         = "notes"
	Papers        = "papers"
	Tips          = "tips"
	Notifications = "notifications"
)

// Roles a user profile can hold
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Tip statuses
const (
	TipDraft     = "draft"
	TipPublished = "published"
)

// Meta carries the document store metadata every entity is delivered with
type Meta struct {
	ID         string           `json:"$id"`
	Collection string           `json:"$collection,omitempty"`
	Version    types.FlexUint64 `json:"$version"`
	CreatedAt  time.Time        `json:"$createdAt"`
	UpdatedAt  time.Time        `json:"$updatedAt"`
}

// Profile is the document kept in the users collection, keyed by the auth user id
type Profile struct {
	Meta
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Role       string     `json:"role"`
	Plan       string     `json:"plan,omitempty"`
	PlanExpiry *time.Time `json:"plan_expiry,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	Active     bool       `json:"active"`
}

type Subject struct {
	Meta
	Name       string `json:"name"`
	Grade      string `json:"grade"`
	Creator    string `json:"creator,omitempty"`
	TopicCount int    `json:"topic_count"`
}

type Topic struct {
	Meta
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Subject     string `json:"subject"`
	Creator     string `json:"creator,omitempty"`
}

type Note struct {
	Meta
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	Topic     string `json:"topic,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	FileType  string `json:"file_type,omitempty"`
	FileID    string `json:"file_id,omitempty"`
	Downloads int    `json:"downloads"`
}

// Paper is a past examination paper
type Paper struct {
	Meta
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Grade       string `json:"grade,omitempty"`
	Year        int    `json:"year,omitempty"`
	Type        string `json:"type,omitempty"`
	FileType    string `json:"file_type,omitempty"`
	FileID      string `json:"file_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tip is a study tip
type Tip struct {
	Meta
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status"`
}

type Notification struct {
	Meta
	Title   string `json:"title"`
	Message string `json:"message"`
}
