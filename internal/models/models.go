package models

import (
	"encoding/json"
	"time"
)

// NullTime is a timestamp that may be unset, as sent by the API
type NullTime struct {
	Time  time.Time `json:"Time"`
	Valid bool      `json:"Valid"`
}

// Project is a realm that holds meetings and tags
type Project struct {
	ID          int64     `json:"ID"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"CreatedAt"`
	UpdatedAt   time.Time `json:"UpdatedAt"`
}

// Meeting belongs to a project and holds topics
type Meeting struct {
	ID          int64     `json:"ID"`
	ProjectID   int64     `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	CreatedAt   time.Time `json:"CreatedAt"`
}

// Upcoming reports whether the meeting starts after now
func (m Meeting) Upcoming(now time.Time) bool {
	return m.StartDate.After(now)
}

// Tag is a coloured label scoped to a project
type Tag struct {
	ID        int64  `json:"ID"`
	Title     string `json:"title"`
	Color     string `json:"color"`
	ProjectID int64  `json:"project_id"`
}

// User is identified by the auth provider's subject. An empty Name means
// the user has not registered yet.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registered reports whether the user picked a display name
func (u User) Registered() bool {
	return u.Name != ""
}

// Topic is a point on a meeting's agenda
type Topic struct {
	ID            int64     `json:"ID"`
	MeetingID     int64     `json:"meeting_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ClosedAt      NullTime  `json:"closed_at"`
	AssignedUsers []User    `json:"assigned_users"`
	Tags          []Tag     `json:"tags"`
	CreatedAt     time.Time `json:"CreatedAt"`
}

// Closed reports whether the topic was resolved
func (t Topic) Closed() bool {
	return t.ClosedAt.Valid
}

// AssignedTo reports whether the given user is assigned to the topic
func (t Topic) AssignedTo(userID string) bool {
	for _, u := range t.AssignedUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// Comment is one message in a project's conversation
type Comment struct {
	ID        int64     `json:"ID"`
	AuthorID  string    `json:"author_id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	ProjectID int64     `json:"project_id"`
	CreatedAt time.Time `json:"CreatedAt"`
}

// AuthorName is the author's display name, or their ID before they
// registered
func (c Comment) AuthorName() string {
	if c.Author.Name != "" {
		return c.Author.Name
	}
	return c.AuthorID
}

// Action is a follow-up task of a project, optionally due at a date
type Action struct {
	ID            int64    `json:"ID"`
	ProjectID     int64    `json:"project_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DueDate       NullTime `json:"due_date"`
	ClosedAt      NullTime `json:"closed_at"`
	AssignedUsers []User   `json:"assigned_users"`
	Tags          []Tag    `json:"tags"`
}

// Closed reports whether the action was resolved
func (a Action) Closed() bool {
	return a.ClosedAt.Valid
}

// AssignedTo reports whether the given user is assigned to the action
func (a Action) AssignedTo(userID string) bool {
	for _, u := range a.AssignedUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// Overdue reports whether an open action is past its due date
func (a Action) Overdue(now time.Time) bool {
	return !a.Closed() && a.DueDate.Valid && a.DueDate.Time.Before(now)
}

// Response is the envelope every API endpoint answers with
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data"`
}

// Empty decodes responses whose data is irrelevant
type Empty = json.RawMessage
