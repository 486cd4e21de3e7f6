package models

import "time"

// Message is a discussion board post.
type Message struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	From      string    `json:"from"`
	Text      string    `json:"text"`
	Highlight bool      `json:"highlight,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudentQuery filters the admin student listing.
type StudentQuery struct {
	Status StudentStatus `url:"status,omitempty"`
}

// DashboardStats is the admin dashboard counter set; keys are server-defined.
type DashboardStats map[string]int
