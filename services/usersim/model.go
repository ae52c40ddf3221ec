package usersim

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

type User struct {
	UID          string     `json:"uid"`
	FullName     string     `json:"fullName"`
	EmailAddress string     `json:"emailAddress"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

type ListUsersRequest struct {
	Role   string `form:"role"`
	Search string `form:"search"`
	Limit  int    `form:"limit"`
}

type refreshSession struct {
	UID       string
	UserUID   string
	ExpiresAt time.Time
}
