package models

// User is the opaque external identity of a participant
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}
