package models

import "time"

// User is the whole document persisted per account: identity, lifetime
// counters and the per-day history.
type User struct {
	ID             int64       `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	PasswordHash   string      `json:"-"` // don’t expose hash
	LifetimeSteps  int64       `json:"lifetimeSteps"`
	LifetimeEnergy float64     `json:"lifetimeEnergy"`
	History        []DayRecord `json:"history"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Identity is what a session remembers about the logged-in user.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity returns the session view of the user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Email: u.Email}
}
