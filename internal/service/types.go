package service

import "time"

// SignUpInput is the account data submitted at signup.
type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// Increment is one save-session submission. Negative values are applied as-is.
type Increment struct {
	Steps  int64
	Energy float64
}

// HistoryFilter narrows the history by calendar day. Only the day of From
// and To in the tracker location matters.
type HistoryFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
}
