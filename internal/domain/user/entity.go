package user

import (
	"database/sql"
	"time"
)

// User represents the users table
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinAt       time.Time
	LastLoginAt  sql.NullTime
}

// Basic is the subset returned when listing users.
type Basic struct {
	Username  string
	FirstName string
	LastName  string
}

// Profile is a user without credentials.
type Profile struct {
	Username    string
	FirstName   string
	LastName    string
	Phone       string
	JoinAt      time.Time
	LastLoginAt sql.NullTime
}

// Contact is the counterpart user embedded in message listings.
type Contact struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

func (u User) Profile() Profile {
	return Profile{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinAt:      u.JoinAt,
		LastLoginAt: u.LastLoginAt,
	}
}
