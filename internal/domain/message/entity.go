package message

import (
	"database/sql"
	"time"

	"messagely/internal/domain/user"
)

// Message represents the messages table
type Message struct {
	ID           int64
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       sql.NullTime
}

// Detail is a message joined with both participants.
type Detail struct {
	ID       int64
	Body     string
	SentAt   time.Time
	ReadAt   sql.NullTime
	FromUser user.Contact
	ToUser   user.Contact
}

// Sent is a row of a user's outbox, joined with the recipient.
type Sent struct {
	ID     int64
	Body   string
	SentAt time.Time
	ReadAt sql.NullTime
	ToUser user.Contact
}

// Received is a row of a user's inbox, joined with the sender.
type Received struct {
	ID       int64
	Body     string
	SentAt   time.Time
	ReadAt   sql.NullTime
	FromUser user.Contact
}

// ReadReceipt is the result of marking a message read.
type ReadReceipt struct {
	ID     int64
	ReadAt time.Time
}

// IsParticipant reports whether username sent or received the message.
func (d Detail) IsParticipant(username string) bool {
	return username != "" && (d.FromUser.Username == username || d.ToUser.Username == username)
}

// IsRecipient reports whether username is the message's to_user.
func (d Detail) IsRecipient(username string) bool {
	return username != "" && d.ToUser.Username == username
}
