package message

import (
	"testing"

	"messagely/internal/domain/user"

	"github.com/stretchr/testify/assert"
)

func TestDetailParticipants(t *testing.T) {
	d := Detail{
		FromUser: user.Contact{Username: "alice"},
		ToUser:   user.Contact{Username: "bob"},
	}

	assert.True(t, d.IsParticipant("alice"))
	assert.True(t, d.IsParticipant("bob"))
	assert.False(t, d.IsParticipant("carol"))
	assert.False(t, d.IsParticipant(""))

	assert.True(t, d.IsRecipient("bob"))
	assert.False(t, d.IsRecipient("alice"))
	assert.False(t, d.IsRecipient(""))
}
