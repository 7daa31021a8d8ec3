package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConversationKeyCommutative(t *testing.T) {
	for i := 0; i < 100; i++ {
		a, b := uuid.New(), uuid.New()
		assert.Equal(t, ConversationKey(a, b), ConversationKey(b, a))
	}
}

func TestConversationKeyDistinctPairs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	assert.NotEqual(t, ConversationKey(a, b), ConversationKey(a, c))
	assert.NotEqual(t, ConversationKey(a, b), ConversationKey(b, c))
}

func TestConversationKeySelfPair(t *testing.T) {
	a := uuid.New()
	assert.Equal(t, a.String()+"|"+a.String(), ConversationKey(a, a))
}

func TestCounterpart(t *testing.T) {
	sender, recipient := uuid.New(), uuid.New()
	msg := Message{SenderID: sender, RecipientID: recipient}

	assert.Equal(t, recipient, msg.Counterpart(sender))
	assert.Equal(t, sender, msg.Counterpart(recipient))
	assert.True(t, msg.Involves(sender))
	assert.True(t, msg.Involves(recipient))
	assert.False(t, msg.Involves(uuid.New()))
}

func TestValidBody(t *testing.T) {
	body, ok := ValidBody("  hello  ")
	assert.True(t, ok)
	assert.Equal(t, "hello", body)

	_, ok = ValidBody("   ")
	assert.False(t, ok)

	_, ok = ValidBody("")
	assert.False(t, ok)
}
