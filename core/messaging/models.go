package messaging

import (
	"time"

	"github.com/trezcool/wazazi/core/user"
)

type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Participant is a snapshot of a user taken when they entered the conversation.
type Participant struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Role user.Role `json:"role"`
}

func participantOf(usr user.User) Participant {
	return Participant{ID: usr.ID, Name: usr.Name, Role: usr.Role}
}

// Conversation keeps ParticipantIDs and Participants in the same order.
type Conversation struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	OwnerID        string        `json:"ownerId"`
	ParticipantIDs []string      `json:"participantIds"`
	Participants   []Participant `json:"participants"`
	Messages       []Message     `json:"messages"`
	IsGroup        bool          `json:"isGroup"`
}

func (c Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LastMessage returns the most recently appended message.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

func (c Conversation) Participant(userID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.ID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

// MessagePreview is the last message of a conversation with its sender's name.
type MessagePreview struct {
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
}

// NewConversation contains information needed to start a conversation.
type NewConversation struct {
	RecipientIDs []string `json:"recipientIds" validate:"required,min=1,dive,required"`
	Title        string   `json:"title" validate:"notblank"`
	Text         string   `json:"text" validate:"notblank"`
	IsGroup      bool     `json:"isGroup"`
}

type NewMessage struct {
	Text string `json:"text" validate:"notblank"`
}
