package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("conversation not found")
	ErrNoRecipients = errors.New("a conversation needs at least one recipient")

	NowFunc = time.Now // mockable
)

type Service struct {
	conversations *core.Collection[Conversation]
}

func NewService(kv core.KVStore, seed ...Conversation) *Service {
	return &Service{conversations: core.NewCollection(core.KeyConversations, kv, seed...)}
}

func (svc *Service) Load(ctx context.Context) error { return svc.conversations.Load(ctx) }

func (svc *Service) OnChange(fn func()) (unsubscribe func()) { return svc.conversations.OnChange(fn) }

func (svc *Service) All() []Conversation { return svc.conversations.Items() }

func (svc *Service) Get(id string) (Conversation, error) {
	if conv, ok := svc.conversations.Find(func(c Conversation) bool { return c.ID == id }); ok {
		return conv, nil
	}
	return Conversation{}, ErrNotFound
}

// ForUser returns the conversations userID participates in.
func (svc *Service) ForUser(userID string) []Conversation {
	return svc.conversations.Filter(func(c Conversation) bool { return c.HasParticipant(userID) })
}

// ForSession is the live list of the session holder's conversations.
func (svc *Service) ForSession(session *user.Session) *core.Computed[[]Conversation] {
	return core.NewComputed(func() []Conversation {
		usr, ok := session.Current()
		if !ok {
			return []Conversation{}
		}
		return svc.ForUser(usr.ID)
	}, svc.conversations, session)
}

// CreateConversation starts a conversation between currentUser and recipients.
// A non-group request with a single recipient reuses the existing 1:1 conversation of the pair, if any.
func (svc *Service) CreateConversation(
	ctx context.Context,
	currentUser user.User,
	recipients []user.User,
	title string,
	isGroup bool,
) (Conversation, error) {
	if len(recipients) == 0 {
		return Conversation{}, core.NewValidationError(ErrNoRecipients, core.FieldError{Field: "recipientIds", Error: ErrNoRecipients.Error()})
	}

	var conv Conversation
	err := svc.conversations.Mutate(ctx, func(convs []Conversation) ([]Conversation, error) {
		if !isGroup && len(recipients) == 1 {
			if existing, ok := findPair(convs, currentUser.ID, recipients[0].ID); ok {
				conv = existing
				return convs, nil
			}
		}

		all := append([]user.User{currentUser}, recipients...)
		conv = Conversation{
			ID:             core.NewID(),
			Title:          core.CleanString(title),
			OwnerID:        currentUser.ID,
			ParticipantIDs: make([]string, 0, len(all)),
			Participants:   make([]Participant, 0, len(all)),
			Messages:       []Message{},
			IsGroup:        isGroup,
		}
		for _, usr := range all {
			conv.ParticipantIDs = append(conv.ParticipantIDs, usr.ID)
			conv.Participants = append(conv.Participants, participantOf(usr))
		}
		return append(convs, conv), nil
	})
	if err != nil {
		return Conversation{}, err
	}
	return conv, nil
}

// JoinConversation adds usr to the participants unless they already are one.
func (svc *Service) JoinConversation(ctx context.Context, id string, usr user.User) error {
	return svc.conversations.Mutate(ctx, func(convs []Conversation) ([]Conversation, error) {
		for i, conv := range convs {
			if conv.ID != id || conv.HasParticipant(usr.ID) {
				continue
			}
			// copy on write: the previous snapshot may still be read elsewhere
			conv.ParticipantIDs = append(conv.ParticipantIDs[:len(conv.ParticipantIDs):len(conv.ParticipantIDs)], usr.ID)
			conv.Participants = append(conv.Participants[:len(conv.Participants):len(conv.Participants)], participantOf(usr))
			convs[i] = conv
		}
		return convs, nil
	})
}

// SendMessage appends a message to the conversation. Sending to a missing conversation is a no-op.
func (svc *Service) SendMessage(ctx context.Context, conversationID, senderID, text string) (Message, error) {
	msg := Message{
		ID:        core.NewID(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: NowFunc().UTC(),
	}
	err := svc.conversations.Mutate(ctx, func(convs []Conversation) ([]Conversation, error) {
		for i, conv := range convs {
			if conv.ID == conversationID {
				conv.Messages = append(conv.Messages[:len(conv.Messages):len(conv.Messages)], msg)
				convs[i] = conv
			}
		}
		return convs, nil
	})
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// StartConversation creates (or reuses) a conversation then sends its first message.
// It is a group conversation when isGroup is set or there are several recipients.
// The two steps are persisted independently.
func (svc *Service) StartConversation(
	ctx context.Context,
	currentUser user.User,
	recipients []user.User,
	title, text string,
	isGroup bool,
) (Conversation, error) {
	conv, err := svc.CreateConversation(ctx, currentUser, recipients, title, isGroup || len(recipients) > 1)
	if err != nil {
		return Conversation{}, errors.Wrap(err, "creating conversation")
	}
	if _, err := svc.SendMessage(ctx, conv.ID, currentUser.ID, strings.TrimSpace(text)); err != nil {
		return Conversation{}, errors.Wrap(err, "sending initial message")
	}
	return svc.Get(conv.ID)
}

// Import adds the conversations whose ID is unknown, and reports how many were added.
func (svc *Service) Import(ctx context.Context, convs ...Conversation) (int, error) {
	var added int
	err := svc.conversations.Mutate(ctx, func(existing []Conversation) ([]Conversation, error) {
		for _, conv := range convs {
			if _, found := findByID(existing, conv.ID); !found {
				existing = append(existing, conv)
				added++
			}
		}
		return existing, nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Preview describes the last message of conv, if any.
func Preview(conv Conversation) (MessagePreview, bool) {
	msg, ok := conv.LastMessage()
	if !ok {
		return MessagePreview{}, false
	}
	senderName := "Unknown"
	if p, ok := conv.Participant(msg.SenderID); ok {
		senderName = p.Name
	}
	return MessagePreview{SenderName: senderName, Text: msg.Text}, true
}

func findPair(convs []Conversation, a, b string) (Conversation, bool) {
	for _, c := range convs {
		if !c.IsGroup && len(c.ParticipantIDs) == 2 && c.HasParticipant(a) && c.HasParticipant(b) {
			return c, true
		}
	}
	return Conversation{}, false
}

func findByID(convs []Conversation, id string) (Conversation, bool) {
	for _, c := range convs {
		if c.ID == id {
			return c, true
		}
	}
	return Conversation{}, false
}
