package portal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/wazazi/core/messaging"
	"github.com/trezcool/wazazi/core/user"
	appfs "github.com/trezcool/wazazi/fs"
)

const seedPath = "seed.yaml"

type (
	Fixture struct {
		Users         []seedUser         `yaml:"users"`
		Conversations []seedConversation `yaml:"conversations"`
	}

	seedUser struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	}

	seedConversation struct {
		ID           string        `yaml:"id"`
		Title        string        `yaml:"title"`
		OwnerID      string        `yaml:"ownerId"`
		Participants []string      `yaml:"participants"`
		IsGroup      bool          `yaml:"isGroup"`
		Messages     []seedMessage `yaml:"messages"`
	}

	seedMessage struct {
		ID       string `yaml:"id"`
		SenderID string `yaml:"senderId"`
		Text     string `yaml:"text"`
		Ago      string `yaml:"ago"`
	}
)

// LoadSeed parses the embedded demo fixture.
func LoadSeed() (*Fixture, error) {
	data, err := appfs.FS.ReadFile(seedPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading seed")
	}
	fx := new(Fixture)
	if err := yaml.Unmarshal(data, fx); err != nil {
		return nil, errors.Wrap(err, "parsing seed")
	}
	return fx, nil
}

func (fx *Fixture) Accounts() ([]user.Account, error) {
	accounts := make([]user.Account, 0, len(fx.Users))
	for _, su := range fx.Users {
		role, err := user.ParseRole(su.Role)
		if err != nil {
			return nil, errors.Wrapf(err, "user %s", su.ID)
		}
		acc := user.Account{User: user.User{ID: su.ID, Name: su.Name, Email: su.Email, Role: role}}
		if err := acc.SetPassword(su.Password); err != nil {
			return nil, errors.Wrapf(err, "user %s", su.ID)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// BuildConversations resolves the fixture's conversations; message times are relative to now.
func (fx *Fixture) BuildConversations(now time.Time) ([]messaging.Conversation, error) {
	users := make(map[string]seedUser, len(fx.Users))
	for _, su := range fx.Users {
		users[su.ID] = su
	}

	convs := make([]messaging.Conversation, 0, len(fx.Conversations))
	for _, sc := range fx.Conversations {
		conv := messaging.Conversation{
			ID:       sc.ID,
			Title:    sc.Title,
			OwnerID:  sc.OwnerID,
			IsGroup:  sc.IsGroup,
			Messages: make([]messaging.Message, 0, len(sc.Messages)),
		}
		for _, id := range sc.Participants {
			su, ok := users[id]
			if !ok {
				return nil, errors.Errorf("conversation %s: unknown participant %q", sc.ID, id)
			}
			role, err := user.ParseRole(su.Role)
			if err != nil {
				return nil, errors.Wrapf(err, "conversation %s", sc.ID)
			}
			conv.ParticipantIDs = append(conv.ParticipantIDs, su.ID)
			conv.Participants = append(conv.Participants, messaging.Participant{ID: su.ID, Name: su.Name, Role: role})
		}
		for _, sm := range sc.Messages {
			ago, err := time.ParseDuration(sm.Ago)
			if err != nil {
				return nil, errors.Wrapf(err, "message %s", sm.ID)
			}
			conv.Messages = append(conv.Messages, messaging.Message{
				ID:        sm.ID,
				SenderID:  sm.SenderID,
				Text:      sm.Text,
				Timestamp: now.Add(-ago).UTC(),
			})
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

// Seed adds the demo fixture to the stores, skipping what already exists.
func (app *App) Seed(ctx context.Context) (users, conversations int, err error) {
	fx, err := LoadSeed()
	if err != nil {
		return 0, 0, err
	}
	accs, err := fx.Accounts()
	if err != nil {
		return 0, 0, err
	}
	convs, err := fx.BuildConversations(messaging.NowFunc())
	if err != nil {
		return 0, 0, err
	}

	if users, err = app.Users.Import(ctx, accs...); err != nil {
		return 0, 0, errors.Wrap(err, "seeding users")
	}
	if conversations, err = app.Messages.Import(ctx, convs...); err != nil {
		return users, 0, errors.Wrap(err, "seeding conversations")
	}
	return users, conversations, nil
}
