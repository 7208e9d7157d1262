package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/wazazi/apps/api/echo"
	"github.com/trezcool/wazazi/core/messaging"
)

func Test_conversationApi_query(t *testing.T) {
	fx := setup(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/conversations", fx.token(t, "teacher1"))
	fx.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	convs := decode[[]ConversationResponse](t, rec)
	require.Len(t, convs, 2)
	assert.Equal(t, "conv1", convs[0].ID)
	assert.Equal(t, &messaging.MessagePreview{SenderName: "John Doe", Text: "Thanks for the reminder! We're confirmed for 3 PM."}, convs[0].LastMessage)

	// teacher2 is in none of the seeded conversations
	req, rec = newAuthRequest(http.MethodGet, "/v1/conversations", fx.token(t, "teacher2"))
	fx.server.ServeHTTP(rec, req)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func Test_conversationApi_access(t *testing.T) {
	fx := setup(t)
	outsider := fx.token(t, "teacher2")
	msg := marshalObj(t, messaging.NewMessage{Text: "hello"})

	tests := []httpTest{
		{name: "unknown", path: "/v1/conversations/ghost", token: outsider, wantCode: http.StatusNotFound},
		{name: "not a participant", path: "/v1/conversations/conv1", token: outsider, wantCode: http.StatusNotFound},
		{
			name: "send requires participation", method: http.MethodPost, path: "/v1/conversations/conv1/messages",
			token: outsider, body: msg, wantCode: http.StatusForbidden,
		},
		{
			name: "blank message", method: http.MethodPost, path: "/v1/conversations/conv1/messages",
			token: fx.token(t, "parent1"), body: []byte(`{"text":"   "}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"text":"this field cannot be blank"}`),
		},
		{name: "join", method: http.MethodPost, path: "/v1/conversations/conv1/join", token: outsider},
		{name: "join again", method: http.MethodPost, path: "/v1/conversations/conv1/join", token: outsider},
		{
			name: "send after join", method: http.MethodPost, path: "/v1/conversations/conv1/messages",
			token: outsider, body: msg, wantCode: http.StatusCreated,
		},
	}
	fx.run(t, tests)

	conv, err := fx.app.Messages.Get("conv1")
	require.NoError(t, err)
	assert.Equal(t, []string{"parent1", "teacher1", "teacher2"}, conv.ParticipantIDs)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "hello", conv.Messages[2].Text)
	assert.Equal(t, "teacher2", conv.Messages[2].SenderID)

	other, err := fx.app.Messages.Get("conv2")
	require.NoError(t, err)
	assert.Len(t, other.Messages, 1, "other conversations are untouched")
}

func Test_conversationApi_create(t *testing.T) {
	fx := setup(t)
	token := fx.token(t, "parent1")
	newConv := func(title, text string, ids ...string) []byte {
		return marshalObj(t, messaging.NewConversation{RecipientIDs: ids, Title: title, Text: text})
	}

	tests := []httpTest{
		{
			name: "no recipients", method: http.MethodPost, path: "/v1/conversations", token: token,
			body: newConv("Hi", "Hello"), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown recipient", method: http.MethodPost, path: "/v1/conversations", token: token,
			body: newConv("Hi", "Hello", "ghost"), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"recipientIds":"unknown recipient ghost"}`),
		},
	}
	fx.run(t, tests)

	// an existing 1:1 pair is reused
	req, rec := newAuthRequest(http.MethodPost, "/v1/conversations", token, newConv("Again", "Me again", "teacher1"))
	fx.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conv := decode[ConversationResponse](t, rec)
	assert.Equal(t, "conv1", conv.ID)
	assert.Len(t, conv.Messages, 3)

	// a new pair gets its own conversation
	req, rec = newAuthRequest(http.MethodPost, "/v1/conversations", token, newConv("Math", "About homework", "teacher2"))
	fx.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conv = decode[ConversationResponse](t, rec)
	assert.NotEqual(t, "conv1", conv.ID)
	assert.Equal(t, "parent1", conv.OwnerID)
	assert.Equal(t, []string{"parent1", "teacher2"}, conv.ParticipantIDs)
	assert.Equal(t, "Math", conv.Title)
	if assert.Len(t, conv.Messages, 1) {
		assert.Equal(t, "About homework", conv.Messages[0].Text)
	}
	assert.Len(t, fx.app.Messages.All(), 3)

	// isGroup starts a new conversation even with an existing 1:1 partner
	body := marshalObj(t, messaging.NewConversation{RecipientIDs: []string{"teacher1"}, Title: "Study group", Text: "Welcome", IsGroup: true})
	req, rec = newAuthRequest(http.MethodPost, "/v1/conversations", token, body)
	fx.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conv = decode[ConversationResponse](t, rec)
	assert.NotEqual(t, "conv1", conv.ID)
	assert.True(t, conv.IsGroup)
	assert.Equal(t, []string{"parent1", "teacher1"}, conv.ParticipantIDs)
	assert.Len(t, fx.app.Messages.All(), 4)
}
