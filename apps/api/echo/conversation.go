package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/messaging"
	"github.com/trezcool/wazazi/core/user"
)

type conversationApi struct {
	svc      *messaging.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerConversationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := conversationApi{
		svc:      deps.App.Messages,
		usrSvc:   deps.App.Users,
		validate: deps.Validate,
	}

	cg := g.Group("/conversations", jwt, ctxUserMiddleware(api.usrSvc))
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.POST("/:id/join", api.join)
	cg.POST("/:id/messages", api.sendMessage)
}

type ConversationResponse struct {
	messaging.Conversation
	LastMessage *messaging.MessagePreview `json:"lastMessage,omitempty"`
}

func newConversationResponse(conv messaging.Conversation) ConversationResponse {
	res := ConversationResponse{Conversation: conv}
	if preview, ok := messaging.Preview(conv); ok {
		res.LastMessage = &preview
	}
	return res
}

// Handlers

func (api *conversationApi) query(ctx echo.Context) error {
	convs := api.svc.ForUser(contextUser(ctx).ID)
	res := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		res = append(res, newConversationResponse(conv))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *conversationApi) create(ctx echo.Context) error {
	var data messaging.NewConversation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewConversation")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	recipients := make([]user.User, 0, len(data.RecipientIDs))
	for _, id := range data.RecipientIDs {
		usr, err := api.usrSvc.GetByID(id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return core.NewValidationError(err, core.FieldError{Field: "recipientIds", Error: "unknown recipient " + id})
			}
			return errors.Wrap(err, "finding recipient")
		}
		recipients = append(recipients, usr)
	}

	conv, err := api.svc.StartConversation(ctx.Request().Context(), contextUser(ctx), recipients, data.Title, data.Text, data.IsGroup)
	if err != nil {
		return errors.Wrap(err, "starting conversation")
	}
	return ctx.JSON(http.StatusCreated, newConversationResponse(conv))
}

func (api *conversationApi) retrieve(ctx echo.Context) error {
	conv, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding conversation")
	}
	if !conv.HasParticipant(contextUser(ctx).ID) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, newConversationResponse(conv))
}

func (api *conversationApi) join(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.Get(id); err != nil {
		return errors.Wrap(err, "finding conversation")
	}
	if err := api.svc.JoinConversation(ctx.Request().Context(), id, contextUser(ctx)); err != nil {
		return errors.Wrap(err, "joining conversation")
	}

	conv, err := api.svc.Get(id)
	if err != nil {
		return errors.Wrap(err, "finding conversation")
	}
	return ctx.JSON(http.StatusOK, newConversationResponse(conv))
}

func (api *conversationApi) sendMessage(ctx echo.Context) error {
	var data messaging.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	usr := contextUser(ctx)
	conv, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding conversation")
	}
	if !conv.HasParticipant(usr.ID) {
		return errHttpForbidden
	}

	msg, err := api.svc.SendMessage(ctx.Request().Context(), conv.ID, usr.ID, core.CleanString(data.Text))
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}
