package handlers

import (
	"net/http"

	"booking_service/domain"
	application "booking_service/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// UserHandler serves the account surface and the item membership mutations
// (invite, unregister).
type UserHandler struct {
	service *application.UserService
	tokens  *application.TokenService
	users   domain.UserStore
	items   domain.ItemStore
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewUserHandler(service *application.UserService, tokens *application.TokenService, users domain.UserStore, items domain.ItemStore, logger *logrus.Logger, tracer trace.Tracer) *UserHandler {
	return &UserHandler{
		service: service,
		tokens:  tokens,
		users:   users,
		items:   items,
		logger:  logger,
		tracer:  tracer,
	}
}

func (handler *UserHandler) Init(api *mux.Router, admin *mux.Router) {
	accessAuth := AccessTokenAuth(handler.tokens, handler.users)

	api.Handle("/users/me",
		chain(handler.Me, accessAuth)).Methods(http.MethodGet)
	api.Handle("/users/me",
		chain(handler.Update, accessAuth, LoadMeAsTargetUser())).Methods(http.MethodPatch)

	admin.Handle("/users/{userId}",
		chain(handler.Update,
			accessAuth,
			LoadTargetUser(handler.users, "userId"),
			RequireAdmin(),
		)).Methods(http.MethodPatch)
	admin.Handle("/users/{userId}",
		chain(handler.Delete,
			accessAuth,
			LoadTargetUser(handler.users, "userId"),
			RequireAdmin(),
		)).Methods(http.MethodDelete)

	api.Handle("/items/{slug}/invite",
		chain(handler.Invite,
			accessAuth,
			LoadItemBySlug(handler.items, "slug"),
			RequireItemManager(),
		)).Methods(http.MethodPost)
	api.Handle("/items/{slug}/unregister/{userId}",
		chain(handler.Unregister,
			accessAuth,
			LoadItemBySlug(handler.items, "slug"),
			LoadTargetUser(handler.users, "userId"),
			RequireUnregisterRights(),
		)).Methods(http.MethodPost)
}

func (handler *UserHandler) Me(writer http.ResponseWriter, req *http.Request) {
	jsonResponse(ActorFromContext(req), writer)
}

type userUpdateRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     *string `json:"password"`
	ProfileImage *string `json:"profileImage"`
}

// Update patches the target user: the actor itself on /users/me, an
// arbitrary account on the admin route.
func (handler *UserHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Update")
	defer span.End()

	var body userUpdateRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	target := TargetUserFromContext(req)
	patch := application.UserPatch{
		Name:         body.Name,
		Email:        body.Email,
		Password:     body.Password,
		ProfileImage: body.ProfileImage,
	}

	if err := handler.service.Update(ctx, target, patch); err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(target, writer)
}

func (handler *UserHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, TargetUserFromContext(req).ID); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

type inviteRequest struct {
	Email     string `json:"email" validate:"required,email"`
	AsManager bool   `json:"asManager"`
}

// Invite grants the addressed email access to the item, creating a
// placeholder account when needed.
func (handler *UserHandler) Invite(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Invite")
	defer span.End()

	var body inviteRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	if err := handler.service.Invite(ctx, ItemFromContext(req), body.Email, body.AsManager); err != nil {
		writeError(writer, err)
		return
	}

	writeMessage(writer, http.StatusOK, "Invite sent")
}

func (handler *UserHandler) Unregister(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.Unregister")
	defer span.End()

	if err := handler.service.Unregister(ctx, ItemFromContext(req), TargetUserFromContext(req)); err != nil {
		writeError(writer, err)
		return
	}

	writeMessage(writer, http.StatusOK, "Access revoked")
}
