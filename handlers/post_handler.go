package handlers

import (
	"net/http"

	"booking_service/domain"
	application "booking_service/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type PostHandler struct {
	service *application.PostService
	tokens  *application.TokenService
	users   domain.UserStore
	items   domain.ItemStore
	posts   domain.PostStore
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewPostHandler(service *application.PostService, tokens *application.TokenService, users domain.UserStore, items domain.ItemStore, posts domain.PostStore, logger *logrus.Logger, tracer trace.Tracer) *PostHandler {
	return &PostHandler{
		service: service,
		tokens:  tokens,
		users:   users,
		items:   items,
		posts:   posts,
		logger:  logger,
		tracer:  tracer,
	}
}

func (handler *PostHandler) Init(api *mux.Router) {
	accessAuth := AccessTokenAuth(handler.tokens, handler.users)
	loadItem := LoadItemBySlug(handler.items, "slug")
	loadPost := LoadPost(handler.posts, "postId")

	api.Handle("/items/{slug}/posts",
		chain(handler.Index, accessAuth, loadItem, RequireItemAccess())).Methods(http.MethodGet)
	api.Handle("/items/{slug}/posts",
		chain(handler.Create, accessAuth, loadItem, RequireItemAccess())).Methods(http.MethodPost)
	api.Handle("/items/{slug}/posts/{postId}",
		chain(handler.Get, accessAuth, loadItem, RequireItemAccess(), loadPost)).Methods(http.MethodGet)
	api.Handle("/items/{slug}/posts/{postId}",
		chain(handler.Delete, accessAuth, loadItem, loadPost, RequirePostEditor())).Methods(http.MethodDelete)
}

func (handler *PostHandler) Index(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PostHandler.Index")
	defer span.End()

	posts, err := handler.service.GetByItem(ctx, ItemFromContext(req))
	if err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(posts, writer)
}

func (handler *PostHandler) Get(writer http.ResponseWriter, req *http.Request) {
	jsonResponse(PostFromContext(req), writer)
}

type postCreateRequest struct {
	Message string   `json:"message" validate:"required"`
	Images  []string `json:"images"`
}

func (handler *PostHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PostHandler.Create")
	defer span.End()

	var body postCreateRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	post := &domain.Post{
		Message: body.Message,
		Images:  body.Images,
	}

	if err := handler.service.Create(ctx, ActorFromContext(req), ItemFromContext(req), post); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(post, writer)
}

func (handler *PostHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PostHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, PostFromContext(req)); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
