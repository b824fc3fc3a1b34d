package handlers

import (
	"net/http"

	"booking_service/domain"
	"booking_service/errors"
	application "booking_service/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

type ItemHandler struct {
	service *application.ItemService
	tokens  *application.TokenService
	users   domain.UserStore
	items   domain.ItemStore
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewItemHandler(service *application.ItemService, tokens *application.TokenService, users domain.UserStore, items domain.ItemStore, logger *logrus.Logger, tracer trace.Tracer) *ItemHandler {
	return &ItemHandler{
		service: service,
		tokens:  tokens,
		users:   users,
		items:   items,
		logger:  logger,
		tracer:  tracer,
	}
}

func (handler *ItemHandler) Init(api *mux.Router) {
	accessAuth := AccessTokenAuth(handler.tokens, handler.users)
	loadItem := LoadItemBySlug(handler.items, "slug")

	api.Handle("/items",
		chain(handler.Index, accessAuth)).Methods(http.MethodGet)
	api.Handle("/items",
		chain(handler.Create, accessAuth)).Methods(http.MethodPost)

	api.Handle("/items/{slug}",
		chain(handler.Get, accessAuth, loadItem, RequireItemAccess())).Methods(http.MethodGet)
	api.Handle("/items/{slug}",
		chain(handler.Update, accessAuth, loadItem, RequireItemManager())).Methods(http.MethodPatch)
	api.Handle("/items/{slug}",
		chain(handler.Delete, accessAuth, loadItem, RequireItemManager())).Methods(http.MethodDelete)

	manage := func(handlerFunc http.HandlerFunc) http.Handler {
		return chain(handlerFunc, accessAuth, loadItem, RequireItemManager())
	}

	api.Handle("/items/{slug}/infos", manage(handler.AddInfo)).Methods(http.MethodPost)
	api.Handle("/items/{slug}/infos/{infoId}", manage(handler.UpdateInfo)).Methods(http.MethodPatch)
	api.Handle("/items/{slug}/infos/{infoId}", manage(handler.RemoveInfo)).Methods(http.MethodDelete)

	api.Handle("/items/{slug}/places", manage(handler.AddPlace)).Methods(http.MethodPost)
	api.Handle("/items/{slug}/places/{placeId}", manage(handler.UpdatePlace)).Methods(http.MethodPatch)
	api.Handle("/items/{slug}/places/{placeId}", manage(handler.RemovePlace)).Methods(http.MethodDelete)
}

func (handler *ItemHandler) Index(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.Index")
	defer span.End()

	items, err := handler.service.GetAll(ctx)
	if err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(items, writer)
}

func (handler *ItemHandler) Get(writer http.ResponseWriter, req *http.Request) {
	jsonResponse(ItemFromContext(req), writer)
}

type itemCreateRequest struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Address     domain.Address `json:"address"`
	Images      []string       `json:"images"`
	Equipments  []string       `json:"equipments"`
}

func (handler *ItemHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.Create")
	defer span.End()

	var body itemCreateRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	item := &domain.Item{
		Name:        body.Name,
		Description: body.Description,
		Address:     body.Address,
		Images:      body.Images,
		Equipments:  body.Equipments,
	}

	if err := handler.service.Create(ctx, ActorFromContext(req), item); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(item, writer)
}

type itemUpdateRequest struct {
	Description *string         `json:"description"`
	Address     *domain.Address `json:"address"`
	Images      []string        `json:"images"`
	Equipments  []string        `json:"equipments"`
}

func (handler *ItemHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.Update")
	defer span.End()

	var body itemUpdateRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}

	item := ItemFromContext(req)
	patch := application.ItemPatch{
		Description: body.Description,
		Address:     body.Address,
		Images:      body.Images,
		Equipments:  body.Equipments,
	}

	if err := handler.service.Update(ctx, item, patch); err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(item, writer)
}

func (handler *ItemHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, ItemFromContext(req)); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

func (handler *ItemHandler) AddInfo(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.AddInfo")
	defer span.End()

	var info domain.Info
	if err := decodeBody(req, &info); err != nil {
		writeError(writer, err)
		return
	}

	created, err := handler.service.AddInfo(ctx, ItemFromContext(req), info)
	if err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

func (handler *ItemHandler) UpdateInfo(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.UpdateInfo")
	defer span.End()

	infoID, err := primitive.ObjectIDFromHex(mux.Vars(req)["infoId"])
	if err != nil {
		writeError(writer, errors.ErrNotFound)
		return
	}

	var info domain.Info
	if err := decodeBody(req, &info); err != nil {
		writeError(writer, err)
		return
	}

	if err := handler.service.UpdateInfo(ctx, ItemFromContext(req), infoID, info); err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(ItemFromContext(req), writer)
}

func (handler *ItemHandler) RemoveInfo(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.RemoveInfo")
	defer span.End()

	infoID, err := primitive.ObjectIDFromHex(mux.Vars(req)["infoId"])
	if err != nil {
		writeError(writer, errors.ErrNotFound)
		return
	}

	if err := handler.service.RemoveInfo(ctx, ItemFromContext(req), infoID); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

func (handler *ItemHandler) AddPlace(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.AddPlace")
	defer span.End()

	var place domain.Place
	if err := decodeBody(req, &place); err != nil {
		writeError(writer, err)
		return
	}

	created, err := handler.service.AddPlace(ctx, ItemFromContext(req), place)
	if err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

func (handler *ItemHandler) UpdatePlace(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.UpdatePlace")
	defer span.End()

	placeID, err := primitive.ObjectIDFromHex(mux.Vars(req)["placeId"])
	if err != nil {
		writeError(writer, errors.ErrNotFound)
		return
	}

	var place domain.Place
	if err := decodeBody(req, &place); err != nil {
		writeError(writer, err)
		return
	}

	if err := handler.service.UpdatePlace(ctx, ItemFromContext(req), placeID, place); err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(ItemFromContext(req), writer)
}

func (handler *ItemHandler) RemovePlace(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ItemHandler.RemovePlace")
	defer span.End()

	placeID, err := primitive.ObjectIDFromHex(mux.Vars(req)["placeId"])
	if err != nil {
		writeError(writer, errors.ErrNotFound)
		return
	}

	if err := handler.service.RemovePlace(ctx, ItemFromContext(req), placeID); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
