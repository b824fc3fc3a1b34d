package handlers

import (
	"net/http"
	"time"

	"booking_service/domain"
	application "booking_service/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type BookingHandler struct {
	service  *application.BookingService
	tokens   *application.TokenService
	users    domain.UserStore
	items    domain.ItemStore
	bookings domain.BookingStore
	logger   *logrus.Logger
	tracer   trace.Tracer
}

func NewBookingHandler(service *application.BookingService, tokens *application.TokenService, users domain.UserStore, items domain.ItemStore, bookings domain.BookingStore, logger *logrus.Logger, tracer trace.Tracer) *BookingHandler {
	return &BookingHandler{
		service:  service,
		tokens:   tokens,
		users:    users,
		items:    items,
		bookings: bookings,
		logger:   logger,
		tracer:   tracer,
	}
}

func (handler *BookingHandler) Init(api *mux.Router) {
	accessAuth := AccessTokenAuth(handler.tokens, handler.users)
	loadItem := LoadItemBySlug(handler.items, "slug")
	loadBooking := LoadBooking(handler.bookings, "bookingId")

	api.Handle("/items/{slug}/bookings",
		chain(handler.Index, accessAuth, loadItem, RequireItemAccess())).Methods(http.MethodGet)
	api.Handle("/items/{slug}/bookings",
		chain(handler.Create, accessAuth, loadItem, RequireItemAccess())).Methods(http.MethodPost)

	api.Handle("/items/{slug}/bookings/{bookingId}",
		chain(handler.Get, accessAuth, loadItem, RequireItemAccess(), loadBooking)).Methods(http.MethodGet)
	api.Handle("/items/{slug}/bookings/{bookingId}",
		chain(handler.Update, accessAuth, loadItem, loadBooking, RequireBookingEditor())).Methods(http.MethodPatch)
	api.Handle("/items/{slug}/bookings/{bookingId}",
		chain(handler.Delete, accessAuth, loadItem, loadBooking, RequireBookingEditor())).Methods(http.MethodDelete)
}

func (handler *BookingHandler) Index(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Index")
	defer span.End()

	bookings, err := handler.service.GetByItem(ctx, ItemFromContext(req))
	if err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(bookings, writer)
}

func (handler *BookingHandler) Get(writer http.ResponseWriter, req *http.Request) {
	jsonResponse(BookingFromContext(req), writer)
}

type bookingCreateRequest struct {
	Date    time.Time `json:"date" validate:"required"`
	Status  string    `json:"status"`
	Comment string    `json:"comment"`
}

func (handler *BookingHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Create")
	defer span.End()

	var body bookingCreateRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	booking := &domain.Booking{
		Date:    body.Date,
		Status:  body.Status,
		Comment: body.Comment,
	}

	if err := handler.service.Create(ctx, ActorFromContext(req), ItemFromContext(req), booking); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(booking, writer)
}

// Status is a free string; managers and requesters settle its vocabulary
// between themselves, the server only defaults it to pending.
type bookingUpdateRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func (handler *BookingHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Update")
	defer span.End()

	var body bookingUpdateRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}

	booking := BookingFromContext(req)
	if err := handler.service.Update(ctx, booking, body.Status, body.Comment); err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(booking, writer)
}

func (handler *BookingHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, BookingFromContext(req)); err != nil {
		writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
