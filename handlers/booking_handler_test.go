package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"booking_service/domain"
	"booking_service/errors"
	application "booking_service/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

type memBookingStore struct {
	bookings map[primitive.ObjectID]*domain.Booking
}

func (store *memBookingStore) Insert(ctx context.Context, booking *domain.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	store.bookings[booking.ID] = booking
	return nil
}

func (store *memBookingStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	booking, ok := store.bookings[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return booking, nil
}

func (store *memBookingStore) GetByItem(ctx context.Context, itemID primitive.ObjectID) ([]*domain.Booking, error) {
	var all []*domain.Booking
	for _, booking := range store.bookings {
		if booking.Item == itemID {
			all = append(all, booking)
		}
	}
	return all, nil
}

func (store *memBookingStore) Update(ctx context.Context, booking *domain.Booking) error {
	store.bookings[booking.ID] = booking
	return nil
}

func (store *memBookingStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(store.bookings, id)
	return nil
}

type bookingFixture struct {
	tokens   *application.TokenService
	users    *memUserStore
	items    *memItemStore
	bookings *memBookingStore
	router   *mux.Router
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	users := &memUserStore{users: map[primitive.ObjectID]*domain.User{}}
	items := &memItemStore{items: map[string]*domain.Item{}}
	bookings := &memBookingStore{bookings: map[primitive.ObjectID]*domain.Booking{}}

	tokens, err := application.NewTokenService(application.TokenConfig{
		Secret:         "test-secret",
		AppURL:         "http://localhost:8000",
		AccessLifespan: time.Hour,
	}, users, trace.NewNoopTracerProvider().Tracer("test"))
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	service := application.NewBookingService(bookings, logger, tracer)
	handler := NewBookingHandler(service, tokens, users, items, bookings, logger, tracer)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	handler.Init(api)

	return &bookingFixture{tokens: tokens, users: users, items: items, bookings: bookings, router: router}
}

func (fixture *bookingFixture) addUser(t *testing.T, name string) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, user.SetPassword("secret"))
	require.NoError(t, fixture.users.Insert(context.Background(), user))
	return user
}

func (fixture *bookingFixture) addItem(t *testing.T, slug string, owner *domain.User) *domain.Item {
	t.Helper()
	item := &domain.Item{
		ID:       primitive.NewObjectID(),
		Name:     slug,
		Slug:     slug,
		Owner:    owner.ID,
		Managers: []primitive.ObjectID{owner.ID},
	}
	require.NoError(t, fixture.items.Insert(context.Background(), item))
	owner.Items = append(owner.Items, item.ID)
	return item
}

func (fixture *bookingFixture) do(t *testing.T, user *domain.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	token, err := fixture.tokens.IssueAccessToken(user)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, req)
	return recorder
}

func TestBookingCreate_DefaultsToPending(t *testing.T) {
	fixture := newBookingFixture(t)
	owner := fixture.addUser(t, "owner")
	fixture.addItem(t, "lake-house", owner)

	recorder := fixture.do(t, owner, http.MethodPost, "/api/items/lake-house/bookings",
		`{"date": "2026-09-12T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var booking domain.Booking
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &booking))
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
}

func TestBookingCreate_CallerSetsInitialStatus(t *testing.T) {
	fixture := newBookingFixture(t)
	owner := fixture.addUser(t, "owner")
	fixture.addItem(t, "lake-house", owner)

	recorder := fixture.do(t, owner, http.MethodPost, "/api/items/lake-house/bookings",
		`{"date": "2026-09-12T00:00:00Z", "status": "waitlist"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var booking domain.Booking
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &booking))
	assert.Equal(t, "waitlist", booking.Status)
}

func TestBookingUpdate_StatusIsAFreeString(t *testing.T) {
	fixture := newBookingFixture(t)
	owner := fixture.addUser(t, "owner")
	item := fixture.addItem(t, "lake-house", owner)

	booking := &domain.Booking{Date: time.Now(), Item: item.ID, User: owner.ID, Status: domain.BookingStatusPending}
	require.NoError(t, fixture.bookings.Insert(context.Background(), booking))

	// No server-side status vocabulary: any value passes through.
	for _, status := range []string{"approved", "cancelled", "maybe later"} {
		recorder := fixture.do(t, owner, http.MethodPatch,
			"/api/items/lake-house/bookings/"+booking.ID.Hex(),
			`{"status": "`+status+`"}`)
		require.Equal(t, http.StatusOK, recorder.Code, "status %q must be accepted", status)

		stored, err := fixture.bookings.GetByID(context.Background(), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}
}

func TestBookingUpdate_EmptyStatusKeepsCurrent(t *testing.T) {
	fixture := newBookingFixture(t)
	owner := fixture.addUser(t, "owner")
	item := fixture.addItem(t, "lake-house", owner)

	booking := &domain.Booking{Date: time.Now(), Item: item.ID, User: owner.ID, Status: "approved"}
	require.NoError(t, fixture.bookings.Insert(context.Background(), booking))

	recorder := fixture.do(t, owner, http.MethodPatch,
		"/api/items/lake-house/bookings/"+booking.ID.Hex(),
		`{"comment": "see you there"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	stored, err := fixture.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
	assert.Equal(t, "see you there", stored.Comment)
}
