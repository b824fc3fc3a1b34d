package application

import (
	"context"
	"time"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type BookingService struct {
	bookings domain.BookingStore
	logger   *logrus.Logger
	tracer   trace.Tracer
}

func NewBookingService(bookings domain.BookingStore, logger *logrus.Logger, tracer trace.Tracer) *BookingService {
	return &BookingService{
		bookings: bookings,
		logger:   logger,
		tracer:   tracer,
	}
}

func (service *BookingService) GetByItem(ctx context.Context, item *domain.Item) ([]*domain.Booking, error) {
	return service.bookings.GetByItem(ctx, item.ID)
}

// Create inserts a booking request by the actor against the item. Date is
// required and immutable once set; status defaults to pending.
func (service *BookingService) Create(ctx context.Context, actor *domain.User, item *domain.Item, booking *domain.Booking) error {
	ctx, span := service.tracer.Start(ctx, "BookingService.Create")
	defer span.End()

	if booking.Date.IsZero() {
		return errors.NewValidationError(errors.Required("date"))
	}

	booking.Item = item.ID
	booking.User = actor.ID
	if booking.Status == "" {
		booking.Status = domain.BookingStatusPending
	}
	booking.CreatedAt = time.Now()

	if err := service.bookings.Insert(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Update changes status and comment only; date, item and requester are
// immutable. A missing status keeps the current one, the comment is always
// replaced.
func (service *BookingService) Update(ctx context.Context, booking *domain.Booking, status, comment string) error {
	ctx, span := service.tracer.Start(ctx, "BookingService.Update")
	defer span.End()

	if status != "" {
		booking.Status = status
	}
	booking.Comment = comment

	return service.bookings.Update(ctx, booking)
}

func (service *BookingService) Delete(ctx context.Context, booking *domain.Booking) error {
	ctx, span := service.tracer.Start(ctx, "BookingService.Delete")
	defer span.End()

	return service.bookings.Delete(ctx, booking.ID)
}
