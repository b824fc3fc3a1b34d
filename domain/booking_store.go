package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStore interface {
	Insert(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	GetByItem(ctx context.Context, itemID primitive.ObjectID) ([]*Booking, error)
	Update(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
