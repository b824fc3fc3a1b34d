package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostStore interface {
	Insert(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Post, error)
	GetByItem(ctx context.Context, itemID primitive.ObjectID) ([]*Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
