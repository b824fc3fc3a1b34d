package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ItemStore interface {
	Insert(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Item, error)
	GetBySlug(ctx context.Context, slug string) (*Item, error)
	GetAll(ctx context.Context) ([]*Item, error)
	// GetSlugs returns every stored slug colliding with the given base,
	// i.e. the base itself or the base with a numeric suffix.
	GetSlugs(ctx context.Context, baseSlug string) ([]string, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
