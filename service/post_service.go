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

type PostService struct {
	posts  domain.PostStore
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewPostService(posts domain.PostStore, logger *logrus.Logger, tracer trace.Tracer) *PostService {
	return &PostService{
		posts:  posts,
		logger: logger,
		tracer: tracer,
	}
}

func (service *PostService) GetByItem(ctx context.Context, item *domain.Item) ([]*domain.Post, error) {
	return service.posts.GetByItem(ctx, item.ID)
}

// Create posts a message to the item's feed. Author and item are set here
// and never change.
func (service *PostService) Create(ctx context.Context, author *domain.User, item *domain.Item, post *domain.Post) error {
	ctx, span := service.tracer.Start(ctx, "PostService.Create")
	defer span.End()

	if post.Message == "" {
		return errors.NewValidationError(errors.Required("message"))
	}

	post.Author = author.ID
	post.Item = item.ID
	if post.Images == nil {
		post.Images = []string{}
	}
	post.CreatedAt = time.Now()

	if err := service.posts.Insert(ctx, post); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (service *PostService) Delete(ctx context.Context, post *domain.Post) error {
	ctx, span := service.tracer.Start(ctx, "PostService.Delete")
	defer span.End()

	return service.posts.Delete(ctx, post.ID)
}
