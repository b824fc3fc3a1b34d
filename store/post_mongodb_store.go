package store

import (
	"context"
	"log"

	"booking_service/domain"
	"booking_service/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const postsCollection = "posts"

type PostMongoDBStore struct {
	posts  *mongo.Collection
	tracer trace.Tracer
}

func NewPostMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.PostStore {
	posts := client.Database(DATABASE).Collection(postsCollection)
	return &PostMongoDBStore{
		posts:  posts,
		tracer: tracer,
	}
}

func (store *PostMongoDBStore) Insert(ctx context.Context, post *domain.Post) error {
	ctx, span := store.tracer.Start(ctx, "PostMongoDBStore.Insert")
	defer span.End()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}

	_, err := store.posts.InsertOne(ctx, post)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (store *PostMongoDBStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	ctx, span := store.tracer.Start(ctx, "PostMongoDBStore.GetByID")
	defer span.End()

	result := store.posts.FindOne(ctx, bson.M{"_id": id})

	var post domain.Post
	if err := result.Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrNotFound
		}
		log.Println("Error decoding post:", err)
		return nil, err
	}
	return &post, nil
}

func (store *PostMongoDBStore) GetByItem(ctx context.Context, itemID primitive.ObjectID) ([]*domain.Post, error) {
	ctx, span := store.tracer.Start(ctx, "PostMongoDBStore.GetByItem")
	defer span.End()

	// newest first, it is a feed
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := store.posts.Find(ctx, bson.M{"item": itemID}, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []*domain.Post
	for cursor.Next(ctx) {
		var post domain.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, cursor.Err()
}

func (store *PostMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "PostMongoDBStore.Delete")
	defer span.End()

	result, err := store.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}
