package store

import (
	"context"
	"log"
	"regexp"

	"booking_service/domain"
	"booking_service/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const itemsCollection = "items"

type ItemMongoDBStore struct {
	items  *mongo.Collection
	tracer trace.Tracer
}

func NewItemMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.ItemStore {
	items := client.Database(DATABASE).Collection(itemsCollection)

	// slug uniqueness is co-enforced at the storage layer to narrow the
	// allocation race window
	_, err := items.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("error creating unique slug index: %s", err)
	}

	return &ItemMongoDBStore{
		items:  items,
		tracer: tracer,
	}
}

func (store *ItemMongoDBStore) Insert(ctx context.Context, item *domain.Item) error {
	ctx, span := store.tracer.Start(ctx, "ItemMongoDBStore.Insert")
	defer span.End()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}

	_, err := store.items.InsertOne(ctx, item)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if mongo.IsDuplicateKeyError(err) {
			return errors.NewValidationError(errors.Unique("slug"))
		}
		return err
	}
	return nil
}

func (store *ItemMongoDBStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Item, error) {
	ctx, span := store.tracer.Start(ctx, "ItemMongoDBStore.GetByID")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *ItemMongoDBStore) GetBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	ctx, span := store.tracer.Start(ctx, "ItemMongoDBStore.GetBySlug")
	defer span.End()

	return store.filterOne(ctx, bson.M{"slug": slug})
}

func (store *ItemMongoDBStore) GetAll(ctx context.Context) ([]*domain.Item, error) {
	ctx, span := store.tracer.Start(ctx, "ItemMongoDBStore.GetAll")
	defer span.End()

	return store.filter(ctx, bson.M{})
}

func (store *ItemMongoDBStore) GetSlugs(ctx context.Context, baseSlug string) ([]string, error) {
	ctx, span := store.tracer.Start(ctx, "ItemMongoDBStore.GetSlugs")
	defer span.End()

	filter := bson.M{"slug": bson.M{
		"$regex": "^" + regexp.QuoteMeta(baseSlug) + "(-[0-9]+)?$",
	}}

	cursor, err := store.items.Find(ctx, filter, options.Find().SetProjection(bson.M{"slug": 1}))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer cursor.Close(ctx)

	var slugs []string
	for cursor.Next(ctx) {
		var doc struct {
			Slug string `bson:"slug"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		slugs = append(slugs, doc.Slug)
	}
	return slugs, cursor.Err()
}

func (store *ItemMongoDBStore) Update(ctx context.Context, item *domain.Item) error {
	ctx, span := store.tracer.Start(ctx, "ItemMongoDBStore.Update")
	defer span.End()

	result, err := store.items.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (store *ItemMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "ItemMongoDBStore.Delete")
	defer span.End()

	result, err := store.items.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (store *ItemMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Item, error) {
	cursor, err := store.items.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeItems(ctx, cursor)
}

func (store *ItemMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Item, error) {
	result := store.items.FindOne(ctx, filter)

	var item domain.Item
	if err := result.Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrNotFound
		}
		log.Println("Error decoding item:", err)
		return nil, err
	}

	return &item, nil
}

func decodeItems(ctx context.Context, cursor *mongo.Cursor) (items []*domain.Item, err error) {
	for cursor.Next(ctx) {
		var item domain.Item
		err = cursor.Decode(&item)
		if err != nil {
			return
		}
		items = append(items, &item)
	}
	err = cursor.Err()
	return
}
