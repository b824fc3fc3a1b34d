package application

import (
	"context"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ItemService struct {
	items  domain.ItemStore
	users  domain.UserStore
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewItemService(items domain.ItemStore, users domain.UserStore, logger *logrus.Logger, tracer trace.Tracer) *ItemService {
	return &ItemService{
		items:  items,
		users:  users,
		logger: logger,
		tracer: tracer,
	}
}

func (service *ItemService) GetAll(ctx context.Context) ([]*domain.Item, error) {
	return service.items.GetAll(ctx)
}

func (service *ItemService) GetBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	return service.items.GetBySlug(ctx, slug)
}

// Create inserts a new item owned and managed by the actor. The slug is
// derived from the name exactly once, here; it never changes afterwards.
func (service *ItemService) Create(ctx context.Context, owner *domain.User, item *domain.Item) error {
	ctx, span := service.tracer.Start(ctx, "ItemService.Create")
	defer span.End()

	if item.Name == "" {
		return errors.NewValidationError(errors.Required("name"))
	}

	baseSlug := domain.Slugify(item.Name)
	slugs, err := service.items.GetSlugs(ctx, baseSlug)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	item.Slug = domain.NextAvailableSlug(baseSlug, slugs)

	item.Owner = owner.ID
	item.Managers = []primitive.ObjectID{owner.ID}
	if item.Images == nil {
		item.Images = []string{}
	}
	if item.Equipments == nil {
		item.Equipments = []string{}
	}
	item.Infos = []domain.Info{}
	item.Places = []domain.Place{}

	if err := service.items.Insert(ctx, item); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if !owner.HasItem(item.ID) {
		owner.Items = append(owner.Items, item.ID)
		if err := service.users.Update(ctx, owner); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	return nil
}

// ItemPatch carries the updatable item fields. Name, slug and owner are
// immutable and deliberately absent.
type ItemPatch struct {
	Description *string
	Address     *domain.Address
	Images      []string
	Equipments  []string
}

func (service *ItemService) Update(ctx context.Context, item *domain.Item, patch ItemPatch) error {
	ctx, span := service.tracer.Start(ctx, "ItemService.Update")
	defer span.End()

	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Address != nil {
		applyAddressPatch(&item.Address, patch.Address)
	}
	if patch.Images != nil {
		item.Images = patch.Images
	}
	if patch.Equipments != nil {
		item.Equipments = patch.Equipments
	}

	return service.items.Update(ctx, item)
}

// applyAddressPatch overlays the non-nil fields of the patch; each address
// field is independently patchable.
func applyAddressPatch(address *domain.Address, patch *domain.Address) {
	if patch.Street != nil {
		address.Street = patch.Street
	}
	if patch.Zip != nil {
		address.Zip = patch.Zip
	}
	if patch.City != nil {
		address.City = patch.City
	}
	if patch.Country != nil {
		address.Country = patch.Country
	}
	if patch.Lat != nil {
		address.Lat = patch.Lat
	}
	if patch.Long != nil {
		address.Long = patch.Long
	}
}

func (service *ItemService) Delete(ctx context.Context, item *domain.Item) error {
	ctx, span := service.tracer.Start(ctx, "ItemService.Delete")
	defer span.End()

	return service.items.Delete(ctx, item.ID)
}

// Infos and places are value entities owned by the item: mutation finds the
// entry by id and persists the whole parent.

func (service *ItemService) AddInfo(ctx context.Context, item *domain.Item, info domain.Info) (*domain.Info, error) {
	ctx, span := service.tracer.Start(ctx, "ItemService.AddInfo")
	defer span.End()

	if err := validateInfo(info); err != nil {
		return nil, err
	}

	info.ID = primitive.NewObjectID()
	item.Infos = append(item.Infos, info)

	if err := service.items.Update(ctx, item); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &item.Infos[len(item.Infos)-1], nil
}

func (service *ItemService) UpdateInfo(ctx context.Context, item *domain.Item, infoID primitive.ObjectID, info domain.Info) error {
	ctx, span := service.tracer.Start(ctx, "ItemService.UpdateInfo")
	defer span.End()

	index := item.InfoIndex(infoID)
	if index < 0 {
		return errors.ErrNotFound
	}
	if err := validateInfo(info); err != nil {
		return err
	}

	info.ID = infoID
	item.Infos[index] = info

	return service.items.Update(ctx, item)
}

func (service *ItemService) RemoveInfo(ctx context.Context, item *domain.Item, infoID primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "ItemService.RemoveInfo")
	defer span.End()

	index := item.InfoIndex(infoID)
	if index < 0 {
		return errors.ErrNotFound
	}
	item.Infos = append(item.Infos[:index], item.Infos[index+1:]...)

	return service.items.Update(ctx, item)
}

func (service *ItemService) AddPlace(ctx context.Context, item *domain.Item, place domain.Place) (*domain.Place, error) {
	ctx, span := service.tracer.Start(ctx, "ItemService.AddPlace")
	defer span.End()

	if err := validatePlace(place); err != nil {
		return nil, err
	}

	place.ID = primitive.NewObjectID()
	item.Places = append(item.Places, place)

	if err := service.items.Update(ctx, item); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &item.Places[len(item.Places)-1], nil
}

func (service *ItemService) UpdatePlace(ctx context.Context, item *domain.Item, placeID primitive.ObjectID, place domain.Place) error {
	ctx, span := service.tracer.Start(ctx, "ItemService.UpdatePlace")
	defer span.End()

	index := item.PlaceIndex(placeID)
	if index < 0 {
		return errors.ErrNotFound
	}
	if err := validatePlace(place); err != nil {
		return err
	}

	place.ID = placeID
	item.Places[index] = place

	return service.items.Update(ctx, item)
}

func (service *ItemService) RemovePlace(ctx context.Context, item *domain.Item, placeID primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "ItemService.RemovePlace")
	defer span.End()

	index := item.PlaceIndex(placeID)
	if index < 0 {
		return errors.ErrNotFound
	}
	item.Places = append(item.Places[:index], item.Places[index+1:]...)

	return service.items.Update(ctx, item)
}

func validateInfo(info domain.Info) error {
	var fields []errors.FieldError
	if info.Title == "" {
		fields = append(fields, errors.Required("title"))
	}
	if info.Message == "" {
		fields = append(fields, errors.Required("message"))
	}
	if len(fields) > 0 {
		return errors.NewValidationError(fields...)
	}
	return nil
}

func validatePlace(place domain.Place) error {
	var fields []errors.FieldError
	if place.Name == "" {
		fields = append(fields, errors.Required("name"))
	}
	if place.Description == "" {
		fields = append(fields, errors.Required("description"))
	}
	if len(fields) > 0 {
		return errors.NewValidationError(fields...)
	}
	return nil
}
