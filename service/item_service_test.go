package application

import (
	"context"
	"testing"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestItemService(t *testing.T, items *fakeItemStore, users *fakeUserStore) *ItemService {
	t.Helper()
	return NewItemService(items, users, testLogger(), trace.NewNoopTracerProvider().Tracer("test"))
}

func TestItemCreate(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	item := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, item))

	assert.Equal(t, "lake-house", item.Slug)
	assert.Equal(t, owner.ID, item.Owner)
	assert.Equal(t, []string{}, item.Images)
	require.Len(t, item.Managers, 1)
	assert.Equal(t, owner.ID, item.Managers[0])
	assert.True(t, owner.HasItem(item.ID), "item appears in the owner's access list")
}

func TestItemCreate_EmptyName(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	err := service.Create(context.Background(), owner, &domain.Item{})
	validation, ok := err.(*errors.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "name", validation.Errors[0].Path)
}

func TestItemCreate_SlugSequence(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	var slugs []string
	for i := 0; i < 3; i++ {
		item := &domain.Item{Name: "Lake House"}
		require.NoError(t, service.Create(context.Background(), owner, item))
		slugs = append(slugs, item.Slug)
	}

	assert.Equal(t, []string{"lake-house", "lake-house-1", "lake-house-2"}, slugs)
}

func TestItemCreate_SlugGapIsNotReused(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	first := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, first))
	second := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, second))
	third := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, third))

	// Deleting lake-house-1 must not free its suffix.
	require.NoError(t, service.Delete(context.Background(), second))

	fourth := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, fourth))
	assert.Equal(t, "lake-house-3", fourth.Slug)
}

func TestItemCreate_UnrelatedSlugDoesNotCollide(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	// "lake-house-annex" shares the prefix but not the base slug.
	annex := &domain.Item{Name: "Lake House Annex"}
	require.NoError(t, service.Create(context.Background(), owner, annex))

	item := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, item))
	assert.Equal(t, "lake-house", item.Slug)
}

func TestItemUpdate_ImmutableFieldsSurvive(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	item := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, item))

	description := "A house by the lake"
	city := "Novi Sad"
	require.NoError(t, service.Update(context.Background(), item, ItemPatch{
		Description: &description,
		Address:     &domain.Address{City: &city},
	}))

	assert.Equal(t, "Lake House", item.Name)
	assert.Equal(t, "lake-house", item.Slug)
	assert.Equal(t, "A house by the lake", item.Description)
	require.NotNil(t, item.Address.City)
	assert.Equal(t, "Novi Sad", *item.Address.City)
}

func TestItemInfoLifecycle(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	item := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, item))

	info, err := service.AddInfo(context.Background(), item, domain.Info{Title: "Rules", Message: "No smoking"})
	require.NoError(t, err)
	require.False(t, info.ID.IsZero())

	updated := domain.Info{Title: "House rules", Message: "No smoking indoors"}
	require.NoError(t, service.UpdateInfo(context.Background(), item, info.ID, updated))
	assert.Equal(t, "House rules", item.Infos[0].Title)
	assert.Equal(t, info.ID, item.Infos[0].ID, "id survives the update")

	require.NoError(t, service.RemoveInfo(context.Background(), item, info.ID))
	assert.Empty(t, item.Infos)

	assert.Equal(t, errors.ErrNotFound, service.RemoveInfo(context.Background(), item, info.ID))
}

func TestItemPlaceValidation(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestItemService(t, items, users)
	owner := storedUser(t, users)

	item := &domain.Item{Name: "Lake House"}
	require.NoError(t, service.Create(context.Background(), owner, item))

	_, err := service.AddPlace(context.Background(), item, domain.Place{Name: "Sauna"})
	validation, ok := err.(*errors.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "description", validation.Errors[0].Path)
}
