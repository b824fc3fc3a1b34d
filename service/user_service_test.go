package application

import (
	"context"
	"testing"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

func newTestUserService(t *testing.T, users *fakeUserStore, items *fakeItemStore, mailer *countingMailer) *UserService {
	t.Helper()
	tokens := newTestTokenService(t, testTokenConfig(), users)
	return NewUserService(users, items, tokens, mailer, testAppURL, testLogger(), trace.NewNoopTracerProvider().Tracer("test"))
}

func storedItem(t *testing.T, items *fakeItemStore, owner *domain.User) *domain.Item {
	t.Helper()
	item := &domain.Item{
		Name:     "Lake House",
		Slug:     "lake-house",
		Owner:    owner.ID,
		Managers: []primitive.ObjectID{owner.ID},
	}
	require.NoError(t, items.Insert(context.Background(), item))
	owner.Items = append(owner.Items, item.ID)
	return item
}

func TestInvite_UnregisteredUser(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	mailer := &countingMailer{}
	service := newTestUserService(t, users, items, mailer)
	owner := storedUser(t, users)
	item := storedItem(t, items, owner)

	require.NoError(t, service.Invite(context.Background(), item, "new@example.com", false))

	invited, err := users.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, invited.IsRegistered())
	assert.Equal(t, "new@example.com", invited.Name, "placeholder name is the email")
	assert.True(t, invited.HasItem(item.ID))
	assert.False(t, domain.IsItemManager(item, invited.ID))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "You've been invited to join Private Booking!", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].target, testAppURL+"/register?token=")
}

func TestInvite_RegisteredUser(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	mailer := &countingMailer{}
	service := newTestUserService(t, users, items, mailer)
	owner := storedUser(t, users)
	item := storedItem(t, items, owner)

	guest := &domain.User{Name: "Marko", Email: "marko@example.com"}
	require.NoError(t, guest.SetPassword("secret"))
	require.NoError(t, users.Insert(context.Background(), guest))

	require.NoError(t, service.Invite(context.Background(), item, guest.Email, false))

	assert.True(t, guest.HasItem(item.ID))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "You've been invited to join Lake House!", mailer.sent[0].subject)
}

func TestInvite_AsManager(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	mailer := &countingMailer{}
	service := newTestUserService(t, users, items, mailer)
	owner := storedUser(t, users)
	item := storedItem(t, items, owner)

	guest := &domain.User{Name: "Marko", Email: "marko@example.com"}
	require.NoError(t, guest.SetPassword("secret"))
	require.NoError(t, users.Insert(context.Background(), guest))

	require.NoError(t, service.Invite(context.Background(), item, guest.Email, true))

	assert.True(t, guest.HasItem(item.ID))
	assert.True(t, domain.IsItemManager(item, guest.ID))
}

func TestInvite_Idempotent(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	mailer := &countingMailer{}
	service := newTestUserService(t, users, items, mailer)
	owner := storedUser(t, users)
	item := storedItem(t, items, owner)

	require.NoError(t, service.Invite(context.Background(), item, "new@example.com", true))
	require.Len(t, mailer.sent, 1)

	// Nothing changes on the second call, so no second mail goes out.
	require.NoError(t, service.Invite(context.Background(), item, "new@example.com", true))
	assert.Len(t, mailer.sent, 1)

	invited, err := users.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Len(t, invited.Items, 1)

	count := 0
	for _, id := range item.Managers {
		if id == invited.ID {
			count++
		}
	}
	assert.Equal(t, 1, count, "no duplicate manager entry")
}

func TestInvite_UpgradeToManagerMailsAgain(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	mailer := &countingMailer{}
	service := newTestUserService(t, users, items, mailer)
	owner := storedUser(t, users)
	item := storedItem(t, items, owner)

	require.NoError(t, service.Invite(context.Background(), item, "new@example.com", false))
	require.NoError(t, service.Invite(context.Background(), item, "new@example.com", true))

	assert.Len(t, mailer.sent, 2, "the manager upgrade is a change and is notified")
}

func TestInvite_EmptyEmail(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestUserService(t, users, items, &countingMailer{})
	owner := storedUser(t, users)
	item := storedItem(t, items, owner)

	err := service.Invite(context.Background(), item, "", false)
	validation, ok := err.(*errors.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "email", validation.Errors[0].Path)
}

func TestUnregister_RemovesBothSides(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestUserService(t, users, items, &countingMailer{})
	owner := storedUser(t, users)
	item := storedItem(t, items, owner)

	guest := &domain.User{Name: "Marko", Email: "marko@example.com"}
	require.NoError(t, guest.SetPassword("secret"))
	require.NoError(t, users.Insert(context.Background(), guest))
	require.NoError(t, service.Invite(context.Background(), item, guest.Email, true))

	require.NoError(t, service.Unregister(context.Background(), item, guest))

	assert.False(t, guest.HasItem(item.ID))
	assert.False(t, domain.IsItemManager(item, guest.ID))
	assert.True(t, domain.IsItemManager(item, owner.ID), "owner stays")
}

func TestUpdate_PatchesOnlyGivenFields(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestUserService(t, users, items, &countingMailer{})
	user := storedUser(t, users)

	name := "Ana Renamed"
	require.NoError(t, service.Update(context.Background(), user, UserPatch{Name: &name}))

	assert.Equal(t, "Ana Renamed", user.Name)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, user.VerifyPassword("secret"), "password untouched")
}

func TestUpdate_ChangesPassword(t *testing.T) {
	users := newFakeUserStore()
	items := newFakeItemStore()
	service := newTestUserService(t, users, items, &countingMailer{})
	user := storedUser(t, users)

	password := "a new password"
	require.NoError(t, service.Update(context.Background(), user, UserPatch{Password: &password}))

	assert.True(t, user.VerifyPassword("a new password"))
	assert.False(t, user.VerifyPassword("secret"))
}
