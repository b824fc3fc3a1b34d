package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testItem(owner primitive.ObjectID, managers ...primitive.ObjectID) *Item {
	return &Item{
		ID:       primitive.NewObjectID(),
		Owner:    owner,
		Managers: append([]primitive.ObjectID{owner}, managers...),
	}
}

func TestIsItemManager(t *testing.T) {
	owner := primitive.NewObjectID()
	manager := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	item := testItem(owner, manager)

	assert.True(t, IsItemManager(item, owner))
	assert.True(t, IsItemManager(item, manager))
	assert.False(t, IsItemManager(item, stranger))
}

func TestCanUpdateBooking(t *testing.T) {
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	item := testItem(owner)
	booking := &Booking{ID: primitive.NewObjectID(), Item: item.ID, User: requester}

	assert.True(t, CanUpdateBooking(booking, item, requester), "requester may update")
	assert.True(t, CanUpdateBooking(booking, item, owner), "manager may update")
	assert.False(t, CanUpdateBooking(booking, item, stranger))
}

func TestCanEditPost(t *testing.T) {
	owner := primitive.NewObjectID()
	author := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	item := testItem(owner)
	post := &Post{ID: primitive.NewObjectID(), Item: item.ID, Author: author}

	assert.True(t, CanEditPost(post, item, author))
	assert.True(t, CanEditPost(post, item, owner))
	assert.False(t, CanEditPost(post, item, stranger))
}

func TestCanUnregisterUser(t *testing.T) {
	owner := primitive.NewObjectID()
	manager := primitive.NewObjectID()
	member := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	item := testItem(owner, manager)

	assert.True(t, CanUnregisterUser(item, member, member), "self-removal")
	assert.True(t, CanUnregisterUser(item, member, manager), "manager removes member")
	assert.True(t, CanUnregisterUser(item, manager, owner), "manager removes manager")
	assert.False(t, CanUnregisterUser(item, member, stranger))
}

func TestCanUnregisterUser_OwnerIsImmovable(t *testing.T) {
	owner := primitive.NewObjectID()
	manager := primitive.NewObjectID()
	item := testItem(owner, manager)

	assert.False(t, CanUnregisterUser(item, owner, owner), "not even by themselves")
	assert.False(t, CanUnregisterUser(item, owner, manager))
}

func TestCanInvite(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	item := testItem(owner)

	assert.True(t, CanInvite(item, owner))
	assert.False(t, CanInvite(item, stranger))
}

func TestCanAdministerUsers(t *testing.T) {
	assert.True(t, CanAdministerUsers(&User{IsAdmin: true}))
	assert.False(t, CanAdministerUsers(&User{}))
}
