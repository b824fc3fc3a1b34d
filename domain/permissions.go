package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Permission predicates. Pure functions over already-loaded documents;
// callers translate a false result into a Forbidden error.

// IsItemManager reports whether the user is in the item's manager set.
func IsItemManager(item *Item, userID primitive.ObjectID) bool {
	for _, id := range item.Managers {
		if id == userID {
			return true
		}
	}
	return false
}

// CanUpdateBooking allows the booking's requester and the item's managers.
func CanUpdateBooking(booking *Booking, item *Item, actorID primitive.ObjectID) bool {
	return booking.User == actorID || IsItemManager(item, actorID)
}

// CanEditPost allows the post's author and the item's managers.
func CanEditPost(post *Post, item *Item, actorID primitive.ObjectID) bool {
	return post.Author == actorID || IsItemManager(item, actorID)
}

// CanUnregisterUser allows a user to remove themselves and managers to
// remove anyone, except that the item's owner can never be unregistered.
func CanUnregisterUser(item *Item, targetUserID, actorID primitive.ObjectID) bool {
	if targetUserID == item.Owner {
		return false
	}
	return targetUserID == actorID || IsItemManager(item, actorID)
}

// CanInvite allows the item's managers to grant access to new users.
func CanInvite(item *Item, actorID primitive.ObjectID) bool {
	return IsItemManager(item, actorID)
}

// CanAdministerUsers allows platform admins to update and remove arbitrary
// users.
func CanAdministerUsers(actor *User) bool {
	return actor.IsAdmin
}
