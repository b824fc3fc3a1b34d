package application

import (
	"context"
	"strings"
	"time"

	"booking_service/domain"
	"booking_service/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserStore struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*domain.User{}}
}

func (store *fakeUserStore) Insert(ctx context.Context, user *domain.User) error {
	for _, existing := range store.users {
		if existing.Email == user.Email {
			return errors.NewValidationError(errors.Unique("email"))
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	store.users[user.ID] = user
	return nil
}

func (store *fakeUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := store.users[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return user, nil
}

func (store *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (store *fakeUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	all := make([]*domain.User, 0, len(store.users))
	for _, user := range store.users {
		all = append(all, user)
	}
	return all, nil
}

func (store *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	if _, ok := store.users[user.ID]; !ok {
		return errors.ErrNotFound
	}
	store.users[user.ID] = user
	return nil
}

func (store *fakeUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(store.users, id)
	return nil
}

type fakeItemStore struct {
	items map[primitive.ObjectID]*domain.Item
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[primitive.ObjectID]*domain.Item{}}
}

func (store *fakeItemStore) Insert(ctx context.Context, item *domain.Item) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	store.items[item.ID] = item
	return nil
}

func (store *fakeItemStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Item, error) {
	item, ok := store.items[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return item, nil
}

func (store *fakeItemStore) GetBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	for _, item := range store.items {
		if item.Slug == slug {
			return item, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (store *fakeItemStore) GetAll(ctx context.Context) ([]*domain.Item, error) {
	all := make([]*domain.Item, 0, len(store.items))
	for _, item := range store.items {
		all = append(all, item)
	}
	return all, nil
}

func (store *fakeItemStore) GetSlugs(ctx context.Context, baseSlug string) ([]string, error) {
	var slugs []string
	for _, item := range store.items {
		if item.Slug == baseSlug {
			slugs = append(slugs, item.Slug)
			continue
		}
		suffix, found := strings.CutPrefix(item.Slug, baseSlug+"-")
		if found && isDigits(suffix) {
			slugs = append(slugs, item.Slug)
		}
	}
	return slugs, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (store *fakeItemStore) Update(ctx context.Context, item *domain.Item) error {
	if _, ok := store.items[item.ID]; !ok {
		return errors.ErrNotFound
	}
	store.items[item.ID] = item
	return nil
}

func (store *fakeItemStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(store.items, id)
	return nil
}

type fakeSessionCache struct {
	sessions map[string]string
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{sessions: map[string]string{}}
}

func (cache *fakeSessionCache) PostSession(ctx context.Context, sessionID, userID string, lifespan time.Duration) error {
	cache.sessions[sessionID] = userID
	return nil
}

func (cache *fakeSessionCache) GetSession(ctx context.Context, sessionID string) (string, error) {
	userID, ok := cache.sessions[sessionID]
	if !ok {
		return "", errors.ErrNotFound
	}
	return userID, nil
}

func (cache *fakeSessionCache) DelSession(ctx context.Context, sessionID string) error {
	delete(cache.sessions, sessionID)
	return nil
}

type sentMail struct {
	to      string
	subject string
	action  string
	target  string
}

// countingMailer records sends instead of dialing SMTP.
type countingMailer struct {
	sent []sentMail
}

func (mailer *countingMailer) SendMail(to, subject, htmlBody string) error {
	mailer.sent = append(mailer.sent, sentMail{to: to, subject: subject})
	return nil
}

func (mailer *countingMailer) SendMailCallToAction(to, subject, htmlBody, action, actionTarget string) error {
	mailer.sent = append(mailer.sent, sentMail{to: to, subject: subject, action: action, target: actionTarget})
	return nil
}
