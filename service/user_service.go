package application

import (
	"context"
	"fmt"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UserService owns user CRUD and the two-sided User-Item relationship
// mutations (invite, unregister).
type UserService struct {
	users  domain.UserStore
	items  domain.ItemStore
	tokens *TokenService
	mailer Mailer
	appURL string
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewUserService(users domain.UserStore, items domain.ItemStore, tokens *TokenService, mailer Mailer, appURL string, logger *logrus.Logger, tracer trace.Tracer) *UserService {
	return &UserService{
		users:  users,
		items:  items,
		tokens: tokens,
		mailer: mailer,
		appURL: appURL,
		logger: logger,
		tracer: tracer,
	}
}

func (service *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return service.users.GetByID(ctx, id)
}

func (service *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return service.users.GetAll(ctx)
}

// UserPatch carries the updatable user fields. Nil means "leave unchanged".
type UserPatch struct {
	Name         *string
	Email        *string
	Password     *string
	ProfileImage *string
}

func (service *UserService) Update(ctx context.Context, user *domain.User, patch UserPatch) error {
	ctx, span := service.tracer.Start(ctx, "UserService.Update")
	defer span.End()

	if patch.Name != nil && *patch.Name != "" {
		user.Name = *patch.Name
	}
	if patch.Email != nil && *patch.Email != "" {
		user.Email = *patch.Email
	}
	if patch.ProfileImage != nil {
		user.ProfileImage = *patch.ProfileImage
	}
	if patch.Password != nil && *patch.Password != "" {
		if err := user.SetPassword(*patch.Password); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	return service.users.Update(ctx, user)
}

// Delete removes a user account entirely. Admin-only, guarded upstream.
func (service *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "UserService.Delete")
	defer span.End()

	return service.users.Delete(ctx, id)
}

// Invite grants the user with the given email access to the item, creating
// an unregistered placeholder account if no user exists for that email.
// Idempotent: a second call with the same arguments changes nothing and
// sends no mail.
func (service *UserService) Invite(ctx context.Context, item *domain.Item, email string, asManager bool) error {
	ctx, span := service.tracer.Start(ctx, "UserService.Invite")
	defer span.End()

	if email == "" {
		return errors.NewValidationError(errors.Required("email"))
	}

	user, err := service.users.GetByEmail(ctx, email)
	if err == errors.ErrNotFound {
		user = &domain.User{
			Name:  email,
			Email: email,
			Items: []primitive.ObjectID{},
		}
		if err := service.users.Insert(ctx, user); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	} else if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	changed := false

	if !user.HasItem(item.ID) {
		user.Items = append(user.Items, item.ID)
		if err := service.users.Update(ctx, user); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		changed = true
	}

	if asManager && !domain.IsItemManager(item, user.ID) {
		item.Managers = append(item.Managers, user.ID)
		if err := service.items.Update(ctx, item); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		changed = true
	}

	if !changed {
		return nil
	}

	return service.notifyNewAccess(user, item)
}

// notifyNewAccess mails the invited user. Unregistered users get a link to
// complete their registration; registered users get a plain access notice.
func (service *UserService) notifyNewAccess(user *domain.User, item *domain.Item) error {
	if !user.IsRegistered() {
		token, err := service.tokens.IssueActionToken(user, domain.ActionRegister)
		if err != nil {
			return err
		}
		return service.mailer.SendMailCallToAction(
			user.Email,
			"You've been invited to join Private Booking!",
			fmt.Sprintf("<p>You've been given access to <strong>%s</strong>. Complete your registration to get started.</p>", item.Name),
			"Complete registration",
			fmt.Sprintf("%s/register?token=%s", service.appURL, token),
		)
	}

	return service.mailer.SendMailCallToAction(
		user.Email,
		fmt.Sprintf("You've been invited to join %s!", item.Name),
		fmt.Sprintf("<p>You now have access to <strong>%s</strong>.</p>", item.Name),
		"Open "+item.Name,
		fmt.Sprintf("%s/items/%s", service.appURL, item.Slug),
	)
}

// Unregister revokes the target user's access to the item, on both sides of
// the relationship. The two saves are not transactional; a crash in between
// can leave the relationship asymmetric (accepted limitation).
func (service *UserService) Unregister(ctx context.Context, item *domain.Item, target *domain.User) error {
	ctx, span := service.tracer.Start(ctx, "UserService.Unregister")
	defer span.End()

	target.Items = withoutID(target.Items, item.ID)
	if err := service.users.Update(ctx, target); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	item.Managers = withoutID(item.Managers, target.ID)
	if err := service.items.Update(ctx, item); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func withoutID(ids []primitive.ObjectID, remove primitive.ObjectID) []primitive.ObjectID {
	kept := ids[:0]
	for _, id := range ids {
		if id != remove {
			kept = append(kept, id)
		}
	}
	return kept
}
