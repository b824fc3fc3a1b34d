package application

import (
	"context"
	"fmt"
	"time"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sessionLifespan = 24 * time.Hour

// AuthService implements local credential login, the browser session
// surface and the action-token flows (registration completion, password
// reset).
type AuthService struct {
	users    domain.UserStore
	sessions domain.SessionCache
	tokens   *TokenService
	mailer   Mailer
	appURL   string
	logger   *logrus.Logger
	tracer   trace.Tracer
}

func NewAuthService(users domain.UserStore, sessions domain.SessionCache, tokens *TokenService, mailer Mailer, appURL string, logger *logrus.Logger, tracer trace.Tracer) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		mailer:   mailer,
		appURL:   appURL,
		logger:   logger,
		tracer:   tracer,
	}
}

// Login authenticates local credentials. An unknown email and a wrong
// password are indistinguishable to the caller; both are ErrUnauthorized.
func (service *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := service.users.GetByEmail(ctx, email)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, errors.ErrUnauthorized
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !user.VerifyPassword(password) {
		return nil, errors.ErrUnauthorized
	}

	return user, nil
}

// CreateSession opens a browser session for the user and returns its id,
// to be set as a cookie.
func (service *AuthService) CreateSession(ctx context.Context, user *domain.User) (string, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.CreateSession")
	defer span.End()

	sessionID := uuid.New().String()
	if err := service.sessions.PostSession(ctx, sessionID, user.ID.Hex(), sessionLifespan); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return sessionID, nil
}

// ResolveSession returns the user owning the given session, or
// ErrUnauthorized for an unknown or expired session.
func (service *AuthService) ResolveSession(ctx context.Context, sessionID string) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.ResolveSession")
	defer span.End()

	userHex, err := service.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}

	userID, err := primitive.ObjectIDFromHex(userHex)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}

	user, err := service.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}
	return user, nil
}

func (service *AuthService) DestroySession(ctx context.Context, sessionID string) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.DestroySession")
	defer span.End()

	return service.sessions.DelSession(ctx, sessionID)
}

// RequestPasswordReset mails the user a password-reset action link. An
// unknown email gets the same answer as a known one, so the endpoint cannot
// be used to probe which accounts exist; only a mail failure propagates to
// the caller.
func (service *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.RequestPasswordReset")
	defer span.End()

	user, err := service.users.GetByEmail(ctx, email)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	token, err := service.tokens.IssueActionToken(user, domain.ActionPasswordReset)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return service.mailer.SendMailCallToAction(
		user.Email,
		"Reset your password",
		"<p>A password reset was requested for your account. If this wasn't you, you can ignore this mail.</p>",
		"Reset password",
		fmt.Sprintf("%s/reset-password?token=%s", service.appURL, token),
	)
}

// SetPassword hashes and persists a new password for the user. Used by the
// password-reset and registration-completion flows, both guarded by action
// tokens upstream.
func (service *AuthService) SetPassword(ctx context.Context, user *domain.User, password string) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.SetPassword")
	defer span.End()

	if password == "" {
		return errors.NewValidationError(errors.Required("password"))
	}
	if err := user.SetPassword(password); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return service.users.Update(ctx, user)
}

// CompleteRegistration finishes the invite flow: the user picks a name and
// a password, turning the placeholder into a registered account.
func (service *AuthService) CompleteRegistration(ctx context.Context, user *domain.User, name, password string) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.CompleteRegistration")
	defer span.End()

	if name != "" {
		user.Name = name
	}
	return service.SetPassword(ctx, user, password)
}
