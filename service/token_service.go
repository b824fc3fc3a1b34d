package application

import (
	"context"
	"crypto/rand"
	"time"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/cristalhq/jwt/v4"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TokenConfig carries the signing secret, the audience and the lifespans of
// every token kind. Built once at startup and injected; never read from the
// environment after that.
type TokenConfig struct {
	Secret                string
	AppURL                string
	AccessLifespan        time.Duration
	RefreshLifespan       time.Duration
	RegisterLifespan      time.Duration
	PasswordResetLifespan time.Duration
}

// TokenService mints and validates the three bearer token kinds: short-lived
// access tokens, long-lived rotating refresh tokens and single-purpose
// action tokens. The browser session cookie is handled by AuthService.
type TokenService struct {
	config   TokenConfig
	users    domain.UserStore
	signer   jwt.Signer
	verifier jwt.Verifier
	tracer   trace.Tracer
}

func NewTokenService(config TokenConfig, users domain.UserStore, tracer trace.Tracer) (*TokenService, error) {
	key := []byte(config.Secret)

	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}

	return &TokenService{
		config:   config,
		users:    users,
		signer:   signer,
		verifier: verifier,
		tracer:   tracer,
	}, nil
}

// AccessLifespan reports how long issued access tokens stay valid.
func (service *TokenService) AccessLifespan() time.Duration {
	return service.config.AccessLifespan
}

// IssueAccessToken signs a short-lived token for API calls. The audience is
// the configured application URL; refresh and action tokens carry no
// audience, which is what keeps them out of access-guarded routes.
func (service *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &domain.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			Audience:  jwt.Audience{service.config.AppURL},
			ExpiresAt: jwt.NewNumericDate(now.Add(service.config.AccessLifespan)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:    user.Name,
		Email:   user.Email,
		Picture: user.ProfileImage,
		Scope:   user.Scope(),
	}

	token, err := jwt.NewBuilder(service.signer).Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

// IssueRefreshToken generates a fresh random hash, persists it on the user
// and signs a refresh token embedding it. Because the persisted hash is
// overwritten on every issuance there is a single valid refresh token per
// user at any time; issuing a new one invalidates all previous ones.
func (service *TokenService) IssueRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	ctx, span := service.tracer.Start(ctx, "TokenService.IssueRefreshToken")
	defer span.End()

	hash, err := randomString(64)
	if err != nil {
		return "", err
	}

	user.RefreshHash = hash
	if err := service.users.Update(ctx, user); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	now := time.Now()
	claims := &domain.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.config.RefreshLifespan)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Hash: hash,
	}

	token, err := jwt.NewBuilder(service.signer).Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

// IssueActionToken signs a single-purpose token for the given action,
// either registration completion or password reset.
func (service *TokenService) IssueActionToken(user *domain.User, action string) (string, error) {
	lifespan := service.config.RegisterLifespan
	if action == domain.ActionPasswordReset {
		lifespan = service.config.PasswordResetLifespan
	}

	now := time.Now()
	claims := &domain.ActionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifespan)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Action: action,
	}

	token, err := jwt.NewBuilder(service.signer).Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

// VerifyAccessToken checks signature, expiry and audience. Every failure
// collapses into ErrUnauthorized; callers get no hint which check failed.
func (service *TokenService) VerifyAccessToken(raw string) (*domain.AccessClaims, error) {
	var claims domain.AccessClaims
	if err := jwt.ParseClaims([]byte(raw), service.verifier, &claims); err != nil {
		return nil, errors.ErrUnauthorized
	}
	if !claims.IsValidAt(time.Now()) {
		return nil, errors.ErrUnauthorized
	}
	if !claims.IsForAudience(service.config.AppURL) {
		return nil, errors.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, errors.ErrUnauthorized
	}
	return &claims, nil
}

// ParseRefreshClaims checks signature and expiry of a refresh token and
// returns its claims so the caller can load the subject user. The hash
// match against the persisted value happens in VerifyRefreshToken.
func (service *TokenService) ParseRefreshClaims(raw string) (*domain.RefreshClaims, error) {
	var claims domain.RefreshClaims
	if err := jwt.ParseClaims([]byte(raw), service.verifier, &claims); err != nil {
		return nil, errors.ErrUnauthorized
	}
	if !claims.IsValidAt(time.Now()) {
		return nil, errors.ErrUnauthorized
	}
	if claims.Subject == "" || claims.Hash == "" {
		return nil, errors.ErrUnauthorized
	}
	return &claims, nil
}

// VerifyRefreshToken checks the token against the user's currently
// persisted refresh hash. A stale token fails here even before its expiry,
// since any later issuance overwrote the hash.
func (service *TokenService) VerifyRefreshToken(raw string, user *domain.User) error {
	claims, err := service.ParseRefreshClaims(raw)
	if err != nil {
		return err
	}
	if user.RefreshHash == "" || claims.Hash != user.RefreshHash {
		return errors.ErrUnauthorized
	}
	return nil
}

// VerifyActionToken checks signature, expiry and that the token was issued
// for the expected action.
func (service *TokenService) VerifyActionToken(raw, expectedAction string) (*domain.ActionClaims, error) {
	var claims domain.ActionClaims
	if err := jwt.ParseClaims([]byte(raw), service.verifier, &claims); err != nil {
		return nil, errors.ErrUnauthorized
	}
	if !claims.IsValidAt(time.Now()) {
		return nil, errors.ErrUnauthorized
	}
	if claims.Subject == "" || claims.Action != expectedAction {
		return nil, errors.ErrUnauthorized
	}
	return &claims, nil
}

const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphanumerics[int(b)%len(alphanumerics)]
	}
	return string(buf), nil
}
