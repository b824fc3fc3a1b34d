package handlers

import (
	"net/http"

	"booking_service/domain"
	"booking_service/errors"
	application "booking_service/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type AuthHandler struct {
	auth   *application.AuthService
	tokens *application.TokenService
	users  domain.UserStore
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewAuthHandler(auth *application.AuthService, tokens *application.TokenService, users domain.UserStore, logger *logrus.Logger, tracer trace.Tracer) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		tokens: tokens,
		users:  users,
		logger: logger,
		tracer: tracer,
	}
}

// Init wires the session endpoints onto the root router and the token
// endpoints onto the api router.
func (handler *AuthHandler) Init(root *mux.Router, api *mux.Router) {
	root.HandleFunc("/login", handler.Login).Methods(http.MethodPost)
	root.HandleFunc("/logout", handler.Logout).Methods(http.MethodGet)

	api.Handle("/refresh-token",
		chain(handler.RefreshToken,
			RefreshTokenAuth(handler.tokens, handler.users),
		)).Methods(http.MethodPost)

	api.HandleFunc("/request-password-reset", handler.RequestPasswordReset).Methods(http.MethodPost)

	api.Handle("/reset-password",
		chain(handler.ResetPassword,
			ActionTokenAuth(handler.tokens, handler.users, domain.ActionPasswordReset),
		)).Methods(http.MethodPost)

	api.Handle("/complete-registration",
		chain(handler.CompleteRegistration,
			ActionTokenAuth(handler.tokens, handler.users, domain.ActionRegister),
		)).Methods(http.MethodPost)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type refreshResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Login authenticates local credentials, opens a browser session and hands
// out a fresh access/refresh token pair in one response.
func (handler *AuthHandler) Login(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Login")
	defer span.End()

	var body loginRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	user, err := handler.auth.Login(ctx, body.Email, body.Password)
	if err != nil {
		if err == errors.ErrUnauthorized {
			writeMessage(writer, http.StatusUnauthorized, errors.InvalidCredentials)
			return
		}
		writeError(writer, err)
		return
	}

	sessionID, err := handler.auth.CreateSession(ctx, user)
	if err != nil {
		writeError(writer, err)
		return
	}

	accessToken, err := handler.tokens.IssueAccessToken(user)
	if err != nil {
		writeError(writer, err)
		return
	}

	refreshToken, err := handler.tokens.IssueRefreshToken(ctx, user)
	if err != nil {
		writeError(writer, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	jsonResponse(loginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(handler.tokens.AccessLifespan().Seconds()),
	}, writer)
}

// Logout destroys the browser session, if any, and clears the cookie.
func (handler *AuthHandler) Logout(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Logout")
	defer span.End()

	if cookie, err := req.Cookie(SessionCookieName); err == nil {
		if err := handler.auth.DestroySession(ctx, cookie.Value); err != nil && err != errors.ErrNotFound {
			writeError(writer, err)
			return
		}
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeMessage(writer, http.StatusOK, "Logged out")
}

// RefreshToken trades a valid refresh token for a new access token. The
// refresh guard has already matched the token against the persisted hash.
func (handler *AuthHandler) RefreshToken(writer http.ResponseWriter, req *http.Request) {
	_, span := handler.tracer.Start(req.Context(), "AuthHandler.RefreshToken")
	defer span.End()

	accessToken, err := handler.tokens.IssueAccessToken(ActorFromContext(req))
	if err != nil {
		writeError(writer, err)
		return
	}

	jsonResponse(refreshResponse{
		Token:     accessToken,
		ExpiresIn: int64(handler.tokens.AccessLifespan().Seconds()),
	}, writer)
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (handler *AuthHandler) RequestPasswordReset(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.RequestPasswordReset")
	defer span.End()

	var body passwordResetRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	if err := handler.auth.RequestPasswordReset(ctx, body.Email); err != nil {
		writeError(writer, err)
		return
	}

	writeMessage(writer, http.StatusOK, "Password reset mail sent")
}

type setPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// ResetPassword completes the password-reset flow; the action guard has
// already resolved the actor from the single-purpose token.
func (handler *AuthHandler) ResetPassword(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.ResetPassword")
	defer span.End()

	var body setPasswordRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	if err := handler.auth.SetPassword(ctx, ActorFromContext(req), body.Password); err != nil {
		writeError(writer, err)
		return
	}

	writeMessage(writer, http.StatusOK, "Password updated")
}

type completeRegistrationRequest struct {
	Name     string `json:"name"`
	Password string `json:"password" validate:"required"`
}

// CompleteRegistration turns an invited placeholder account into a
// registered one.
func (handler *AuthHandler) CompleteRegistration(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.CompleteRegistration")
	defer span.End()

	var body completeRegistrationRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(writer, err)
		return
	}
	if err := validateBody(body); err != nil {
		writeError(writer, err)
		return
	}

	if err := handler.auth.CompleteRegistration(ctx, ActorFromContext(req), body.Name, body.Password); err != nil {
		writeError(writer, err)
		return
	}

	writeMessage(writer, http.StatusOK, "Registration completed")
}

// chain wraps a handler in the given middleware, first entry outermost.
func chain(handler http.HandlerFunc, middleware ...mux.MiddlewareFunc) http.Handler {
	var wrapped http.Handler = handler
	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i].Middleware(wrapped)
	}
	return wrapped
}
