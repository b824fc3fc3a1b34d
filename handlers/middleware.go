package handlers

import (
	"context"
	"net/http"
	"strings"

	"booking_service/domain"
	"booking_service/errors"
	application "booking_service/service"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guards compose per route, short-circuiting on the first failure. The
// order is fixed: identity (401) before resource existence (404) before
// permission (403) before validation (422). An actor with no rights to a
// nonexistent resource sees 404, never 403.

type contextKey string

const (
	actorKey      contextKey = "actor"
	itemKey       contextKey = "item"
	bookingKey    contextKey = "booking"
	postKey       contextKey = "post"
	targetUserKey contextKey = "targetUser"
)

const SessionCookieName = "session"

func ActorFromContext(req *http.Request) *domain.User {
	actor, _ := req.Context().Value(actorKey).(*domain.User)
	return actor
}

func ItemFromContext(req *http.Request) *domain.Item {
	item, _ := req.Context().Value(itemKey).(*domain.Item)
	return item
}

func BookingFromContext(req *http.Request) *domain.Booking {
	booking, _ := req.Context().Value(bookingKey).(*domain.Booking)
	return booking
}

func PostFromContext(req *http.Request) *domain.Post {
	post, _ := req.Context().Value(postKey).(*domain.Post)
	return post
}

func TargetUserFromContext(req *http.Request) *domain.User {
	user, _ := req.Context().Value(targetUserKey).(*domain.User)
	return user
}

func extractBearerToken(req *http.Request) (string, error) {
	bearer := req.Header.Get("Authorization")
	if bearer == "" {
		return "", errors.ErrUnauthorized
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return "", errors.ErrUnauthorized
	}

	return bearerToken[1], nil
}

func withActor(req *http.Request, actor *domain.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), actorKey, actor))
}

// AccessTokenAuth resolves the actor from a bearer access token.
func AccessTokenAuth(tokens *application.TokenService, users domain.UserStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			raw, err := extractBearerToken(req)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			actor, err := loadSubject(req.Context(), users, claims.Subject)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(writer, withActor(req, actor))
		})
	}
}

// RefreshTokenAuth resolves the actor from a bearer refresh token. The hash
// claim must match the user's currently persisted refresh hash, so a stale
// token fails even before its expiry.
func RefreshTokenAuth(tokens *application.TokenService, users domain.UserStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			raw, err := extractBearerToken(req)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			claims, err := tokens.ParseRefreshClaims(raw)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			actor, err := loadSubject(req.Context(), users, claims.Subject)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			if err := tokens.VerifyRefreshToken(raw, actor); err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(writer, withActor(req, actor))
		})
	}
}

// ActionTokenAuth resolves the actor from a bearer action token issued for
// the given action. A token for any other action is rejected.
func ActionTokenAuth(tokens *application.TokenService, users domain.UserStore, action string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			raw, err := extractBearerToken(req)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			claims, err := tokens.VerifyActionToken(raw, action)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			actor, err := loadSubject(req.Context(), users, claims.Subject)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(writer, withActor(req, actor))
		})
	}
}

// SessionAuth resolves the actor from the browser session cookie.
func SessionAuth(auth *application.AuthService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			cookie, err := req.Cookie(SessionCookieName)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			actor, err := auth.ResolveSession(req.Context(), cookie.Value)
			if err != nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(writer, withActor(req, actor))
		})
	}
}

func loadSubject(ctx context.Context, users domain.UserStore, subject string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}
	return user, nil
}

// LoadItemBySlug loads the item referenced by the given path parameter into
// the request context.
func LoadItemBySlug(items domain.ItemStore, param string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			slug := mux.Vars(req)[param]

			item, err := items.GetBySlug(req.Context(), slug)
			if err != nil {
				writeError(writer, err)
				return
			}

			ctx := context.WithValue(req.Context(), itemKey, item)
			next.ServeHTTP(writer, req.WithContext(ctx))
		})
	}
}

// LoadBooking loads the booking referenced by the given path parameter. The
// booking must belong to the item already loaded into the context.
func LoadBooking(bookings domain.BookingStore, param string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			id, err := primitive.ObjectIDFromHex(mux.Vars(req)[param])
			if err != nil {
				writeError(writer, errors.ErrNotFound)
				return
			}

			booking, err := bookings.GetByID(req.Context(), id)
			if err != nil {
				writeError(writer, err)
				return
			}

			if item := ItemFromContext(req); item != nil && booking.Item != item.ID {
				writeError(writer, errors.ErrNotFound)
				return
			}

			ctx := context.WithValue(req.Context(), bookingKey, booking)
			next.ServeHTTP(writer, req.WithContext(ctx))
		})
	}
}

// LoadPost loads the post referenced by the given path parameter, scoped to
// the item already loaded into the context.
func LoadPost(posts domain.PostStore, param string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			id, err := primitive.ObjectIDFromHex(mux.Vars(req)[param])
			if err != nil {
				writeError(writer, errors.ErrNotFound)
				return
			}

			post, err := posts.GetByID(req.Context(), id)
			if err != nil {
				writeError(writer, err)
				return
			}

			if item := ItemFromContext(req); item != nil && post.Item != item.ID {
				writeError(writer, errors.ErrNotFound)
				return
			}

			ctx := context.WithValue(req.Context(), postKey, post)
			next.ServeHTTP(writer, req.WithContext(ctx))
		})
	}
}

// LoadTargetUser loads the user referenced by the given path parameter into
// the request context as the target of the operation.
func LoadTargetUser(users domain.UserStore, param string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			id, err := primitive.ObjectIDFromHex(mux.Vars(req)[param])
			if err != nil {
				writeError(writer, errors.ErrNotFound)
				return
			}

			user, err := users.GetByID(req.Context(), id)
			if err != nil {
				writeError(writer, err)
				return
			}

			ctx := context.WithValue(req.Context(), targetUserKey, user)
			next.ServeHTTP(writer, req.WithContext(ctx))
		})
	}
}

// LoadMeAsTargetUser makes the actor the target of the operation.
func LoadMeAsTargetUser() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			actor := ActorFromContext(req)
			if actor == nil {
				writeError(writer, errors.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(req.Context(), targetUserKey, actor)
			next.ServeHTTP(writer, req.WithContext(ctx))
		})
	}
}

// RequireItemManager forbids actors outside the loaded item's manager set.
func RequireItemManager() mux.MiddlewareFunc {
	return requirePermission(func(req *http.Request) bool {
		return domain.IsItemManager(ItemFromContext(req), ActorFromContext(req).ID)
	})
}

// RequireItemAccess allows the item's managers, users holding the item in
// their access list, and admins.
func RequireItemAccess() mux.MiddlewareFunc {
	return requirePermission(func(req *http.Request) bool {
		actor := ActorFromContext(req)
		item := ItemFromContext(req)
		return actor.HasItem(item.ID) || domain.IsItemManager(item, actor.ID) || actor.IsAdmin
	})
}

// RequireBookingEditor allows the booking's requester and the item's
// managers.
func RequireBookingEditor() mux.MiddlewareFunc {
	return requirePermission(func(req *http.Request) bool {
		return domain.CanUpdateBooking(BookingFromContext(req), ItemFromContext(req), ActorFromContext(req).ID)
	})
}

// RequirePostEditor allows the post's author and the item's managers.
func RequirePostEditor() mux.MiddlewareFunc {
	return requirePermission(func(req *http.Request) bool {
		return domain.CanEditPost(PostFromContext(req), ItemFromContext(req), ActorFromContext(req).ID)
	})
}

// RequireUnregisterRights allows self-removal and removal by managers, but
// never removal of the item's owner.
func RequireUnregisterRights() mux.MiddlewareFunc {
	return requirePermission(func(req *http.Request) bool {
		return domain.CanUnregisterUser(ItemFromContext(req), TargetUserFromContext(req).ID, ActorFromContext(req).ID)
	})
}

// RequireAdmin forbids non-admin actors.
func RequireAdmin() mux.MiddlewareFunc {
	return requirePermission(func(req *http.Request) bool {
		return domain.CanAdministerUsers(ActorFromContext(req))
	})
}

func requirePermission(allowed func(req *http.Request) bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			if !allowed(req) {
				writeError(writer, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(writer, req)
		})
	}
}

// MiddlewareContentTypeSet sets the response content type and the common
// security headers for every route.
func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		writer.Header().Add("Content-Type", "application/json")
		writer.Header().Set("X-Content-Type-Options", "nosniff")
		writer.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(writer, req)
	})
}
