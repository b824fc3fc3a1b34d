package casbinAuthorization

import (
	"net/http"
	"strings"

	application "booking_service/service"

	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"
)

// InitializeCasbinMiddleware builds the route-level RBAC middleware from the
// model and policy files. It enforces on the scope claim of the access
// token; the fine-grained permission predicates still run per route behind
// it.
func InitializeCasbinMiddleware(modelPath, policyPath string, tokens *application.TokenService, logger *logrus.Logger) (func(http.Handler) http.Handler, error) {
	enforcer, err := casbin.NewEnforcerSafe(modelPath, policyPath)
	if err != nil {
		return nil, err
	}
	return CasbinMiddleware(enforcer, tokens, logger), nil
}

func CasbinMiddleware(enforcer *casbin.Enforcer, tokens *application.TokenService, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(writer http.ResponseWriter, req *http.Request) {
			scope, err := extractScope(req, tokens)
			if err != nil {
				logger.Error("Unauthorized access attempt")
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := enforcer.EnforceSafe(scope, req.URL.Path, req.Method)
			if err != nil {
				logger.Error("Error enforcing authorization policy")
				http.Error(writer, "unauthorized user", http.StatusUnauthorized)
				return
			}

			if !allowed {
				logger.Warn("Unauthorized access attempt: forbidden")
				http.Error(writer, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(writer, req)
		}

		return http.HandlerFunc(fn)
	}
}

func extractScope(req *http.Request, tokens *application.TokenService) (string, error) {
	bearer := req.Header.Get("Authorization")
	if bearer == "" {
		return "anonymous", nil
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return "anonymous", nil
	}

	claims, err := tokens.VerifyAccessToken(bearerToken[1])
	if err != nil {
		return "anonymous", nil
	}

	return claims.Scope, nil
}
