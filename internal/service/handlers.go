package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/karkkilista/internal/api"
	"github.com/mmynk/karkkilista/internal/auth"
	"github.com/mmynk/karkkilista/internal/middleware"
)

// GuardedProcedures are the calls that need a valid bearer token.
var GuardedProcedures = []string{
	api.GetCurrentUserProcedure,
	api.AddItemProcedure,
	api.RemoveItemProcedure,
}

// Handlers builds the connect handlers of both services, keyed by mount
// path. Every call gets the identity of a valid token if one is sent; the
// GuardedProcedures reject calls without one.
func Handlers(authSvc *AuthService, listSvc *ListService, jwtManager *auth.JWTManager) map[string]http.Handler {
	interceptors := connect.WithInterceptors(
		middleware.OptionalAuth(jwtManager),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(jwtManager, GuardedProcedures...),
	)

	authPath, authHandler := api.NewAuthServiceHandler(authSvc, interceptors)
	listPath, listHandler := api.NewListServiceHandler(listSvc, interceptors)

	return map[string]http.Handler{
		authPath: authHandler,
		listPath: listHandler,
	}
}
