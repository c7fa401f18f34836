package router

import (
	"net/http"

	authHandler "sosmed/internal/auth"
	authService "sosmed/internal/auth/service"
	postHandler "sosmed/internal/post"
	postService "sosmed/internal/post/service"
	userHandler "sosmed/internal/user"
	userService "sosmed/internal/user/service"
	"sosmed/messaging"
	"sosmed/middleware"
	"sosmed/pkg/monitoring"
	"sosmed/pkg/ratelimit"
	"sosmed/pkg/response"
	"sosmed/pkg/token"
	"sosmed/socket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AccountRepository is everything the account and identity services need
// from the users collection.
type AccountRepository interface {
	userService.UserStore
	authService.AccountStore
}

type Deps struct {
	Accounts       AccountRepository
	Posts          postService.PostStore
	Tokens         *token.Issuer
	Hub            *socket.Hub
	Events         messaging.Publisher
	Limiter        ratelimit.Limiter
	StoreDriver    string
	BcryptCost     int
	AuthRatePerMin int
	CORSOrigin     string
	TrustedProxies []string
}

func Setup(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(monitoring.InstrumentHandler)
	auth := middleware.AuthMiddleware(d.Tokens)

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(d.Hub, w, r, middleware.UserID(r.Context()))
	})
	r.Handle("/ws", auth(wsHandler)).Methods(http.MethodGet)

	// REST API
	authSvc := authService.NewAuthService(d.Accounts, d.Tokens, d.BcryptCost)
	authH := authHandler.NewAuthHandler(authSvc, d.Limiter, d.AuthRatePerMin, d.TrustedProxies)
	r.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)

	userSvc := userService.NewUserService(d.Accounts, d.Tokens, d.Events, d.BcryptCost)
	userH := userHandler.NewUserHandler(userSvc)
	r.HandleFunc("/users", userH.GetAllUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", userH.GetUser).Methods(http.MethodGet)
	r.Handle("/users/{id}", auth(http.HandlerFunc(userH.UpdateUser))).Methods(http.MethodPut)
	r.Handle("/users/{id}", auth(http.HandlerFunc(userH.DeleteUser))).Methods(http.MethodDelete)
	r.Handle("/users/{id}/follow", auth(http.HandlerFunc(userH.FollowUser))).Methods(http.MethodPut)
	r.Handle("/users/{id}/unfollow", auth(http.HandlerFunc(userH.UnfollowUser))).Methods(http.MethodPut)

	postSvc := postService.NewPostService(d.Posts, d.Accounts, d.Events)
	postH := postHandler.NewPostHandler(postSvc)
	r.Handle("/posts", auth(http.HandlerFunc(postH.CreatePost))).Methods(http.MethodPost)
	r.HandleFunc("/posts/timeline/{id}", postH.GetTimelinePosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", postH.GetPost).Methods(http.MethodGet)
	r.Handle("/posts/{id}", auth(http.HandlerFunc(postH.UpdatePost))).Methods(http.MethodPut)
	r.Handle("/posts/{id}", auth(http.HandlerFunc(postH.DeletePost))).Methods(http.MethodDelete)
	r.Handle("/posts/{id}/like", auth(http.HandlerFunc(postH.LikePost))).Methods(http.MethodPut)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"store":       d.StoreDriver,
			"connections": d.Hub.ConnectionCount(),
		})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Message(w, http.StatusNotFound, "Route not found")
	})

	return middleware.CORSMiddleware(d.CORSOrigin)(middleware.RequestLogger(r))
}
