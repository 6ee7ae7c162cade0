package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/wavefeed/wavefeed-be/internal/api/handlers"
	"github.com/wavefeed/wavefeed-be/internal/auth"
	"github.com/wavefeed/wavefeed-be/internal/services"
	"github.com/wavefeed/wavefeed-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenIssuer,
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	postService services.PostServiceProvider,
	activityService services.ActivityServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", auth.AuthHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	postHandler := handlers.NewPostHandler(postService)
	activityHandler := handlers.NewActivityHandler(activityService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	protect := tokens.Middleware()

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(protect).Post("/logout", authHandler.Logout)
		})

		r.Route("/posts", func(r chi.Router) {
			// Reads are public
			r.Get("/", postHandler.GetAll)
			r.Get("/{postId}", postHandler.Get)

			// Every mutation passes the authorization gate
			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Post("/", postHandler.Create)
				r.Put("/{postId}", postHandler.Edit)
				r.Delete("/{postId}", postHandler.Delete)
				r.Put("/like/{postId}", postHandler.Like)
				r.Put("/unlike/{postId}", postHandler.Unlike)
				r.Post("/comment/{postId}", postHandler.AddComment)
				r.Delete("/comment/{postId}/{commentId}", postHandler.DeleteComment)
			})
		})

		r.Get("/activity", activityHandler.GetRecent)

		// WebSocket feed update endpoints
		r.Get("/ws/feed", wsHandler.Serve)
		r.Get("/ws/posts/{id}", wsHandler.Serve)
	})

	return r
}
