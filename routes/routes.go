package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/foundermafstat/mafstat-server/handlers"
	"github.com/foundermafstat/mafstat-server/middleware"
)

// SetupRoutes навешивает все маршруты сервиса на переданный роутер.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	ratingHandler *handlers.RatingHandler,
	gameHandler *handlers.GameHandler,
	clubHandler *handlers.ClubHandler,
	federationHandler *handlers.FederationHandler,
	userHandler *handlers.UserHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Защита API от шквала запросов
	router.Use(httprate.LimitByIP(300, 1*time.Minute))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/ratings", func(r chi.Router) {
		// Публичные маршруты для просмотра рейтингов.
		// Чтение никогда не запускает пересчёт.
		r.Get("/", ratingHandler.ListHandler)
		r.Get("/{ratingID}", ratingHandler.GetByIDHandler)

		// Мутации — только с токеном; владение проверяет сервис.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", ratingHandler.CreateHandler)
			r.Put("/{ratingID}", ratingHandler.UpdateHandler)
			r.Delete("/{ratingID}", ratingHandler.DeleteHandler)

			r.Post("/{ratingID}/games", ratingHandler.AddGamesHandler)
			r.Delete("/{ratingID}/games", ratingHandler.RemoveGameHandler)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Get("/", gameHandler.ListHandler)
		r.Get("/{gameID}", gameHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", gameHandler.CreateHandler)
			r.Patch("/{gameID}/result", gameHandler.SetResultHandler)
			r.Delete("/{gameID}", gameHandler.DeleteHandler)
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.ListHandler)
		r.Get("/{clubID}", clubHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", clubHandler.CreateHandler)
			r.Put("/{clubID}", clubHandler.UpdateHandler)
			r.Delete("/{clubID}", clubHandler.DeleteHandler)
			r.Post("/{clubID}/logo", clubHandler.UploadLogoHandler)
		})
	})

	router.Route("/federations", func(r chi.Router) {
		r.Get("/", federationHandler.ListHandler)
		r.Get("/{federationID}", federationHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", federationHandler.CreateHandler)
			r.Put("/{federationID}", federationHandler.UpdateHandler)
			r.Delete("/{federationID}", federationHandler.DeleteHandler)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.ListHandler)
		r.Get("/{userID}", userHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", userHandler.CreateHandler)
			r.Put("/{userID}", userHandler.UpdateHandler)
			r.Post("/{userID}/avatar", userHandler.UploadAvatarHandler)
		})
	})

	// Подписка на события пересчёта конкретного рейтинга.
	router.Get("/ws/ratings/{ratingID}", webSocketHandler.ServeWs)
}
