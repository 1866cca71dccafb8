package wire

import (
	"context"
	"net/http"
	"time"

	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/internal/usecase"
	"car-rental/pkg/database"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired HTTP router.
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes on top of the repositories.
func Wiring(db database.PgxIface, repo *repository.Repository, logger *zap.Logger) *App {
	service := usecase.NewService(repo, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, db, repo, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	db database.PgxIface,
	repo *repository.Repository,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireCar(r, handler.Car, repo, logger)
	wireBooking(r, handler.Booking, repo, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseServiceUnavailable(w, "database unreachable", nil)
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	})

	return r
}
