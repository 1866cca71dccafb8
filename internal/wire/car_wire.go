package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCar(
	r chi.Router,
	carHandler *adaptor.CarHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/api/cars/{id}", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", carHandler.GetCar)
		r.Get("/availability", carHandler.GetAvailability)
		r.Get("/quote", carHandler.GetQuote)
		r.Get("/conflicts", carHandler.CheckConflicts)

		// ==================== HOST ROUTES ====================
		// ownership is checked by the service
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthSession(repo.Session, log))

			r.Put("/overrides", carHandler.SetOverride)
			r.Delete("/overrides/{date}", carHandler.DeleteOverride)
		})
	})
}
