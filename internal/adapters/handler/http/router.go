package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Engagement   *EngagementHandler
	Poll         *PollHandler
	Notification *NotificationHandler
	User         *UserHandler
	Auth         *AuthHandler
}

func NewHandler(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/oauth", func(r chi.Router) {
		r.Post("/callback", h.Auth.GoogleCallback)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.With(AuthRequired).Get("/me", h.User.GetMe)

		r.Route("/engagement/{kind}", func(r chi.Router) {
			r.Get("/count", h.Engagement.Count)
			r.With(AuthRequired).Get("/state", h.Engagement.State)
			r.With(AuthRequired).Post("/", h.Engagement.Toggle)
			r.With(AuthRequired).Delete("/", h.Engagement.Deactivate)
		})

		r.Route("/polls", func(r chi.Router) {
			r.With(AuthOptional).Post("/results/batch", h.Poll.GetResultsBatch)

			r.Route("/{articleUID}", func(r chi.Router) {
				r.With(AuthOptional).Get("/results", h.Poll.GetResults)
				r.With(AuthRequired).Post("/votes", h.Poll.CastVote)
				r.With(AuthRequired).Put("/votes", h.Poll.ChangeVote)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(AuthRequired)
			r.Get("/", h.Notification.List)
			r.Post("/fanout", h.Notification.FanOut)
			r.Post("/{id}/read", h.Notification.MarkRead)
		})
	})

	return r
}
