package ping

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

type Response struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

func New(log *slog.Logger, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.api.ping.New"

		log := log.With(slog.String("op", op))
		log.Debug("ping request")

		render.JSON(w, r, Response{Status: "ok", Provider: provider})
	}
}
