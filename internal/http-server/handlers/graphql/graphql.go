package graphql

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"zoundz/internal/lib/errors"
	"zoundz/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const maxBodySize = 1 << 20

type Forwarder interface {
	Forward(ctx context.Context, body []byte) (status int, payload []byte, err error)
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// NewProxy passes GraphQL requests through to the subgraph gateway and
// returns the upstream answer as is.
func NewProxy(log *slog.Logger, forwarder Forwarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.graphql.NewProxy"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		setCORS(w)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			log.Error("reading request body", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, errors.NewHttpError("Internal Server Error"))
			return
		}

		status, payload, err := forwarder.Forward(r.Context(), body)
		if err != nil {
			log.Error("forwarding graphql request", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, errors.NewHttpError("Internal Server Error"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if _, err := w.Write(payload); err != nil {
			log.Error("writing graphql response", sl.Err(err))
		}
	}
}

func NewOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
