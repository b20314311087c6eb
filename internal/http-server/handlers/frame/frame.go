package frame

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"zoundz/internal/frames"
	"zoundz/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const maxBodySize = 64 << 10

type Responder interface {
	Respond(ctx context.Context, route frames.Route, auctionId string, body []byte) frames.Result
}

func NewBid(log *slog.Logger, responder Responder) http.HandlerFunc {
	return newHandler(log, responder, frames.RouteBid, "handlers.frame.NewBid")
}

func NewConfirm(log *slog.Logger, responder Responder) http.HandlerFunc {
	return newHandler(log, responder, frames.RouteConfirm, "handlers.frame.NewConfirm")
}

func newHandler(log *slog.Logger, responder Responder, route frames.Route, op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		auctionId := chi.URLParam(r, "id")

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			// An unreadable body fails to decode in the responder and ends as
			// the internal error document.
			log.Error("reading request body", sl.Err(err))
			body = nil
		}

		res := responder.Respond(r.Context(), route, auctionId, body)

		render.Status(r, res.Status)
		render.JSON(w, r, res.Document)
	}
}
