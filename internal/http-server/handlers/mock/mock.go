package mock

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"zoundz/internal/lib/errors"
	"zoundz/internal/lib/logger/sl"
	"zoundz/internal/models/auction"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type AuctionLister interface {
	Record(id string) (auction.Record, bool)
	Live() []auction.Record
	Past() []auction.Record
	Upcoming() []auction.Record
}

type request struct {
	Query     string `json:"query"`
	Variables struct {
		Id string `json:"id"`
	} `json:"variables"`
}

type response struct {
	Data struct {
		Auctions []auction.Record `json:"auctions"`
	} `json:"data"`
}

// NewAuctions answers the subgraph queries the web client issues from the
// embedded dataset.
func NewAuctions(log *slog.Logger, lister AuctionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.mock.NewAuctions"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("decoding mock query", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, errors.NewHttpError("Internal Server Error"))
			return
		}

		var res response
		switch {
		case strings.Contains(req.Query, "GetLiveAuction"):
			res.Data.Auctions = lister.Live()
		case strings.Contains(req.Query, "GetPastAuctions"):
			res.Data.Auctions = lister.Past()
		case strings.Contains(req.Query, "GetUpcomingAuctions"):
			res.Data.Auctions = lister.Upcoming()
		case strings.Contains(req.Query, "GetAuction"):
			res.Data.Auctions = []auction.Record{}
			if rec, ok := lister.Record(req.Variables.Id); ok {
				res.Data.Auctions = append(res.Data.Auctions, rec)
			}
		default:
			log.Debug("unknown mock query", slog.String("query", req.Query))
			res.Data.Auctions = []auction.Record{}
		}

		render.JSON(w, r, res)
	}
}
