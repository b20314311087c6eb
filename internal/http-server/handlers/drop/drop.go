package drop

import (
	"context"
	serrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"zoundz/internal/contract"
	"zoundz/internal/frames"
	"zoundz/internal/lib/errors"
	"zoundz/internal/lib/eth"
	"zoundz/internal/lib/logger/sl"
	"zoundz/internal/models/auction"
	"zoundz/internal/models/frame"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type AuctionGetter interface {
	Auction(ctx context.Context, id string) (auction.Auction, error)
}

var page = template.Must(template.New("drop").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- range .Tags}}
<meta property="{{.Property}}" content="{{.Content}}">
{{- end}}
</head>
<body>
<h1>{{.Title}}</h1>
{{- if .Description}}
<p>{{.Description}}</p>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Title       string
	Description string
	Tags        []frames.MetaTag
}

// EmbedFrame is the first card a client shows when a drop link is shared.
func EmbedFrame(docs frames.Documents, a auction.Auction, defaultImage string) frame.Frame {
	image := a.CoverImage
	if image == "" {
		image = defaultImage
	}
	title := frames.DisplayTitle(a)
	if a.Artist != "" {
		title = fmt.Sprintf("%s by %s", title, a.Artist)
	}
	return frame.Frame{
		Version:     frame.Version,
		Image:       image,
		AspectRatio: frame.AspectSquare,
		Title:       title,
		Description: fmt.Sprintf("Current bid: %s ETH", eth.Format(eth.ToDisplay(a.HighestBid))),
		Buttons: []frame.Button{
			{Label: "💫 Place Bid", Action: frame.ActionPost},
		},
		PostUrl: docs.Links().Bid(a.Id),
	}
}

func NewPage(log *slog.Logger, getter AuctionGetter, docs frames.Documents, defaultImage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.drop.NewPage"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var f frame.Frame
		a, err := getter.Auction(r.Context(), id)
		switch {
		case err == nil:
			f = EmbedFrame(docs, a, defaultImage)
		case serrors.Is(err, auction.ErrNotFound):
			f = docs.NotFound().Frames[0]
		default:
			log.Error("loading drop", slog.String("auction_id", id), sl.Err(err))
			f = docs.NotFound().Frames[0]
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := page.Execute(w, pageData{Title: f.Title, Description: f.Description, Tags: frames.MetaTags(f)}); err != nil {
			log.Error("rendering drop page", sl.Err(err))
		}
	}
}

// BidTx carries what a wallet needs to send AuctionHouse.placeBid.
type BidTx struct {
	To      string `json:"to"`
	ChainId int64  `json:"chainId"`
	Value   string `json:"value"`
	Data    string `json:"data"`
}

type BidTxConfig struct {
	AuctionHouse string
	ChainId      int64
	Now          func() time.Time
}

func NewBidTx(log *slog.Logger, getter AuctionGetter, cfg BidTxConfig) http.HandlerFunc {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	to := common.HexToAddress(cfg.AuctionHouse).Hex()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.drop.NewBidTx"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		a, err := getter.Auction(r.Context(), id)
		if err != nil {
			if !serrors.Is(err, auction.ErrNotFound) {
				log.Error("loading drop", slog.String("auction_id", id), sl.Err(err))
			}
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errors.NewHttpError("Drop not found"))
			return
		}

		if frames.RemainingMinutes(a.EndTime, cfg.Now()) <= 0 {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, errors.NewHttpError("Auction has ended"))
			return
		}

		amount, err := eth.ParseBid(r.URL.Query().Get("amount"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errors.NewHttpError("Invalid bid amount"))
			return
		}

		minBid := eth.MinNextBid(a.HighestBid)
		if amount.LessThan(minBid) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errors.NewHttpError(fmt.Sprintf("Minimum bid is %s ETH", eth.Fixed(minBid))))
			return
		}

		data, err := contract.PlaceBidCalldata(a.TokenId, r.URL.Query().Get("comment"))
		if err != nil {
			log.Error("encoding bid", slog.String("auction_id", id), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, errors.NewHttpError("Internal Server Error"))
			return
		}

		render.JSON(w, r, BidTx{
			To:      to,
			ChainId: cfg.ChainId,
			Value:   eth.ToWei(amount).String(),
			Data:    hexutil.Encode(data),
		})
	}
}
