package drop

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"zoundz/internal/contract"
	"zoundz/internal/frames"
	"zoundz/internal/lib/errors"
	"zoundz/internal/models/auction"
	"zoundz/internal/provider/mock"
)

const auctionHouse = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := mock.New()
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs := frames.NewDocuments(frames.NewLinks("https://zoundz.example"), "https://zoundz.example/default.png")

	router := chi.NewRouter()
	router.Get("/drop/{id}", NewPage(log, store, docs, "https://zoundz.example/default.png"))
	router.Get("/api/drops/{id}/bid-tx", NewBidTx(log, store, BidTxConfig{
		AuctionHouse: auctionHouse,
		ChainId:      8453,
		Now:          func() time.Time { return time.Unix(1800000000, 0) },
	}))
	return router
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestPage(t *testing.T) {
	t.Parallel()

	res := get(t, newRouter(t), "/drop/1")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Header().Get("Content-Type"), "text/html")

	body := res.Body.String()
	require.Contains(t, body, `<meta property="fc:frame" content="vNext">`)
	require.Contains(t, body, `<meta property="fc:frame:image:aspect_ratio" content="1:1">`)
	require.Contains(t, body, `<meta property="fc:frame:button:1" content="💫 Place Bid">`)
	require.Contains(t, body, `<meta property="fc:frame:post_url" content="https://zoundz.example/frame/1/bid">`)
	require.Contains(t, body, `<meta property="og:title" content="Neon Dreams by 0xSynthMaster">`)
	require.Contains(t, body, `<meta property="og:description" content="Current bid: 1 ETH">`)
}

func TestPageUnknownDrop(t *testing.T) {
	t.Parallel()

	res := get(t, newRouter(t), "/drop/404")
	require.Equal(t, http.StatusOK, res.Code)

	body := res.Body.String()
	require.Contains(t, body, `<meta property="og:title" content="Drop Not Found">`)
	require.Contains(t, body, `<meta property="fc:frame:button:1" content="Browse Other Drops">`)
	require.NotContains(t, body, "fc:frame:post_url")
}

func TestBidTx(t *testing.T) {
	t.Parallel()

	res := get(t, newRouter(t), "/api/drops/1/bid-tx?amount=1.2&comment=gm")
	require.Equal(t, http.StatusOK, res.Code)

	var tx BidTx
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &tx))
	require.Equal(t, auctionHouse, tx.To)
	require.Equal(t, int64(8453), tx.ChainId)
	require.Equal(t, "1200000000000000000", tx.Value)

	data, err := hexutil.Decode(tx.Data)
	require.NoError(t, err)

	tokenId, comment, err := contract.UnpackPlaceBid(data)
	require.NoError(t, err)
	require.Zero(t, tokenId.Cmp(big.NewInt(1)))
	require.Equal(t, "gm", comment)
}

func TestBidTxErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		status  int
		message string
	}{
		{name: "unknown drop", path: "/api/drops/404/bid-tx?amount=5", status: http.StatusNotFound, message: "Drop not found"},
		{name: "ended", path: "/api/drops/2/bid-tx?amount=5", status: http.StatusConflict, message: "Auction has ended"},
		{name: "missing amount", path: "/api/drops/1/bid-tx", status: http.StatusBadRequest, message: "Invalid bid amount"},
		{name: "negative amount", path: "/api/drops/1/bid-tx?amount=-1", status: http.StatusBadRequest, message: "Invalid bid amount"},
		{name: "too low", path: "/api/drops/1/bid-tx?amount=1.05", status: http.StatusBadRequest, message: "Minimum bid is 1.100 ETH"},
	}

	router := newRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := get(t, router, tt.path)
			require.Equal(t, tt.status, res.Code)

			var httpErr errors.HttpError
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &httpErr))
			require.Equal(t, tt.message, httpErr.Error)
		})
	}
}

func TestEmbedFrameUntitled(t *testing.T) {
	t.Parallel()

	docs := frames.NewDocuments(frames.NewLinks("https://zoundz.example"), "https://zoundz.example/default.png")

	f := EmbedFrame(docs, auction.Auction{Id: "9", Artist: "lofi.eth"}, "https://zoundz.example/default.png")
	require.Equal(t, "Drop #9 by lofi.eth", f.Title)
	require.Equal(t, "https://zoundz.example/default.png", f.Image)

	f = EmbedFrame(docs, auction.Auction{Id: "9", Title: "Solar Choir"}, "https://zoundz.example/default.png")
	require.Equal(t, "Solar Choir", f.Title)
	require.Equal(t, "Current bid: 0 ETH", f.Description)
}
