package frame

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"zoundz/internal/frames"
	"zoundz/internal/models/frame"
	"zoundz/internal/provider/mock"
)

type validatorFunc func(ctx context.Context, body []byte) (frame.Validation, error)

func (f validatorFunc) Validate(ctx context.Context, body []byte) (frame.Validation, error) {
	return f(ctx, body)
}

func newRouter(t *testing.T, valid bool) http.Handler {
	t.Helper()

	store, err := mock.New()
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validatorFunc(func(context.Context, []byte) (frame.Validation, error) {
		if !valid {
			return frame.Validation{Valid: false, Message: "invalid signature"}, nil
		}
		return frame.Validation{Valid: true}, nil
	})
	docs := frames.NewDocuments(frames.NewLinks("https://zoundz.example"), "https://zoundz.example/default.png")
	responder := frames.NewResponder(log, v, store, docs, frames.WithClock(func() time.Time {
		return time.Unix(1800000000, 0)
	}))

	router := chi.NewRouter()
	router.Post("/frame/{id}/bid", NewBid(log, responder))
	router.Post("/frame/{id}/confirm", NewConfirm(log, responder))
	return router
}

func post(t *testing.T, h http.Handler, path, inputText string) (*httptest.ResponseRecorder, frame.Response) {
	t.Helper()

	body, err := json.Marshal(frame.Envelope{UntrustedData: frame.UntrustedData{InputText: inputText}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	var doc frame.Response
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &doc))
	require.Len(t, doc.Frames, 1)
	return res, doc
}

func TestBidRoute(t *testing.T) {
	t.Parallel()

	res, doc := post(t, newRouter(t, true), "/frame/1/bid", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Header().Get("Content-Type"), "application/json")

	f := doc.Frames[0]
	require.Equal(t, "vNext", f.Version)
	require.Equal(t, "Neon Dreams", f.Title)
	require.Equal(t, "1.100", f.Input.Placeholder)
	require.Equal(t, "https://zoundz.example/frame/1/confirm", f.PostUrl)
}

func TestConfirmRoute(t *testing.T) {
	t.Parallel()

	router := newRouter(t, true)

	res, doc := post(t, router, "/frame/1/confirm", "1.05")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Bid Too Low", doc.Frames[0].Title)
	require.Equal(t, "Minimum bid is 1.100 ETH", doc.Frames[0].Description)

	res, doc = post(t, router, "/frame/1/confirm", "1.2")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Bid Placed: 1.200 ETH", doc.Frames[0].Title)
}

func TestConfirmIdenticalResponses(t *testing.T) {
	t.Parallel()

	router := newRouter(t, true)

	first, _ := post(t, router, "/frame/1/confirm", "1.2")
	second, _ := post(t, router, "/frame/1/confirm", "1.2")
	require.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestEndedAndMissing(t *testing.T) {
	t.Parallel()

	router := newRouter(t, true)

	for _, path := range []string{"/frame/2/bid", "/frame/2/confirm"} {
		res, doc := post(t, router, path, "5")
		require.Equal(t, http.StatusOK, res.Code)
		require.Equal(t, "Auction Ended: Midnight Frequencies of a Forgotten Coastline", doc.Frames[0].Title)
		require.Equal(t, "Final bid: 2.5 ETH", doc.Frames[0].Description)
	}

	for _, path := range []string{"/frame/404/bid", "/frame/404/confirm"} {
		res, doc := post(t, router, path, "5")
		require.Equal(t, http.StatusOK, res.Code)
		require.Equal(t, "Drop Not Found", doc.Frames[0].Title)
	}
}

func TestInvalidRequestStatus(t *testing.T) {
	t.Parallel()

	router := newRouter(t, false)

	for _, path := range []string{"/frame/1/bid", "/frame/1/confirm"} {
		res, doc := post(t, router, path, "1.2")
		require.Equal(t, http.StatusBadRequest, res.Code)
		require.Equal(t, "Invalid Request", doc.Frames[0].Title)
		require.Equal(t, "invalid signature", doc.Frames[0].Description)
	}
}

func TestMalformedBodyStatus(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/frame/1/bid", bytes.NewReader([]byte("not json")))
	res := httptest.NewRecorder()
	newRouter(t, true).ServeHTTP(res, req)

	require.Equal(t, http.StatusInternalServerError, res.Code)

	var doc frame.Response
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &doc))
	require.Equal(t, "Something Went Wrong", doc.Frames[0].Title)
	require.NotContains(t, res.Body.String(), "invalid character")
}
