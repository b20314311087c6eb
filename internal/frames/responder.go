// Package frames turns a Farcaster frame action plus the current auction
// snapshot into the next frame document.
//
// Every request walks the same ordered stages, each terminal on failure:
// decode, validate, load auction, time check, then the route specific checks.
package frames

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"zoundz/internal/lib/eth"
	"zoundz/internal/lib/logger/sl"
	"zoundz/internal/metrics"
	"zoundz/internal/models/auction"
	"zoundz/internal/models/frame"
)

type Route string

const (
	RouteBid     Route = "bid"
	RouteConfirm Route = "confirm"
)

type Validator interface {
	Validate(ctx context.Context, body []byte) (frame.Validation, error)
}

type AuctionProvider interface {
	Auction(ctx context.Context, id string) (auction.Auction, error)
}

// Result is one complete response: HTTP status plus document.
type Result struct {
	Status   int
	Kind     Kind
	Document frame.Response
}

type Responder struct {
	log       *slog.Logger
	validator Validator
	provider  AuctionProvider
	docs      Documents
	now       func() time.Time
	metrics   *metrics.Metrics
}

type Option func(*Responder)

func WithClock(now func() time.Time) Option {
	return func(r *Responder) {
		r.now = now
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Responder) {
		r.metrics = m
	}
}

func NewResponder(log *slog.Logger, validator Validator, provider AuctionProvider, docs Documents, opts ...Option) *Responder {
	r := &Responder{
		log:       log,
		validator: validator,
		provider:  provider,
		docs:      docs,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Responder) Documents() Documents {
	return r.docs
}

// Respond never fails: upstream errors, malformed bodies and panics all end
// as a complete document with the matching status.
func (r *Responder) Respond(ctx context.Context, route Route, auctionId string, body []byte) (res Result) {
	const op = "frames.Respond"

	log := r.log.With(
		slog.String("op", op),
		slog.String("route", string(route)),
		slog.String("auction_id", auctionId),
	)

	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while building frame", slog.Any("panic", p))
			res = r.internal(auctionId)
		}
		if err := res.Document.Validate(); err != nil {
			log.Error("frame document failed validation", sl.Err(err))
			res = r.internal(auctionId)
		}
		r.metrics.ObserveDocument(string(route), string(res.Kind))
		log.Debug("frame emitted", slog.String("kind", string(res.Kind)), slog.Int("status", res.Status))
	}()

	var action frame.Action
	if err := json.Unmarshal(body, &action); err != nil {
		log.Error("decoding frame action", sl.Err(err))
		return r.internal(auctionId)
	}

	verdict, err := r.validator.Validate(ctx, body)
	if err != nil {
		log.Error("frame validation unavailable, rejecting", sl.Err(err))
		return result(http.StatusBadRequest, KindInvalidRequest, r.docs.InvalidRequest(auctionId, ""))
	}
	if !verdict.Valid {
		log.Info("frame action rejected by validator", slog.String("message", verdict.Message))
		return result(http.StatusBadRequest, KindInvalidRequest, r.docs.InvalidRequest(auctionId, verdict.Message))
	}

	a, err := r.provider.Auction(ctx, auctionId)
	if err != nil {
		if !errors.Is(err, auction.ErrNotFound) {
			log.Error("loading auction", sl.Err(err))
		}
		return result(http.StatusOK, KindNotFound, r.docs.NotFound())
	}

	remaining := RemainingMinutes(a.EndTime, r.now())
	if remaining <= 0 {
		return result(http.StatusOK, KindEnded, r.docs.Ended(a))
	}

	switch route {
	case RouteBid:
		return result(http.StatusOK, KindBidPrompt, r.docs.BidPrompt(a, remaining))
	case RouteConfirm:
		return r.confirm(a, action.UntrustedData.InputText)
	default:
		log.Error("unknown frame route")
		return r.internal(auctionId)
	}
}

func (r *Responder) confirm(a auction.Auction, inputText string) Result {
	amount, err := eth.ParseBid(inputText)
	if err != nil {
		return result(http.StatusOK, KindInvalidAmount, r.docs.InvalidAmount(a))
	}

	minBid := eth.MinNextBid(a.HighestBid)
	if amount.LessThan(minBid) {
		return result(http.StatusOK, KindBidTooLow, r.docs.BidTooLow(a, minBid))
	}

	return result(http.StatusOK, KindBidConfirmed, r.docs.BidConfirmed(a, amount))
}

func (r *Responder) internal(auctionId string) Result {
	return result(http.StatusInternalServerError, KindInternalError, r.docs.InternalError(auctionId))
}

func result(status int, kind Kind, doc frame.Response) Result {
	return Result{Status: status, Kind: kind, Document: doc}
}

// RemainingMinutes is max(0, floor((endTime*1000 - now) / 60000)) with now in
// milliseconds. End times too large to express in milliseconds are counted
// in whole seconds instead.
func RemainingMinutes(endTime int64, now time.Time) int64 {
	if endTime > math.MaxInt64/1000 {
		return (endTime - now.Unix()) / 60
	}
	left := endTime*1000 - now.UnixMilli()
	if left <= 0 {
		return 0
	}
	return left / 60000
}
