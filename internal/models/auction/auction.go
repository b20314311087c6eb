package auction

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

var ErrNotFound = errors.New("auction not found")

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusStarted   Status = "STARTED"
	StatusEnded     Status = "ENDED"
	StatusCancelled Status = "CANCELLED"
)

// Auction is a read-only snapshot of one timed English auction.
// Amounts are integer wei, times are Unix seconds.
type Auction struct {
	Id            string
	TokenId       *big.Int
	Title         string
	Description   string
	Artist        string
	CoverImage    string
	AudioUrl      string
	StartTime     int64
	EndTime       int64
	HighestBid    *big.Int
	HighestBidder string
	Status        Status
	Bids          []Bid
}

type Bid struct {
	Id        string
	Bidder    string
	Amount    *big.Int
	Timestamp int64
	Comment   string
}

// Record is the subgraph wire shape of an auction: BigInt and timestamp
// fields travel as decimal strings.
type Record struct {
	Id            string      `json:"id"`
	TokenId       string      `json:"tokenId"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Artist        string      `json:"artist"`
	CoverImage    string      `json:"coverImage"`
	AudioUrl      string      `json:"audioUrl,omitempty"`
	StartTime     string      `json:"startTime,omitempty"`
	EndTime       string      `json:"endTime"`
	HighestBid    string      `json:"highestBid"`
	HighestBidder string      `json:"highestBidder,omitempty"`
	Status        Status      `json:"status,omitempty"`
	Bids          []BidRecord `json:"bids"`
}

type BidRecord struct {
	Id        string `json:"id"`
	Bidder    string `json:"bidder"`
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
	Comment   string `json:"comment,omitempty"`
}

func (r Record) Auction() (Auction, error) {
	const op = "models.auction.Record.Auction"

	tokenId, err := parseBig(r.TokenId)
	if err != nil {
		return Auction{}, fmt.Errorf("%s: tokenId: %w", op, err)
	}
	highestBid, err := parseBig(r.HighestBid)
	if err != nil {
		return Auction{}, fmt.Errorf("%s: highestBid: %w", op, err)
	}
	startTime, err := parseInt(r.StartTime)
	if err != nil {
		return Auction{}, fmt.Errorf("%s: startTime: %w", op, err)
	}
	endTime, err := parseInt(r.EndTime)
	if err != nil {
		return Auction{}, fmt.Errorf("%s: endTime: %w", op, err)
	}

	bids := make([]Bid, 0, len(r.Bids))
	for _, b := range r.Bids {
		amount, err := parseBig(b.Amount)
		if err != nil {
			return Auction{}, fmt.Errorf("%s: bid %s amount: %w", op, b.Id, err)
		}
		ts, err := parseInt(b.Timestamp)
		if err != nil {
			return Auction{}, fmt.Errorf("%s: bid %s timestamp: %w", op, b.Id, err)
		}
		bids = append(bids, Bid{
			Id:        b.Id,
			Bidder:    b.Bidder,
			Amount:    amount,
			Timestamp: ts,
			Comment:   b.Comment,
		})
	}

	return Auction{
		Id:            r.Id,
		TokenId:       tokenId,
		Title:         r.Title,
		Description:   r.Description,
		Artist:        r.Artist,
		CoverImage:    r.CoverImage,
		AudioUrl:      r.AudioUrl,
		StartTime:     startTime,
		EndTime:       endTime,
		HighestBid:    highestBid,
		HighestBidder: r.HighestBidder,
		Status:        r.Status,
		Bids:          bids,
	}, nil
}

// Empty strings decode as zero; the subgraph omits unset BigInts.
func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
