package frames

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"zoundz/internal/lib/eth"
	"zoundz/internal/models/auction"
	"zoundz/internal/models/frame"
)

type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotFound       Kind = "not_found"
	KindEnded          Kind = "auction_ended"
	KindBidPrompt      Kind = "bid_prompt"
	KindInvalidAmount  Kind = "invalid_amount"
	KindBidTooLow      Kind = "bid_too_low"
	KindBidConfirmed   Kind = "bid_confirmed"
	KindInternalError  Kind = "internal_error"
)

const (
	promptTitleMax  = 30
	promptTitleKeep = 27
	ellipsis        = "..."
)

// Links builds the absolute URLs that frame buttons point at.
type Links struct {
	base string
}

func NewLinks(baseURL string) Links {
	return Links{base: strings.TrimRight(baseURL, "/")}
}

func (l Links) Home() string {
	return l.base
}

func (l Links) Bid(id string) string {
	return l.base + "/frame/" + url.PathEscape(id) + "/bid"
}

func (l Links) Confirm(id string) string {
	return l.base + "/frame/" + url.PathEscape(id) + "/confirm"
}

func (l Links) Drop(id string) string {
	return l.base + "/drop/" + url.PathEscape(id)
}

// Documents renders every frame document the responder can emit.
type Documents struct {
	links        Links
	defaultImage string
}

func NewDocuments(links Links, defaultImage string) Documents {
	return Documents{links: links, defaultImage: defaultImage}
}

func (d Documents) Links() Links {
	return d.links
}

func (d Documents) image(a *auction.Auction) string {
	if a != nil && a.CoverImage != "" {
		return a.CoverImage
	}
	return d.defaultImage
}

func (d Documents) single(f frame.Frame) frame.Response {
	f.Version = frame.Version
	if f.AspectRatio == "" {
		f.AspectRatio = frame.AspectWide
	}
	return frame.Single(f)
}

func (d Documents) InvalidRequest(id, message string) frame.Response {
	if message == "" {
		message = "This frame request could not be verified."
	}
	return d.single(frame.Frame{
		Image:       d.defaultImage,
		Title:       "Invalid Request",
		Description: message,
		Buttons: []frame.Button{
			{Label: "Go Back", Action: frame.ActionPost, Target: d.links.Bid(id)},
		},
	})
}

func (d Documents) NotFound() frame.Response {
	return d.single(frame.Frame{
		Image:       d.defaultImage,
		Title:       "Drop Not Found",
		Description: "This drop does not exist or has been removed.",
		Buttons: []frame.Button{
			{Label: "Browse Other Drops", Action: frame.ActionLink, Target: d.links.Home()},
		},
	})
}

func (d Documents) Ended(a auction.Auction) frame.Response {
	return d.single(frame.Frame{
		Image:       d.image(&a),
		Title:       "Auction Ended: " + DisplayTitle(a),
		Description: fmt.Sprintf("Final bid: %s ETH", eth.Format(eth.ToDisplay(a.HighestBid))),
		Buttons: []frame.Button{
			{Label: "View Results", Action: frame.ActionLink, Target: d.links.Drop(a.Id)},
		},
	})
}

func (d Documents) BidPrompt(a auction.Auction, remainingMinutes int64) frame.Response {
	minBid := eth.Fixed(eth.MinNextBid(a.HighestBid))

	return d.single(frame.Frame{
		Image: d.image(&a),
		Title: TruncateTitle(DisplayTitle(a)),
		Description: fmt.Sprintf("Current bid: %s ETH | by %s | %s",
			eth.Format(eth.ToDisplay(a.HighestBid)),
			eth.ShortAddress(a.Artist),
			TimeLeft(remainingMinutes),
		),
		Buttons: []frame.Button{
			{Label: "Place Bid", Action: frame.ActionPost, Target: d.links.Confirm(a.Id)},
			{Label: "View Drop", Action: frame.ActionLink, Target: d.links.Drop(a.Id)},
		},
		Input: &frame.Input{
			Text:        fmt.Sprintf("Enter bid in ETH (min %s)", minBid),
			Placeholder: minBid,
		},
		PostUrl: d.links.Confirm(a.Id),
	})
}

func (d Documents) InvalidAmount(a auction.Auction) frame.Response {
	return d.single(frame.Frame{
		Image:       d.image(&a),
		Title:       "Invalid Bid Amount",
		Description: "Enter a positive amount in ETH.",
		Buttons: []frame.Button{
			{Label: "Try Again", Action: frame.ActionPost, Target: d.links.Bid(a.Id)},
		},
	})
}

func (d Documents) BidTooLow(a auction.Auction, minBid decimal.Decimal) frame.Response {
	return d.single(frame.Frame{
		Image:       d.image(&a),
		Title:       "Bid Too Low",
		Description: fmt.Sprintf("Minimum bid is %s ETH", eth.Fixed(minBid)),
		Buttons: []frame.Button{
			{Label: "Try Again", Action: frame.ActionPost, Target: d.links.Bid(a.Id)},
		},
	})
}

func (d Documents) BidConfirmed(a auction.Auction, amount decimal.Decimal) frame.Response {
	return d.single(frame.Frame{
		Image:       d.image(&a),
		Title:       fmt.Sprintf("Bid Placed: %s ETH", eth.Fixed(amount)),
		Description: "Complete the bid from your connected wallet.",
		Buttons: []frame.Button{
			{Label: "View Drop", Action: frame.ActionLink, Target: d.links.Drop(a.Id)},
			{Label: "New Bid", Action: frame.ActionPost, Target: d.links.Bid(a.Id)},
		},
	})
}

func (d Documents) InternalError(id string) frame.Response {
	return d.single(frame.Frame{
		Image:       d.defaultImage,
		Title:       "Something Went Wrong",
		Description: "Please try again in a moment.",
		Buttons: []frame.Button{
			{Label: "Try Again", Action: frame.ActionPost, Target: d.links.Bid(id)},
		},
	})
}

// DisplayTitle falls back to "Drop #{id}" for untitled drops.
func DisplayTitle(a auction.Auction) string {
	if strings.TrimSpace(a.Title) == "" {
		return "Drop #" + a.Id
	}
	return a.Title
}

// TruncateTitle keeps bid prompt titles short enough for mobile cards.
func TruncateTitle(title string) string {
	return truncate(title, promptTitleMax, promptTitleKeep)
}

func truncate(s string, limit, keep int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:keep]) + ellipsis
}

// TimeLeft renders whole remaining minutes as "1d 2h 5m left", dropping
// leading zero units.
func TimeLeft(minutes int64) string {
	if minutes <= 0 {
		return "0m left"
	}
	days := minutes / (60 * 24)
	hours := (minutes % (60 * 24)) / 60
	mins := minutes % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm left", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm left", hours, mins)
	default:
		return fmt.Sprintf("%dm left", mins)
	}
}
