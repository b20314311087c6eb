package frame

import (
	"github.com/go-playground/validator/v10"
)

const (
	Version = "vNext"

	ActionPost = "post"
	ActionLink = "link"

	AspectWide   = "1.91:1"
	AspectSquare = "1:1"

	MaxButtons = 4
)

var validate = validator.New()

// Response is the document returned by every frame route.
type Response struct {
	Frames []Frame `json:"frames" validate:"len=1,dive"`
}

type Frame struct {
	Version     string   `json:"version" validate:"eq=vNext"`
	Image       string   `json:"image" validate:"required,url"`
	AspectRatio string   `json:"aspectRatio,omitempty" validate:"omitempty,oneof=1.91:1 1:1"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Buttons     []Button `json:"buttons,omitempty" validate:"max=4,dive"`
	Input       *Input   `json:"input,omitempty"`
	PostUrl     string   `json:"postUrl,omitempty" validate:"omitempty,url"`
}

type Button struct {
	Label  string `json:"label" validate:"required"`
	Action string `json:"action" validate:"oneof=post link"`
	Target string `json:"target,omitempty" validate:"omitempty,url"`
}

type Input struct {
	Text        string `json:"text" validate:"required"`
	Placeholder string `json:"placeholder,omitempty"`
}

func Single(f Frame) Response {
	return Response{Frames: []Frame{f}}
}

func (r Response) Validate() error {
	return validate.Struct(r)
}

// Action is the part of an Envelope the responder reads. Every other field is
// left to the validation service, so its type does not matter here.
type Action struct {
	UntrustedData struct {
		InputText string `json:"inputText"`
	} `json:"untrustedData"`
}

// Envelope is the signed action posted by a Farcaster client. Clients build
// it; the server only decodes an Action out of the same body.
type Envelope struct {
	UntrustedData UntrustedData `json:"untrustedData"`
	TrustedData   TrustedData   `json:"trustedData"`
}

type UntrustedData struct {
	Fid         int64   `json:"fid"`
	Url         string  `json:"url"`
	MessageHash string  `json:"messageHash"`
	Timestamp   int64   `json:"timestamp"`
	Network     int     `json:"network"`
	ButtonIndex int     `json:"buttonIndex"`
	InputText   string  `json:"inputText,omitempty"`
	CastId      *CastId `json:"castId,omitempty"`
}

type CastId struct {
	Fid  int64  `json:"fid"`
	Hash string `json:"hash"`
}

type TrustedData struct {
	MessageBytes string `json:"messageBytes"`
}

// Validation is the verdict of the external frame validation service.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
