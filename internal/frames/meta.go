package frames

import (
	"net/url"
	"strconv"

	"zoundz/internal/models/frame"
)

// MetaTag is one <meta property content> pair of a frame embed.
type MetaTag struct {
	Property string
	Content  string
}

var imageSizes = map[string][2]int{
	frame.AspectWide:   {1146, 600},
	frame.AspectSquare: {800, 800},
}

// MetaTags renders the fc:frame and Open Graph tags that let a client embed
// f as the first card of a drop.
func MetaTags(f frame.Frame) []MetaTag {
	aspect := f.AspectRatio
	if _, ok := imageSizes[aspect]; !ok {
		aspect = frame.AspectWide
	}
	image := sizedImage(f.Image, imageSizes[aspect])

	tags := []MetaTag{
		{Property: "fc:frame", Content: frame.Version},
		{Property: "fc:frame:image", Content: image},
		{Property: "fc:frame:image:aspect_ratio", Content: aspect},
	}

	buttons := f.Buttons
	if len(buttons) > frame.MaxButtons {
		buttons = buttons[:frame.MaxButtons]
	}
	for i, b := range buttons {
		tags = append(tags, MetaTag{Property: buttonProperty(i, ""), Content: b.Label})
	}
	for i, b := range buttons {
		if b.Action == frame.ActionLink && b.Target != "" {
			tags = append(tags, MetaTag{Property: buttonProperty(i, ":action"), Content: frame.ActionLink})
		}
	}
	for i, b := range buttons {
		if b.Target != "" {
			tags = append(tags, MetaTag{Property: buttonProperty(i, ":target"), Content: b.Target})
		}
	}

	if f.PostUrl != "" {
		tags = append(tags, MetaTag{Property: "fc:frame:post_url", Content: f.PostUrl})
	}
	if f.Input != nil && f.Input.Text != "" {
		tags = append(tags, MetaTag{Property: "fc:frame:input:text", Content: truncate(f.Input.Text, 50, 47)})
	}

	tags = append(tags,
		MetaTag{Property: "og:image", Content: image},
		MetaTag{Property: "og:title", Content: truncate(f.Title, 70, 67)},
	)
	if f.Description != "" {
		tags = append(tags, MetaTag{Property: "og:description", Content: truncate(f.Description, 200, 197)})
	}
	return tags
}

func buttonProperty(i int, suffix string) string {
	return "fc:frame:button:" + strconv.Itoa(i+1) + suffix
}

// sizedImage adds w/h query parameters unless the URL already carries either.
func sizedImage(raw string, size [2]int) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	q := u.Query()
	if q.Has("w") || q.Has("h") {
		return raw
	}
	q.Set("w", strconv.Itoa(size[0]))
	q.Set("h", strconv.Itoa(size[1]))
	u.RawQuery = q.Encode()
	return u.String()
}
