// Package caption generates text captions for uploaded images using the
// configured multimodal chat model. The caption is what gets embedded and
// indexed, so it should describe the image content rather than interpret it.
package caption

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/askdocs/askdocs-go/internal/errs"
)

// captionPrompt asks for a dense, factual description suitable for retrieval.
const captionPrompt = `Describe this image in 2-4 sentences. Mention any visible text, ` +
	`diagrams, charts, or notable objects. The description will be used for search, ` +
	`so prefer concrete nouns over interpretation.`

// imageMIMETypes maps allowed image extensions to their data-URL MIME types.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// SupportedImage reports whether the filename has an allowed image extension.
func SupportedImage(filename string) bool {
	_, ok := imageMIMETypes[strings.ToLower(path.Ext(filename))]
	return ok
}

// Generator is the slice of the eino chat-model surface the captioner needs.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Captioner produces captions for image bytes.
// It is safe for concurrent use.
type Captioner struct {
	generator Generator
}

// New constructs a Captioner around the given multimodal chat model.
func New(generator Generator) (*Captioner, error) {
	if generator == nil {
		return nil, fmt.Errorf("caption: generator must not be nil")
	}
	return &Captioner{generator: generator}, nil
}

// Caption sends the image inline as a base64 data URL together with the
// caption prompt and returns the model's description. Unsupported extensions
// are rejected before any provider call.
func (c *Captioner) Caption(ctx context.Context, data []byte, filename string) (string, error) {
	mime, ok := imageMIMETypes[strings.ToLower(path.Ext(filename))]
	if !ok {
		return "", errs.NewUnsupportedFormat(path.Ext(filename))
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	messages := []*schema.Message{
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL: dataURL,
					},
				},
				{
					Type: schema.ChatMessagePartTypeText,
					Text: captionPrompt,
				},
			},
		},
	}

	msg, err := c.generator.Generate(ctx, messages)
	if err != nil {
		return "", errs.NewProvider("chat model", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", errs.NewProvider("chat model", fmt.Errorf("empty caption for %q", filename))
	}

	return strings.TrimSpace(msg.Content), nil
}
