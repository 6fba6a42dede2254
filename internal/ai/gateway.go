package ai

import (
	"context"

	"github.com/rs/zerolog"

	"whale-content-station/internal/model"
)

// ContentResult is the paired output of one content-generation cycle. Both
// fields come from the same cycle so caption and visual stay consistent.
type ContentResult struct {
	Draft       string
	ImagePrompt string
}

// Gateway is the wizard's single surface over every outbound generative
// call. All failures come back as *GatewayError with an operator-readable
// message; nothing else crosses this boundary.
type Gateway interface {
	GenerateDraftAndPrompt(ctx context.Context, rawContent string) (*ContentResult, error)
	RegenerateDraftAndPrompt(ctx context.Context, rawContent string) (*ContentResult, error)
	SynthesizeImage(ctx context.Context, imagePrompt string, assets []model.Asset) (*model.Image, error)
}

// GatewayError is the normalized failure shape for any collaborator call.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string { return e.Message }

func gatewayFail(msg string, err error) *GatewayError {
	if err != nil {
		return &GatewayError{Message: msg + ": " + err.Error()}
	}
	return &GatewayError{Message: msg}
}

type textGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
}

type imageGenerator interface {
	Generate(ctx context.Context, prompt string, refs []model.Asset) (*model.Image, error)
}

// GeminiGateway backs the wizard with the Gemini text and image clients.
type GeminiGateway struct {
	text  textGenerator
	image imageGenerator
	log   zerolog.Logger
}

func NewGeminiGateway(text *TextClient, image *ImageClient, log zerolog.Logger) *GeminiGateway {
	return &GeminiGateway{text: text, image: image, log: log}
}

// Sampling parameters per call, carried over from the page's original
// production settings.
const (
	contentTemperature    = 0.3
	contentMaxTokens      = 10000
	promptTemperature     = 0.5
	promptMaxTokens       = 2000
	regenerateTemperature = 0.7
)

// GenerateDraftAndPrompt runs the caption call and the image-prompt
// derivation call for one cycle. The pair is atomic: if either call fails the
// whole cycle fails and neither output is returned.
func (g *GeminiGateway) GenerateDraftAndPrompt(ctx context.Context, rawContent string) (*ContentResult, error) {
	return g.generate(ctx, rawContent, contentTemperature)
}

// RegenerateDraftAndPrompt repeats the cycle with no memory of the previous
// draft. Sampling runs hotter so a retry is unlikely to land on the same
// output, though that is not guaranteed.
func (g *GeminiGateway) RegenerateDraftAndPrompt(ctx context.Context, rawContent string) (*ContentResult, error) {
	return g.generate(ctx, rawContent, regenerateTemperature)
}

func (g *GeminiGateway) generate(ctx context.Context, rawContent string, temperature float32) (*ContentResult, error) {
	draft, err := g.text.Generate(ctx, BuildContentPrompt(rawContent), temperature, contentMaxTokens)
	if err != nil {
		return nil, gatewayFail("เกิดข้อผิดพลาดในการสร้างเนื้อหา", err)
	}
	imagePrompt, err := g.text.Generate(ctx, BuildImagePromptDerivation(rawContent), promptTemperature, promptMaxTokens)
	if err != nil {
		return nil, gatewayFail("เกิดข้อผิดพลาดในการสร้าง Image Prompt", err)
	}
	return &ContentResult{Draft: draft, ImagePrompt: imagePrompt}, nil
}

// SynthesizeImage wraps the approved prompt with the character-consistency
// rules and sends it with the asset snapshot. An empty snapshot is valid.
func (g *GeminiGateway) SynthesizeImage(ctx context.Context, imagePrompt string, assets []model.Asset) (*model.Image, error) {
	img, err := g.image.Generate(ctx, BuildImageGenerationPrompt(imagePrompt), assets)
	if err != nil {
		return nil, gatewayFail("เกิดข้อผิดพลาดในการสร้างรูปภาพ", err)
	}
	return img, nil
}

var _ Gateway = (*GeminiGateway)(nil)
