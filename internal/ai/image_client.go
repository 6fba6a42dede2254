package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"whale-content-station/internal/model"
)

// ImageClientOptions configures the Gemini image client. BaseURL and
// HTTPClient exist mainly for tests.
type ImageClientOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// ImageClient calls the Gemini image model over REST. The image endpoint is
// invoked directly because image output goes through the same generateContent
// surface but returns inlineData parts rather than text.
type ImageClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewImageClient(opts ImageClientOptions) (*ImageClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 55 * time.Second}
	}
	return &ImageClient{
		apiKey:     opts.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        opts.Logger,
	}, nil
}

type imagePart struct {
	Text       string           `json:"text,omitempty"`
	InlineData *imageInlineData `json:"inline_data,omitempty"`
}

type imageInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type imageResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt plus every reference image as inline data and
// returns the first image found in the response. References are attached in
// the order given; an empty list is a valid request.
func (c *ImageClient) Generate(ctx context.Context, prompt string, refs []model.Asset) (*model.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt is required")
	}

	parts := []imagePart{{Text: prompt}}
	for _, ref := range refs {
		if len(ref.Data) == 0 {
			continue
		}
		mime := ref.MIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, imagePart{InlineData: &imageInlineData{
			MimeType: mime,
			Data:     base64.StdEncoding.EncodeToString(ref.Data),
		}})
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature":        0.6,
			"responseModalities": []string{"IMAGE"},
		},
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.log.Debug().Str("stage", "image_start").Str("model", c.model).Int("refs", len(parts)-1).Msg("image synthesis")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn().Str("stage", "image_fail").Err(err).Msg("image synthesis")
		return nil, err
	}
	defer resp.Body.Close()

	resBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		c.log.Warn().Str("stage", "image_fail").Int("status", resp.StatusCode).Msg("image synthesis")
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(resBody), 500))
	}

	var parsed imageResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, err
	}

	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				img, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err == nil {
					mime := part.InlineData.MimeType
					if mime == "" {
						mime = "image/png"
					}
					c.log.Debug().Str("stage", "image_done").
						Int64("ms", time.Since(start).Milliseconds()).Int("bytes", len(img)).Msg("image synthesis")
					return &model.Image{MIME: mime, Data: img}, nil
				}
			}
		}
	}

	return nil, errors.New("gemini response did not include inlineData image")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
