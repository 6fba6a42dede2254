package model

import (
	"encoding/base64"
	"fmt"
)

// Stage is one discrete step of the guided production flow.
type Stage int

const (
	StageInput Stage = iota + 1
	StageReviewDraft
	StageAssetAndImage
	StageFinal
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageReviewDraft:
		return "review_draft"
	case StageAssetAndImage:
		return "asset_and_image"
	case StageFinal:
		return "final"
	}
	return "unknown"
}

// Step returns the 1-based step number shown in the progress bar.
func (s Stage) Step() int {
	return int(s)
}

// Image is a synthesized image held inline.
type Image struct {
	MIME string
	Data []byte
}

// DataURI renders the image as an inline data URI for the front-end.
func (i *Image) DataURI() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	mime := i.MIME
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(i.Data))
}

// Session holds the wizard state for the single live operator session.
type Session struct {
	Stage       Stage
	RawContent  string
	DraftText   string
	ImagePrompt string
	FinalImage  *Image
	Busy        bool
	Notice      string
}

// NewSession returns a session positioned at the input stage with all
// fields empty.
func NewSession() Session {
	return Session{Stage: StageInput}
}
