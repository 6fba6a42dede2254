package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"whale-content-station/internal/ai"
	"whale-content-station/internal/model"
	"whale-content-station/internal/store"
)

var (
	// ErrBusy rejects a trigger that races an outstanding generation call.
	// It represents an operator double-click, not a real failure.
	ErrBusy = errors.New("generation already in progress")

	ErrEmptyRawContent  = errors.New("กรุณากรอกเนื้อหาดิบ (Raw Content)")
	ErrEmptyImagePrompt = errors.New("กรุณาระบุ Image Prompt")
	ErrNoImage          = errors.New("ยังไม่มีภาพที่สร้างเสร็จ")
	ErrWrongStage       = errors.New("action not available at this step")
)

// View is an immutable snapshot of the wizard for the presentation layer.
type View struct {
	Stage           string `json:"stage"`
	Step            int    `json:"step"`
	RawContent      string `json:"rawContent"`
	GeneratedDraft  string `json:"generatedDraft"`
	ImagePrompt     string `json:"imagePrompt"`
	GeneratedImage  string `json:"generatedImage,omitempty"`
	IsProcessing    bool   `json:"isProcessing"`
	Notice          string `json:"notice,omitempty"`
	AssetsLoaded    bool   `json:"assetsLoaded"`
	LoadingProgress string `json:"loadingProgress"`
	AssetCount      int    `json:"assetCount"`
}

// WizardService owns the single live session and drives it through the
// guided flow: input, review draft, asset and image, final. All writes go
// through one mutex; gateway calls run outside the lock.
type WizardService struct {
	mu      sync.Mutex
	session model.Session
	assets  *store.Store
	gateway ai.Gateway
	log     zerolog.Logger
}

func NewWizardService(assets *store.Store, gateway ai.Gateway, log zerolog.Logger) *WizardService {
	return &WizardService{
		session: model.NewSession(),
		assets:  assets,
		gateway: gateway,
		log:     log,
	}
}

// SetRawContent overwrites the operator's raw content. Direct edits never
// touch the stage or the busy flag.
func (s *WizardService) SetRawContent(text string) {
	s.mu.Lock()
	s.session.RawContent = text
	s.mu.Unlock()
}

// SetDraft overwrites the generated caption with an operator edit.
func (s *WizardService) SetDraft(text string) {
	s.mu.Lock()
	s.session.DraftText = text
	s.mu.Unlock()
}

// SetImagePrompt overwrites the image prompt with an operator edit.
func (s *WizardService) SetImagePrompt(text string) {
	s.mu.Lock()
	s.session.ImagePrompt = text
	s.mu.Unlock()
}

// Submit runs the first content-generation cycle and, on success, advances
// from input to review. On failure the session stays where it was with only
// the notice set.
func (s *WizardService) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.session.Busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.session.Stage != model.StageInput {
		s.mu.Unlock()
		return ErrWrongStage
	}
	raw := s.session.RawContent
	if isBlank(raw) {
		s.mu.Unlock()
		return ErrEmptyRawContent
	}
	s.session.Busy = true
	s.session.Notice = ""
	s.mu.Unlock()

	res, err := s.gateway.GenerateDraftAndPrompt(ctx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Busy = false
	if err != nil {
		s.session.Notice = err.Error()
		s.log.Warn().Str("stage", s.session.Stage.String()).Err(err).Msg("content generation failed")
		return nil
	}
	// Fields win over staleness: a completion always lands even if the
	// operator navigated meanwhile. Only the forward transition is gated on
	// still being at input.
	s.session.DraftText = res.Draft
	s.session.ImagePrompt = res.ImagePrompt
	if s.session.Stage == model.StageInput {
		s.session.Stage = model.StageReviewDraft
	}
	return nil
}

// RegenerateContent repeats the cycle in place while reviewing. Both fields
// are overwritten together on success; a failure leaves them untouched.
func (s *WizardService) RegenerateContent(ctx context.Context) error {
	s.mu.Lock()
	if s.session.Busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.session.Stage != model.StageReviewDraft {
		s.mu.Unlock()
		return ErrWrongStage
	}
	raw := s.session.RawContent
	if isBlank(raw) {
		s.mu.Unlock()
		return ErrEmptyRawContent
	}
	s.session.Busy = true
	s.session.Notice = ""
	s.mu.Unlock()

	res, err := s.gateway.RegenerateDraftAndPrompt(ctx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Busy = false
	if err != nil {
		s.session.Notice = err.Error()
		return nil
	}
	s.session.DraftText = res.Draft
	s.session.ImagePrompt = res.ImagePrompt
	return nil
}

// Back navigates one step toward the input stage. Nothing is cleared: going
// back to input keeps the draft for resumed editing, and going back to
// review retains the synthesized image until the asset stage is re-entered.
func (s *WizardService) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.session.Stage {
	case model.StageReviewDraft:
		s.session.Stage = model.StageInput
	case model.StageAssetAndImage:
		s.session.Stage = model.StageReviewDraft
	default:
		return ErrWrongStage
	}
	return nil
}

// ConfirmAssets moves review to the asset stage. Pure navigation.
func (s *WizardService) ConfirmAssets() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Stage != model.StageReviewDraft {
		return ErrWrongStage
	}
	s.session.Stage = model.StageAssetAndImage
	return nil
}

// GenerateImage synthesizes the final image from the current prompt and the
// asset collection as it exists at this instant. The previous image is
// cleared before the call; assets added or removed afterwards do not affect
// the in-flight request.
func (s *WizardService) GenerateImage(ctx context.Context) error {
	s.mu.Lock()
	if s.session.Busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.session.Stage != model.StageAssetAndImage {
		s.mu.Unlock()
		return ErrWrongStage
	}
	prompt := s.session.ImagePrompt
	if isBlank(prompt) {
		s.mu.Unlock()
		return ErrEmptyImagePrompt
	}
	s.session.Busy = true
	s.session.Notice = ""
	s.session.FinalImage = nil
	s.mu.Unlock()

	snapshot := s.assets.Snapshot()
	img, err := s.gateway.SynthesizeImage(ctx, prompt, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Busy = false
	if err != nil {
		s.session.Notice = err.Error()
		return nil
	}
	s.session.FinalImage = img
	return nil
}

// Finalize accepts the synthesized image and moves to the final stage.
func (s *WizardService) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Stage != model.StageAssetAndImage {
		return ErrWrongStage
	}
	if s.session.FinalImage == nil {
		return ErrNoImage
	}
	s.session.Stage = model.StageFinal
	return nil
}

// Reset starts a fresh session. Reference assets survive a reset; only the
// session fields are cleared.
func (s *WizardService) Reset() {
	s.mu.Lock()
	s.session = model.NewSession()
	s.mu.Unlock()
}

// FinalImage returns the current synthesized image, if any.
func (s *WizardService) FinalImage() *model.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.FinalImage
}

// Draft returns the current caption text.
func (s *WizardService) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.DraftText
}

// View snapshots the session for rendering.
func (s *WizardService) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Stage:           s.session.Stage.String(),
		Step:            s.session.Stage.Step(),
		RawContent:      s.session.RawContent,
		GeneratedDraft:  s.session.DraftText,
		ImagePrompt:     s.session.ImagePrompt,
		GeneratedImage:  s.session.FinalImage.DataURI(),
		IsProcessing:    s.session.Busy,
		Notice:          s.session.Notice,
		AssetsLoaded:    s.assets.Loaded(),
		LoadingProgress: s.assets.Progress(),
		AssetCount:      s.assets.Count(),
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
