package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"whale-content-station/internal/model"
)

type fakeText struct {
	outputs []string
	errs    []error
	calls   int
}

func (f *fakeText) Generate(_ context.Context, _ string, _ float32, _ int32) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	out := ""
	if i < len(f.outputs) {
		out = f.outputs[i]
	}
	return out, err
}

type fakeImage struct {
	img  *model.Image
	err  error
	refs []model.Asset
}

func (f *fakeImage) Generate(_ context.Context, _ string, refs []model.Asset) (*model.Image, error) {
	f.refs = refs
	return f.img, f.err
}

func TestGenerateDraftAndPromptAtomic(t *testing.T) {
	tests := []struct {
		name      string
		outputs   []string
		errs      []error
		wantErr   bool
		wantCalls int
	}{
		{"both succeed", []string{"draft 🐳", "whale prompt"}, nil, false, 2},
		{"first fails", nil, []error{errors.New("quota")}, true, 1},
		{"second fails", []string{"draft 🐳", ""}, []error{nil, errors.New("timeout")}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := &fakeText{outputs: tt.outputs, errs: tt.errs}
			gw := &GeminiGateway{text: text, image: &fakeImage{}, log: zerolog.Nop()}
			res, err := gw.GenerateDraftAndPrompt(context.Background(), "raw")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if text.calls != tt.wantCalls {
				t.Fatalf("calls=%d want=%d", text.calls, tt.wantCalls)
			}
			if tt.wantErr {
				var gerr *GatewayError
				if !errors.As(err, &gerr) {
					t.Fatalf("error not normalized: %T", err)
				}
				if res != nil {
					t.Fatalf("partial result leaked: %+v", res)
				}
				return
			}
			if res.Draft != tt.outputs[0] || res.ImagePrompt != tt.outputs[1] {
				t.Fatalf("unexpected result: %+v", res)
			}
		})
	}
}

func TestSynthesizeImagePassesSnapshot(t *testing.T) {
	img := &fakeImage{img: &model.Image{MIME: "image/png", Data: []byte{1}}}
	gw := &GeminiGateway{text: &fakeText{}, image: img, log: zerolog.Nop()}

	assets := []model.Asset{{ID: "a", Data: []byte{1}}, {ID: "b", Data: []byte{2}}}
	out, err := gw.SynthesizeImage(context.Background(), "whale on the beach", assets)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out == nil || len(out.Data) == 0 {
		t.Fatalf("missing image")
	}
	if len(img.refs) != 2 || img.refs[0].ID != "a" || img.refs[1].ID != "b" {
		t.Fatalf("snapshot order lost: %+v", img.refs)
	}
}

func TestSynthesizeImageEmptySnapshot(t *testing.T) {
	img := &fakeImage{img: &model.Image{MIME: "image/png", Data: []byte{1}}}
	gw := &GeminiGateway{text: &fakeText{}, image: img, log: zerolog.Nop()}

	if _, err := gw.SynthesizeImage(context.Background(), "whale", nil); err != nil {
		t.Fatalf("empty reference list must be a valid request, got %v", err)
	}
}

func TestSynthesizeImageNormalizesFailure(t *testing.T) {
	img := &fakeImage{err: errors.New("missing credential")}
	gw := &GeminiGateway{text: &fakeText{}, image: img, log: zerolog.Nop()}

	_, err := gw.SynthesizeImage(context.Background(), "whale", nil)
	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("error not normalized: %T %v", err, err)
	}
	if gerr.Message == "" {
		t.Fatal("empty failure message")
	}
}
