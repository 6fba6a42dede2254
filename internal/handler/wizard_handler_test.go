package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"whale-content-station/internal/ai"
	"whale-content-station/internal/model"
	"whale-content-station/internal/server"
	"whale-content-station/internal/service"
	"whale-content-station/internal/store"
)

type stubGateway struct {
	result   *ai.ContentResult
	image    *model.Image
	failNext bool
}

func (g *stubGateway) GenerateDraftAndPrompt(ctx context.Context, rawContent string) (*ai.ContentResult, error) {
	if g.failNext {
		return nil, &ai.GatewayError{Message: "เกิดข้อผิดพลาดในการสร้างเนื้อหา"}
	}
	return g.result, nil
}

func (g *stubGateway) RegenerateDraftAndPrompt(ctx context.Context, rawContent string) (*ai.ContentResult, error) {
	return g.GenerateDraftAndPrompt(ctx, rawContent)
}

func (g *stubGateway) SynthesizeImage(ctx context.Context, imagePrompt string, assets []model.Asset) (*model.Image, error) {
	if g.failNext {
		return nil, &ai.GatewayError{Message: "เกิดข้อผิดพลาดในการสร้างภาพ"}
	}
	return g.image, nil
}

type noFetcher struct{}

func (noFetcher) Fetch(ctx context.Context, id string) (*store.Fetched, error) {
	return nil, errors.New("unused")
}

// pngHeader is enough bytes for http.DetectContentType to say image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newTestServer(gw *stubGateway) (*store.Store, http.Handler) {
	log := zerolog.Nop()
	assets := store.New(noFetcher{}, nil, log)
	svc := service.NewWizardService(assets, gw, log)
	return assets, server.New(svc, assets, "", log)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	payload, _ := body["error"].(map[string]any)
	code, _ := payload["code"].(string)
	return code
}

func TestSubmitFlow(t *testing.T) {
	gw := &stubGateway{result: &ai.ContentResult{
		Draft:       "พี่วาฬชวนชิมลาเต้ 🐳",
		ImagePrompt: "whale mascot with latte",
	}}
	_, h := newTestServer(gw)

	rec, view := doJSON(t, h, http.MethodPost, "/api/session/submit", `{"rawContent":"ลาเต้ลด 20%"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if view["stage"] != "review_draft" {
		t.Errorf("stage=%v", view["stage"])
	}
	if view["generatedDraft"] != "พี่วาฬชวนชิมลาเต้ 🐳" {
		t.Errorf("generatedDraft=%v", view["generatedDraft"])
	}
	if view["imagePrompt"] != "whale mascot with latte" {
		t.Errorf("imagePrompt=%v", view["imagePrompt"])
	}
}

func TestSubmitEmptyContentIsBadRequest(t *testing.T) {
	_, h := newTestServer(&stubGateway{})

	rec, body := doJSON(t, h, http.MethodPost, "/api/session/submit", `{"rawContent":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
	if errorCode(body) != "bad_request" {
		t.Errorf("code=%v", errorCode(body))
	}
}

func TestSubmitGatewayFailureReturnsNotice(t *testing.T) {
	gw := &stubGateway{failNext: true}
	_, h := newTestServer(gw)

	rec, view := doJSON(t, h, http.MethodPost, "/api/session/submit", `{"rawContent":"โปรใหม่"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if view["stage"] != "input" {
		t.Errorf("stage=%v", view["stage"])
	}
	notice, _ := view["notice"].(string)
	if notice == "" {
		t.Error("expected a failure notice")
	}
}

func TestRegenerateOutsideReviewIsConflict(t *testing.T) {
	_, h := newTestServer(&stubGateway{})

	rec, body := doJSON(t, h, http.MethodPost, "/api/session/regenerate", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d", rec.Code)
	}
	if errorCode(body) != "wrong_stage" {
		t.Errorf("code=%v", errorCode(body))
	}
}

func TestEditPatchesOnlyGivenFields(t *testing.T) {
	_, h := newTestServer(&stubGateway{})

	_, view := doJSON(t, h, http.MethodPatch, "/api/session", `{"rawContent":"ข้อความต้นทาง"}`)
	if view["rawContent"] != "ข้อความต้นทาง" {
		t.Errorf("rawContent=%v", view["rawContent"])
	}
	if view["generatedDraft"] != "" {
		t.Errorf("generatedDraft=%v", view["generatedDraft"])
	}
}

func TestFullWizardRoundTrip(t *testing.T) {
	gw := &stubGateway{
		result: &ai.ContentResult{Draft: "แคปชัน", ImagePrompt: "prompt"},
		image:  &model.Image{MIME: "image/png", Data: pngHeader},
	}
	_, h := newTestServer(gw)

	doJSON(t, h, http.MethodPost, "/api/session/submit", `{"rawContent":"โปรโมชัน"}`)
	doJSON(t, h, http.MethodPost, "/api/session/confirm", "")
	_, view := doJSON(t, h, http.MethodPost, "/api/session/generate-image", "")
	if view["generatedImage"] == nil || view["generatedImage"] == "" {
		t.Fatalf("generatedImage=%v", view["generatedImage"])
	}
	rec, view := doJSON(t, h, http.MethodPost, "/api/session/finalize", "")
	if rec.Code != http.StatusOK || view["stage"] != "final" {
		t.Fatalf("status=%d stage=%v", rec.Code, view["stage"])
	}

	req := httptest.NewRequest(http.MethodGet, "/api/download/image", nil)
	recImg := httptest.NewRecorder()
	h.ServeHTTP(recImg, req)
	if recImg.Code != http.StatusOK {
		t.Fatalf("download status=%d", recImg.Code)
	}
	cd := recImg.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "whale-image-") {
		t.Errorf("content-disposition=%q", cd)
	}
	if !bytes.Equal(recImg.Body.Bytes(), pngHeader) {
		t.Error("downloaded bytes differ from synthesized image")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/download/text", nil)
	recTxt := httptest.NewRecorder()
	h.ServeHTTP(recTxt, req)
	if recTxt.Code != http.StatusOK || recTxt.Body.String() != "แคปชัน" {
		t.Fatalf("text download status=%d body=%q", recTxt.Code, recTxt.Body.String())
	}
}

func TestDownloadBeforeFinalizeIsNotFound(t *testing.T) {
	_, h := newTestServer(&stubGateway{})

	rec, _ := doJSON(t, h, http.MethodGet, "/api/download/image", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestResetReturnsFreshSession(t *testing.T) {
	gw := &stubGateway{result: &ai.ContentResult{Draft: "ร่าง", ImagePrompt: "p"}}
	_, h := newTestServer(gw)

	doJSON(t, h, http.MethodPost, "/api/session/submit", `{"rawContent":"x"}`)
	_, view := doJSON(t, h, http.MethodPost, "/api/session/reset", "")
	if view["stage"] != "input" || view["rawContent"] != "" || view["generatedDraft"] != "" {
		t.Errorf("view after reset: %v", view)
	}
}

func TestAssetUploadAndList(t *testing.T) {
	assets, h := newTestServer(&stubGateway{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(pngHeader); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/assets", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status=%d body=%s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created["name"] != "logo.png" || created["isDefault"] != false {
		t.Errorf("created=%v", created)
	}
	if assets.Count() != 1 {
		t.Errorf("count=%d", assets.Count())
	}

	recList, list := doJSON(t, h, http.MethodGet, "/api/assets", "")
	if recList.Code != http.StatusOK {
		t.Fatalf("list status=%d", recList.Code)
	}
	if total, _ := list["total"].(float64); total != 1 {
		t.Errorf("total=%v", list["total"])
	}

	id, _ := created["id"].(string)
	recRaw, _ := doJSON(t, h, http.MethodGet, "/api/assets/"+id+"/raw", "")
	if recRaw.Code != http.StatusOK {
		t.Fatalf("raw status=%d", recRaw.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/assets/"+id, nil)
	recDel := httptest.NewRecorder()
	h.ServeHTTP(recDel, req)
	if recDel.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", recDel.Code)
	}
	if assets.Count() != 0 {
		t.Errorf("count after delete=%d", assets.Count())
	}
}

func TestAssetUploadRejectsNonImage(t *testing.T) {
	_, h := newTestServer(&stubGateway{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, _ := w.CreateFormFile("file", "notes.txt")
	fw.Write([]byte("plain text, definitely not an image"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/assets", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}
