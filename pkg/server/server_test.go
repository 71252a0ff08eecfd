package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/svgcrop/pkg/buildinfo"
	"github.com/matzehuels/svgcrop/pkg/crop"
	errs "github.com/matzehuels/svgcrop/pkg/errors"
	"github.com/matzehuels/svgcrop/pkg/observability"
	"github.com/matzehuels/svgcrop/pkg/pipeline"
	"github.com/matzehuels/svgcrop/pkg/render"
	"github.com/matzehuels/svgcrop/pkg/render/raster"
)

const (
	boxSVG   = `<svg viewBox="0 0 100 100"><rect x="20" y="30" width="60" height="40" fill="#000"/></svg>`
	emptySVG = `<svg viewBox="0 0 10 10"></svg>`
)

func newTestServer(t *testing.T, r render.Renderer, opts ...Option) *Server {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	runner := pipeline.NewRunner(crop.New(r, logger), nil, nil, logger)
	runner.Renderer = pipeline.RendererRaster
	return New(runner, append([]Option{WithLogger(logger)}, opts...)...)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/crop", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, raster.New())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(healthResponse{Status: "ok", Build: buildinfo.Get()}, body); diff != "" {
		t.Errorf("health mismatch (-want +got):\n%s", diff)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t, raster.New())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestCropBatch(t *testing.T) {
	s := newTestServer(t, raster.New())
	body, _ := json.Marshal(map[string]any{"svgs": []string{boxSVG, boxSVG}, "scale": 1})
	rec := post(t, s, string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		SVGs []string `json:"svgs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.SVGs) != 2 {
		t.Fatalf("len(svgs) = %d, want 2", len(resp.SVGs))
	}
	for i, out := range resp.SVGs {
		if out == boxSVG || !strings.HasPrefix(out, `<svg viewBox="`) {
			t.Errorf("svgs[%d] = %q, want a cropped viewBox", i, out)
		}
	}
}

func TestCropSingle(t *testing.T) {
	s := newTestServer(t, raster.New())
	body, _ := json.Marshal(map[string]any{"svg": boxSVG})
	rec := post(t, s, string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := resp["svg"].(string); !ok {
		t.Errorf("response = %v, want an svg string", resp)
	}
	if _, ok := resp["svgs"]; ok {
		t.Error("single request should not answer svgs")
	}
}

func TestCropErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   errorDetail
	}{
		{
			name:   "invalid json",
			body:   `{"svgs":`,
			status: http.StatusBadRequest,
			want:   errorDetail{Code: errs.ErrCodeInvalidInput, Message: "invalid request body"},
		},
		{
			name:   "no documents",
			body:   `{"svgs": []}`,
			status: http.StatusBadRequest,
			want:   errorDetail{Code: errs.ErrCodeInvalidInput, Message: `"svgs" must contain at least one document`},
		},
		{
			name:   "both fields",
			body:   `{"svg": "<svg/>", "svgs": ["<svg/>"]}`,
			status: http.StatusBadRequest,
			want:   errorDetail{Code: errs.ErrCodeInvalidInput, Message: `set either "svg" or "svgs", not both`},
		},
		{
			name:   "tile too big",
			body:   `{"svg": "<svg viewBox='0 0 1 1'/>", "size": 2000}`,
			status: http.StatusBadRequest,
			want:   errorDetail{Code: errs.ErrCodeConfiguration, Message: "Maximum bitmap size is 1600, got: 2000"},
		},
		{
			name:   "malformed",
			body:   `{"svgs": ["<p>hi</p>"]}`,
			status: http.StatusBadRequest,
			want:   errorDetail{Code: errs.ErrCodeMalformedInput, Message: "Incorrect data in svg #0", Index: ptr(0)},
		},
		{
			name:   "transparent",
			body:   `{"svgs": [` + quote(boxSVG) + `, ` + quote(emptySVG) + `]}`,
			status: http.StatusBadRequest,
			want:   errorDetail{Code: errs.ErrCodeNoOpaque, Message: "Error processing svg #1: no non-transparent pixels found", Index: ptr(1)},
		},
	}

	s := newTestServer(t, raster.New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if diff := cmp.Diff(tt.want, decodeError(t, rec)); diff != "" {
				t.Errorf("error mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCropLimits(t *testing.T) {
	s := newTestServer(t, raster.New(), WithMaxDocuments(1), WithMaxBodyBytes(512))

	rec := post(t, s, `{"svgs": ["<svg/>", "<svg/>"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("too many documents: status = %d, want 400", rec.Code)
	}

	big := `{"svg": "` + strings.Repeat("a", 1024) + `"}`
	rec = post(t, s, big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: status = %d, want 413", rec.Code)
	}
}

func TestCropRenderFailure(t *testing.T) {
	failing := render.RendererFunc(func(context.Context, render.Page) ([]byte, error) {
		return nil, errs.New(errs.ErrCodeRenderFailure, "browser gone")
	})
	s := newTestServer(t, failing)

	rec := post(t, s, `{"svg": `+quote(boxSVG)+`}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != errs.ErrCodeRenderFailure {
		t.Errorf("code = %q, want %q", got.Code, errs.ErrCodeRenderFailure)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func TestAccessLogHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, raster.New())
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	post(t, s, `{"svgs": []}`)

	if diff := cmp.Diff([]int{200, 400}, hooks.statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func ptr(i int) *int { return &i }

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
