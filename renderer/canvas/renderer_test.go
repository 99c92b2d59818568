package canvasrenderer

import (
	"bytes"
	"image"
	"math"
	"testing"

	"github.com/ByLCY/certify/layout"
)

func sampleResult(w, h int) *layout.Result {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return &layout.Result{
		Image:  img,
		Width:  w,
		Height: h,
		Meta:   layout.DocumentMeta{Title: "Certificate of Completion", Keywords: []string{"certificate", "training"}},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := NewRenderer().Render(sampleResult(200, 140))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", data[:min(len(data), 8)])
	}
}

func TestPageSizeFollowsDPI(t *testing.T) {
	res := sampleResult(960, 480)
	w, h := NewRenderer().PageSize(res)
	if math.Abs(w-254) > 1e-9 || math.Abs(h-127) > 1e-9 {
		t.Fatalf("unexpected page size at 96 dpi: %gx%g mm", w, h)
	}

	w, h = NewRendererWithOptions(Options{DPI: 192}).PageSize(res)
	if math.Abs(w-127) > 1e-9 || math.Abs(h-63.5) > 1e-9 {
		t.Fatalf("unexpected page size at 192 dpi: %gx%g mm", w, h)
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without image")
	}
}
