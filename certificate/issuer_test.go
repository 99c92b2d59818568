package certificate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/idalloc"
	canvasrenderer "github.com/ByLCY/certify/renderer/canvas"
	"github.com/ByLCY/certify/renderer/raster"
)

var (
	fixedNow  = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	endDate   = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	certIDPat = regexp.MustCompile(`^CERT\d{6}$`)
)

func whiteTemplate(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func newTestIssuer(t *testing.T, opts Options) *Issuer {
	t.Helper()
	if opts.Template == nil {
		opts.Template = whiteTemplate(1000, 700)
	}
	if opts.Compositor == nil {
		f, err := fonts.Shared().Get(fonts.DefaultSrc)
		if err != nil {
			t.Fatalf("font: %v", err)
		}
		opts.Compositor = raster.New(f)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	opts.Now = func() time.Time { return fixedNow }
	is, err := NewIssuer(opts)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return is
}

func TestIssue(t *testing.T) {
	is := newTestIssuer(t, Options{PDF: canvasrenderer.NewRenderer()})
	staff := Staff{Code: "nxremp0042", FullName: "Jordan Lee", Role: "Employee"}
	course := Course{Name: "First Aid", EndDate: endDate}

	rec, err := is.Issue(context.Background(), staff, course)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !certIDPat.MatchString(rec.ID) {
		t.Fatalf("unexpected id %q", rec.ID)
	}
	if !rec.IssueDate.Equal(endDate) || !rec.GeneratedOn.Equal(fixedNow) {
		t.Fatalf("unexpected dates: %+v", rec)
	}
	if rec.FileName != "Jordan_Lee_First_Aid_certificate.png" || rec.Degraded {
		t.Fatalf("unexpected record: %+v", rec)
	}

	want := []string{"Jordan Lee", "Successfully completed the First Aid Course", "01-02-2025"}
	if len(rec.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(rec.Lines))
	}
	for i, line := range rec.Lines {
		if line.Content != want[i] {
			t.Fatalf("line %d = %q, want %q", i, line.Content, want[i])
		}
	}
	if rec.Lines[0].Y != 350 || rec.Lines[1].Y != 420 || rec.Lines[2].Y != 455 {
		t.Fatalf("unexpected rows: %+v", rec.Lines)
	}

	img, err := png.Decode(bytes.NewReader(rec.PNG))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 1000 || img.Bounds().Dy() != 700 {
		t.Fatalf("unexpected png bounds %v", img.Bounds())
	}
	if !bytes.HasPrefix(rec.PDF, []byte("%PDF")) {
		t.Fatalf("expected pdf bytes")
	}
}

func TestIssueWithoutFontIsDegraded(t *testing.T) {
	is := newTestIssuer(t, Options{Compositor: raster.New(nil)})
	rec, err := is.Issue(context.Background(), Staff{FullName: "Jordan Lee"}, Course{Name: "First Aid", EndDate: endDate})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !rec.Degraded {
		t.Fatalf("expected degraded record")
	}
	if rec.Lines[0].Draws != 4 || rec.Lines[1].Draws != 2 || rec.Lines[2].Draws != 1 {
		t.Fatalf("unexpected draw counts: %+v", rec.Lines)
	}
	if rec.PDF != nil {
		t.Fatalf("pdf should be skipped without a pdf renderer")
	}
}

func TestIssueInvalidRequestKeepsIDs(t *testing.T) {
	reg := idalloc.NewMemoryRegistry()
	is := newTestIssuer(t, Options{IDs: idalloc.New(idalloc.CertificateNumbers(), reg)})
	_, err := is.Issue(context.Background(), Staff{}, Course{Name: "First Aid", EndDate: endDate})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("failed issue consumed an id")
	}
}

func TestIssueExhaustedIDs(t *testing.T) {
	ids := &idalloc.Allocator{
		Generator:   idalloc.Digits{Prefix: "CERT", Width: 6, Rand: bytes.NewReader(make([]byte, 256))},
		Registry:    idalloc.NewMemoryRegistry("CERT100000"),
		MaxAttempts: 2,
	}
	is := newTestIssuer(t, Options{IDs: ids})
	_, err := is.Issue(context.Background(), Staff{FullName: "A"}, Course{Name: "B", EndDate: endDate})
	if !errors.Is(err, idalloc.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestNewIssuerRequiresTemplate(t *testing.T) {
	_, err := NewIssuer(Options{Compositor: raster.New(nil)})
	if !errors.Is(err, raster.ErrTemplateLoad) {
		t.Fatalf("expected ErrTemplateLoad, got %v", err)
	}
	if _, err := NewIssuer(Options{Template: whiteTemplate(10, 10)}); err == nil {
		t.Fatalf("expected error without compositor")
	}
}

func TestIssueBatch(t *testing.T) {
	is := newTestIssuer(t, Options{Template: whiteTemplate(600, 420)})
	names := []string{"Ana", "Bo Chen", "Charlotte Dubois-Lefebvre", "Dev", "Eun-ji Park"}
	reqs := make([]Request, len(names))
	for i, n := range names {
		reqs[i] = Request{Staff: Staff{FullName: n}, Course: Course{Name: "Fire Safety", SubColumn: "Basic", EndDate: endDate}}
	}

	recs, err := is.IssueBatch(context.Background(), reqs, 2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	seen := map[string]bool{}
	for i, rec := range recs {
		if rec.Staff.FullName != names[i] || rec.Lines[0].Content != names[i] {
			t.Fatalf("record %d out of order: %s", i, rec.Staff.FullName)
		}
		if rec.Lines[1].Content != "Successfully completed the Fire Safety Basic Course" {
			t.Fatalf("unexpected course line %q", rec.Lines[1].Content)
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate id %s", rec.ID)
		}
		seen[rec.ID] = true
	}

	reqs[3].Staff.FullName = ""
	if _, err := is.IssueBatch(context.Background(), reqs, 2); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected batch to surface ErrInvalidRequest, got %v", err)
	}
}

func TestRecordWriteFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &Record{FileName: "A_B_certificate.png", PNG: []byte("png"), PDF: []byte("%PDF")}
	paths, err := rec.WriteFiles(dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected png and pdf, got %v", paths)
	}
	data, err := os.ReadFile(paths[1])
	if err != nil || string(data) != "%PDF" {
		t.Fatalf("unexpected pdf file: %q %v", data, err)
	}
}
