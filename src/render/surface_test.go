package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func TestSurface_ReleaseRejectsUse(t *testing.T) {
	s, err := Acquire(120, 80, testOptions())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if w, h := s.Size(); w != 120 || h != 80 {
		t.Fatalf("size=%dx%d", w, h)
	}
	out := filepath.Join(t.TempDir(), "blank.png")
	if err := s.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Release()
	s.Release()
	if err := s.Save(out); !errors.Is(err, ErrReleased) {
		t.Fatalf("Save after Release: got %v want ErrReleased", err)
	}
	if err := drawPanel(s, chart.Box{Right: 10, Bottom: 10}, BarPanel{}); !errors.Is(err, ErrReleased) {
		t.Fatalf("drawPanel after Release: got %v", err)
	}
}

func TestSurface_FooterStamped(t *testing.T) {
	o := testOptions()
	s, err := Acquire(200, 100, o)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer s.Release()
	s.SetFooter("area_summary.csv")
	out := filepath.Join(t.TempDir(), "footer.png")
	if err := s.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// the caption background darkens the bottom-left corner of a white canvas
	r, g, b, _ := img.At(4, 96).RGBA()
	if r > 0x8000 || g > 0x8000 || b > 0x8000 {
		t.Fatalf("expected dark footer background, got %v", color.RGBA64{uint16(r), uint16(g), uint16(b), 0})
	}
	r, g, b, _ = img.At(190, 10).RGBA()
	if r < 0xF000 || g < 0xF000 || b < 0xF000 {
		t.Fatalf("top-right should stay white")
	}
}

func TestAcquire_RejectsBadOptions(t *testing.T) {
	o := testOptions()
	o.Format = "gif"
	if _, err := Acquire(10, 10, o); err == nil {
		t.Fatalf("gif should be rejected")
	}
	if _, err := Acquire(0, 10, testOptions()); err == nil {
		t.Fatalf("zero width should be rejected")
	}
	o = testOptions()
	o.AlphaLight = 1.5
	if err := o.Validate(); err == nil {
		t.Fatalf("alpha above 1 should be rejected")
	}
}

func TestFitTail_KeepsFileName(t *testing.T) {
	d := &font.Drawer{Face: basicfont.Face7x13}
	long := "/very/long/path/to/the/data/directory/area_summary.csv"
	got := fitTail(d, long, 140)
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "area_summary.csv") {
		t.Fatalf("fitTail=%q", got)
	}
	if w := d.MeasureString(got).Ceil(); w > 140 {
		t.Fatalf("trimmed text is %d px wide", w)
	}
	if fitTail(d, "a.csv", 140) != "a.csv" {
		t.Fatalf("short text should be kept")
	}
}
