package preprocess

import (
	"testing"

	"github.com/visiontk/go-retinaface/result"
)

func TestResizerPreCalc(t *testing.T) {

	// 1280x720 letterboxed into 640x640 scales by 0.5 and pads the height
	r := NewResizer(1280, 720, 640, 640)
	defer r.Close()

	if r.ScaleFactor() != 0.5 {
		t.Errorf("got scale %f, want 0.5", r.ScaleFactor())
	}

	if r.XPad() != 0 {
		t.Errorf("got xPad %d, want 0", r.XPad())
	}

	if r.YPad() != 140 {
		t.Errorf("got yPad %d, want 140", r.YPad())
	}
}

func TestResizerMapPoint(t *testing.T) {

	r := NewResizer(1280, 720, 640, 640)
	defer r.Close()

	tests := []struct {
		name         string
		x, y         float32
		wantX, wantY float32
	}{
		{"image origin", 0, 140, 0, 0},
		{"image far corner", 640, 500, 1280, 720},
		{"center", 320, 320, 640, 360},
		{"inside top padding clamps to zero", 10, 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			gotX, gotY := r.MapPoint(tt.x, tt.y)

			if gotX != tt.wantX || gotY != tt.wantY {
				t.Errorf("got (%f, %f), want (%f, %f)",
					gotX, gotY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestResizerMapDetection(t *testing.T) {

	r := NewResizer(1280, 720, 640, 640)
	defer r.Close()

	det := result.Detection{
		X1: 100, Y1: 200, X2: 200, Y2: 300,
		Confidence: 0.9,
		Landmarks:  []result.Point{{X: 150, Y: 250}},
	}

	mapped := r.MapDetection(det)

	if mapped.X1 != 200 || mapped.Y1 != 120 || mapped.X2 != 400 || mapped.Y2 != 320 {
		t.Errorf("got box (%f %f %f %f), want (200 120 400 320)",
			mapped.X1, mapped.Y1, mapped.X2, mapped.Y2)
	}

	if mapped.Confidence != det.Confidence {
		t.Error("confidence must travel through mapping unchanged")
	}

	if len(mapped.Landmarks) != 1 || mapped.Landmarks[0].X != 300 ||
		mapped.Landmarks[0].Y != 220 {
		t.Errorf("got landmark %+v, want (300, 220)", mapped.Landmarks[0])
	}

	// the input detection is untouched
	if det.Landmarks[0].X != 150 {
		t.Error("mapping must not mutate the source detection")
	}
}
