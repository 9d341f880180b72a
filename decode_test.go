package retinaface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleScaleParams returns a minimal one-scale configuration used by the
// decode tests: stride 16 with one 32px anchor per cell, so a 64x64 input
// yields a 4x4 feature map of 16 anchors
func singleScaleParams() Params {
	p := WiderFaceParams()
	p.Scales = []ScaleLevel{{Stride: 16, BaseSizes: []int{32}}}
	p.VisThreshold = 0
	return p
}

// backgroundTensors builds tensor buffers for n anchors where every anchor
// strongly favours the background class
func backgroundTensors(n int) Tensors {

	t := Tensors{
		Loc:    make([]float32, n*locWidth),
		Landms: make([]float32, n*landmWidth),
		Conf:   make([]float32, n*confWidth),
	}

	for i := 0; i < n; i++ {
		t.Conf[i*confWidth] = 4
		t.Conf[i*confWidth+1] = -4
	}

	return t
}

// setFace marks anchor i as a confident face detection
func setFace(t Tensors, i int, bg, face float32) {
	t.Conf[i*confWidth] = bg
	t.Conf[i*confWidth+1] = face
}

// TestDetectSingleFace feeds a synthetic buffer with one confident face
// anchor and verifies exactly one detection centered on that anchor's prior
func TestDetectSingleFace(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	ts := backgroundTensors(16)

	// anchor 5 is row 1, col 1: prior center (24, 24) px with a 32px box
	setFace(ts, 5, -8, 8)

	dets, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	det := dets[0]

	assert.Greater(t, det.Confidence, float32(0.99))

	// zero deltas decode to the prior itself
	assert.InDelta(t, 24.0, (det.X1+det.X2)/2, 0.5, "box center x")
	assert.InDelta(t, 24.0, (det.Y1+det.Y2)/2, 0.5, "box center y")
	assert.InDelta(t, 32.0, det.Width(), 0.5)
	assert.InDelta(t, 32.0, det.Height(), 0.5)

	// landmarks with zero deltas sit at the prior center
	require.Len(t, det.Landmarks, 5)

	for _, pt := range det.Landmarks {
		assert.InDelta(t, 24.0, pt.X, 0.5)
		assert.InDelta(t, 24.0, pt.Y, 0.5)
	}

	assert.NotZero(t, det.ID)
}

// TestDetectOverlappingSuppressed feeds two heavily overlapping confident
// anchors and verifies the lower confidence one is suppressed
func TestDetectOverlappingSuppressed(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	ts := backgroundTensors(16)

	// anchor 5 centered at (24, 24)
	setFace(ts, 5, -8, 8)

	// anchor 6 sits at (40, 24); shift its center to 26px so the two 32px
	// boxes overlap with IoU ~0.88, well above the 0.4 NMS threshold
	setFace(ts, 6, -8, 6)
	ts.Loc[6*locWidth] = -4.375 // dx * 0.1 * priorW(0.5) moves cx by -14px

	dets, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	// the survivor is the higher confidence anchor 5
	assert.InDelta(t, 24.0, (dets[0].X1+dets[0].X2)/2, 0.5)
}

// TestDetectSeparatedBothSurvive feeds two confident anchors with disjoint
// boxes and verifies both survive suppression
func TestDetectSeparatedBothSurvive(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	ts := backgroundTensors(16)

	// anchor 0 centered at (8, 8), anchor 15 at (56, 56): IoU 0
	setFace(ts, 0, -8, 8)
	setFace(ts, 15, -8, 7)

	dets, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)
	assert.Len(t, dets, 2)
}

// TestDetectAllBelowThreshold verifies an all-background frame produces an
// empty result and no error
func TestDetectAllBelowThreshold(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	dets, err := d.DetectFaces(backgroundTensors(16), 64, 64)

	require.NoError(t, err)
	assert.Empty(t, dets)
}

// TestDetectSizeMismatch verifies malformed buffer lengths are rejected
// before any decoding happens
func TestDetectSizeMismatch(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	tests := []struct {
		name   string
		mangle func(*Tensors)
	}{
		{"short loc", func(ts *Tensors) { ts.Loc = ts.Loc[:len(ts.Loc)-4] }},
		{"short landms", func(ts *Tensors) { ts.Landms = ts.Landms[:7] }},
		{"long conf", func(ts *Tensors) { ts.Conf = append(ts.Conf, 0) }},
		{"empty buffers", func(ts *Tensors) { *ts = Tensors{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			ts := backgroundTensors(16)
			tt.mangle(&ts)

			dets, err := d.DetectFaces(ts, 64, 64)

			require.ErrorIs(t, err, ErrSizeMismatch)
			assert.Nil(t, dets, "no partial output on error")
		})
	}
}

// TestDetectConfigurationErrors verifies broken configurations fail eagerly
func TestDetectConfigurationErrors(t *testing.T) {

	tests := []struct {
		name   string
		params func() Params
		w, h   int
	}{
		{"zero stride", func() Params {
			p := singleScaleParams()
			p.Scales[0].Stride = 0
			return p
		}, 64, 64},
		{"no scales", func() Params {
			p := singleScaleParams()
			p.Scales = nil
			return p
		}, 64, 64},
		{"zero input", singleScaleParams, 0, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			d := NewDecoder(tt.params())

			_, err := d.DetectFaces(backgroundTensors(16), tt.w, tt.h)

			require.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

// TestDetectDeterminism verifies repeated decodes of identical input return
// identical detections
func TestDetectDeterminism(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	ts := backgroundTensors(16)
	setFace(ts, 2, -6, 6)
	setFace(ts, 9, -5, 5)
	setFace(ts, 13, -4, 4)

	first, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)

	second, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))

	// detection IDs increment per emitted result, compare everything else
	for i := range first {
		a, b := first[i], second[i]
		a.ID, b.ID = 0, 0
		assert.Equal(t, a, b)
	}
}

// TestThresholdMonotonic verifies raising the confidence threshold never
// grows the survivor set, and higher-threshold survivors are a subset of
// lower-threshold survivors
func TestThresholdMonotonic(t *testing.T) {

	ts := backgroundTensors(16)

	// spread of face scores from ~0.12 up to ~0.92
	for i := 0; i < 16; i++ {
		setFace(ts, i, 0, -2+0.3*float32(i))
	}

	thresholds := []float32{0.2, 0.5, 0.8}
	var prev []float32 // survivor confidences at the previous threshold

	for _, thresh := range thresholds {

		p := singleScaleParams()
		p.ConfThreshold = thresh
		// disable suppression so only the threshold varies
		p.NMSThreshold = 1.0
		p.MaxObjectNumber = 100

		dets, err := NewDecoder(p).DetectFaces(ts, 64, 64)
		require.NoError(t, err)

		confs := make([]float32, len(dets))
		for i, det := range dets {
			confs[i] = det.Confidence
		}

		if prev != nil {
			assert.LessOrEqual(t, len(confs), len(prev),
				"raising threshold must not increase survivors")
			assert.Subset(t, prev, confs,
				"survivors at a higher threshold must be a subset")
		}

		prev = confs
	}
}

// TestDegenerateBoxesExcluded verifies a confident anchor decoding to a sub
// pixel box is dropped, and no output box is ever under 1px a side
func TestDegenerateBoxesExcluded(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	ts := backgroundTensors(16)
	setFace(ts, 5, -8, 8)

	// exp(-40 * 0.2) shrinks the 32px prior to ~0.01px
	ts.Loc[5*locWidth+2] = -40
	ts.Loc[5*locWidth+3] = -40

	dets, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)
	assert.Empty(t, dets)

	// a normal face elsewhere still comes through with legal dimensions
	setFace(ts, 10, -8, 8)

	dets, err = d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.GreaterOrEqual(t, dets[0].Width(), float32(1))
	assert.GreaterOrEqual(t, dets[0].Height(), float32(1))
}

// TestVisThreshold verifies the post-suppression visualisation threshold
// drops low scoring survivors when enabled
func TestVisThreshold(t *testing.T) {

	p := singleScaleParams()
	p.VisThreshold = 0.9

	d := NewDecoder(p)

	ts := backgroundTensors(16)
	setFace(ts, 0, -8, 8)     // score ~1.0
	setFace(ts, 15, 0, 0.405) // score ~0.6, separated from anchor 0

	dets, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.Greater(t, dets[0].Confidence, float32(0.9))
}

// TestMaxObjectNumber verifies the result cap keeps the highest confidence
// detections
func TestMaxObjectNumber(t *testing.T) {

	p := singleScaleParams()
	p.MaxObjectNumber = 1

	d := NewDecoder(p)

	ts := backgroundTensors(16)
	setFace(ts, 5, -8, 8)
	setFace(ts, 10, -8, 4)

	dets, err := d.DetectFaces(ts, 64, 64)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	// anchor 5's higher score wins the single slot
	assert.InDelta(t, 24.0, (dets[0].X1+dets[0].X2)/2, 0.5)
}

// TestDetectBatch verifies frames in a batch decode independently
func TestDetectBatch(t *testing.T) {

	d := NewDecoder(singleScaleParams())

	frame0 := backgroundTensors(16)
	setFace(frame0, 5, -8, 8)

	frame1 := backgroundTensors(16)

	ts := Tensors{
		Loc:    append(frame0.Loc, frame1.Loc...),
		Landms: append(frame0.Landms, frame1.Landms...),
		Conf:   append(frame0.Conf, frame1.Conf...),
	}

	frames, err := d.DetectBatch(ts, 64, 64, 2)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.Len(t, frames[0], 1)
	assert.Empty(t, frames[1])

	// a batch size inconsistent with the buffers is a size mismatch
	_, err = d.DetectBatch(ts, 64, 64, 3)
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = d.DetectBatch(ts, 64, 64, 0)
	require.ErrorIs(t, err, ErrConfiguration)
}

// TestFaceScore verifies the softmax transform and its overflow guard
func TestFaceScore(t *testing.T) {

	assert.InDelta(t, 0.5, faceScore(0, 0), 1e-6)
	assert.InDelta(t, 1.0, faceScore(-1000, 1000), 1e-6)
	assert.InDelta(t, 0.0, faceScore(1000, -1000), 1e-6)

	// naive exp would overflow float32 here and produce NaN
	got := faceScore(88, 88)
	assert.False(t, math.IsNaN(float64(got)))
	assert.InDelta(t, 0.5, got, 1e-6)

	// probability stays in [0,1] across magnitudes
	for _, logits := range [][2]float32{{-3, 7}, {12, -2}, {0.1, 0.2}} {
		s := faceScore(logits[0], logits[1])
		assert.GreaterOrEqual(t, s, float32(0))
		assert.LessOrEqual(t, s, float32(1))
	}
}
