package retinaface

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/visiontk/go-retinaface/result"
)

// Decoder converts raw RetinaFace output tensors into face detections
type Decoder struct {
	// Params are the Model configuration parameters
	Params Params
	// idGen is a counter that increments and provides the next number
	// for each detection result ID
	idGen *result.IDGenerator
	// priors holds generated prior boxes keyed by input size so repeat
	// decodes at the same resolution skip regeneration
	priors *priorCache
}

// NewDecoder returns an instance of the RetinaFace output decoder
func NewDecoder(p Params) *Decoder {
	return &Decoder{
		Params: p,
		idGen:  result.NewIDGenerator(),
		priors: newPriorCache(),
	}
}

// DetectFaces decodes the output tensors of a single inference pass run at
// the given network input resolution.  An empty slice with a nil error means
// no faces survived thresholding, which is a valid outcome, not a failure.
func (d *Decoder) DetectFaces(t Tensors, inputW, inputH int) ([]result.Detection, error) {

	priors, err := d.framePriors(inputW, inputH)

	if err != nil {
		return nil, err
	}

	if err := t.validate(len(priors)); err != nil {
		return nil, err
	}

	return d.decodeFrame(t, priors, inputW, inputH), nil
}

// DetectBatch decodes the output tensors of a batched inference pass of
// batchSize independent frames.  Frames occupy consecutive buffer regions
// and are decoded independently of each other.
func (d *Decoder) DetectBatch(t Tensors, inputW, inputH,
	batchSize int) ([][]result.Detection, error) {

	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrConfiguration, batchSize)
	}

	priors, err := d.framePriors(inputW, inputH)

	if err != nil {
		return nil, err
	}

	if err := t.validate(batchSize * len(priors)); err != nil {
		return nil, err
	}

	frames := make([][]result.Detection, batchSize)

	for i := 0; i < batchSize; i++ {
		frames[i] = d.decodeFrame(t.frame(i, len(priors)), priors, inputW, inputH)
	}

	return frames, nil
}

// framePriors validates the decode configuration and returns the prior
// boxes for the given input resolution
func (d *Decoder) framePriors(inputW, inputH int) ([]Prior, error) {

	if inputW <= 0 || inputH <= 0 {
		return nil, fmt.Errorf("%w: input size %dx%d", ErrConfiguration,
			inputW, inputH)
	}

	if d.Params.KeyPointsNumber < 0 || d.Params.KeyPointsNumber*2 > landmWidth {
		return nil, fmt.Errorf("%w: %d keypoints exceed the %d landmark channels",
			ErrConfiguration, d.Params.KeyPointsNumber, landmWidth)
	}

	priors, err := d.priors.get(d.Params.Scales, inputW, inputH,
		d.Params.ClipPriors)

	if err != nil {
		return nil, err
	}

	if len(priors) == 0 {
		return nil, fmt.Errorf("%w: configuration yields zero anchors",
			ErrConfiguration)
	}

	return priors, nil
}

// decodeFrame runs the per-anchor decode over one frame's buffers and
// suppresses duplicates.  Inputs have already been validated.
func (d *Decoder) decodeFrame(t Tensors, priors []Prior,
	inputW, inputH int) []result.Detection {

	cands := make([]candidate, 0, 64)

	for i := range priors {

		score := faceScore(t.logits(i))

		if score < d.Params.ConfThreshold {
			continue
		}

		c, ok := d.decodeAnchor(t, priors[i], i, score, inputW, inputH)

		if !ok {
			continue
		}

		cands = append(cands, c)
	}

	cands = suppress(cands, d.Params.NMSThreshold)

	detections := make([]result.Detection, 0, len(cands))

	for _, c := range cands {

		if len(detections) >= d.Params.MaxObjectNumber {
			break
		}

		if c.score < d.Params.VisThreshold {
			continue
		}

		detections = append(detections, result.Detection{
			X1:         c.x1,
			Y1:         c.y1,
			X2:         c.x2,
			Y2:         c.y2,
			Confidence: c.score,
			Landmarks:  c.landmarks,
			ID:         d.idGen.GetNext(),
		})
	}

	return detections
}

// decodeAnchor decodes the box and landmarks of a single anchor into pixel
// space.  Returns false if the decoded box is degenerate.
func (d *Decoder) decodeAnchor(t Tensors, p Prior, i int, score float32,
	inputW, inputH int) (candidate, bool) {

	v := d.Params.Variances

	dx, dy, dw, dh := t.boxDelta(i)

	// decode box in normalized prior space
	cx := p.Cx + dx*v[0]*p.W
	cy := p.Cy + dy*v[0]*p.H
	w := p.W * math32.Exp(dw*v[1])
	h := p.H * math32.Exp(dh*v[1])

	// pixel scaling happens once, after all normalized-space math, so
	// rounding error does not compound
	fw := float32(inputW)
	fh := float32(inputH)

	c := candidate{
		x1:     (cx - w/2) * fw,
		y1:     (cy - h/2) * fh,
		x2:     (cx + w/2) * fw,
		y2:     (cy + h/2) * fh,
		score:  score,
		anchor: i,
	}

	if d.Params.ClipBoxes {
		c.x1 = clipRange(c.x1, 0, fw-1)
		c.y1 = clipRange(c.y1, 0, fh-1)
		c.x2 = clipRange(c.x2, 0, fw-1)
		c.y2 = clipRange(c.y2, 0, fh-1)
	}

	// degenerate box guard
	if c.x2-c.x1 < 1 || c.y2-c.y1 < 1 {
		return candidate{}, false
	}

	c.landmarks = make([]result.Point, d.Params.KeyPointsNumber)

	for j := 0; j < d.Params.KeyPointsNumber; j++ {

		ldx, ldy := t.landmDelta(i, j)

		// landmarks reuse the center-offset decode, there is no size term
		lx := (p.Cx + ldx*v[0]*p.W) * fw
		ly := (p.Cy + ldy*v[0]*p.H) * fh

		if d.Params.ClipBoxes {
			lx = clipRange(lx, 0, fw-1)
			ly = clipRange(ly, 0, fh-1)
		}

		c.landmarks[j] = result.Point{X: lx, Y: ly}
	}

	return c, true
}

// faceScore computes the two-class softmax probability of the face class.
// The max logit is subtracted before exponentiating so large-magnitude
// logits cannot overflow, the mathematical result is unchanged.
func faceScore(bg, face float32) float32 {

	m := math32.Max(bg, face)

	expBg := math32.Exp(bg - m)
	expFace := math32.Exp(face - m)

	return expFace / (expBg + expFace)
}

// clipRange restricts a value to the range [min, max]
func clipRange(v, min, max float32) float32 {

	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}
