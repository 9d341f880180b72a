package retinaface

import "fmt"

// Per-anchor channel widths of the three network output tensors
const (
	locWidth   = 4  // dx, dy, dw, dh
	landmWidth = 10 // five (x,y) offset pairs
	confWidth  = 2  // background logit, face logit
)

// Tensors bundles the three flat float32 output buffers of one inference
// pass.  The layout is scale-major: all anchors of scale 0 contiguous, then
// scale 1, and so on, matching the prior ordering of GeneratePriors.
//
// Indexed accessors replace the manual per-scale/anchor/channel offset
// arithmetic of typical C parsers so a misaligned stride cannot silently
// corrupt every decoded box.
type Tensors struct {
	// Loc holds 4 box delta values per anchor
	Loc []float32
	// Landms holds 10 landmark delta values per anchor
	Landms []float32
	// Conf holds 2 class logits per anchor
	Conf []float32
}

// TensorsFromFloat16 converts raw float16 output buffers into a float32
// Tensors bundle.  Buffers are the uint16 bit patterns as emitted by
// half-precision models.
func TensorsFromFloat16(loc, landms, conf []uint16) Tensors {
	return Tensors{
		Loc:    f16BufToF32(loc),
		Landms: f16BufToF32(landms),
		Conf:   f16BufToF32(conf),
	}
}

// validate checks all three buffer lengths agree with the expected anchor
// count
func (t Tensors) validate(numPriors int) error {

	if len(t.Loc) != numPriors*locWidth {
		return fmt.Errorf("%w: loc buffer has %d values, want %d for %d anchors",
			ErrSizeMismatch, len(t.Loc), numPriors*locWidth, numPriors)
	}

	if len(t.Landms) != numPriors*landmWidth {
		return fmt.Errorf("%w: landmark buffer has %d values, want %d for %d anchors",
			ErrSizeMismatch, len(t.Landms), numPriors*landmWidth, numPriors)
	}

	if len(t.Conf) != numPriors*confWidth {
		return fmt.Errorf("%w: confidence buffer has %d values, want %d for %d anchors",
			ErrSizeMismatch, len(t.Conf), numPriors*confWidth, numPriors)
	}

	return nil
}

// frame returns a view of the buffers covering one frame of a batch.  Views
// share the underlying arrays, no data is copied.
func (t Tensors) frame(idx, numPriors int) Tensors {
	return Tensors{
		Loc:    t.Loc[idx*numPriors*locWidth : (idx+1)*numPriors*locWidth],
		Landms: t.Landms[idx*numPriors*landmWidth : (idx+1)*numPriors*landmWidth],
		Conf:   t.Conf[idx*numPriors*confWidth : (idx+1)*numPriors*confWidth],
	}
}

// logits returns the background and face logit for anchor i
func (t Tensors) logits(i int) (bg, face float32) {
	return t.Conf[i*confWidth], t.Conf[i*confWidth+1]
}

// boxDelta returns the predicted box offsets for anchor i
func (t Tensors) boxDelta(i int) (dx, dy, dw, dh float32) {
	off := i * locWidth
	return t.Loc[off], t.Loc[off+1], t.Loc[off+2], t.Loc[off+3]
}

// landmDelta returns the predicted offset pair for landmark point j of
// anchor i
func (t Tensors) landmDelta(i, j int) (ldx, ldy float32) {
	off := i*landmWidth + 2*j
	return t.Landms[off], t.Landms[off+1]
}
