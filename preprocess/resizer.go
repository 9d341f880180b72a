package preprocess

import (
	"image"
	"image/color"

	"github.com/visiontk/go-retinaface/result"
	"gocv.io/x/gocv"
)

// Resizer handles letterbox scaling of a source image to the network input
// size and maps decoded detections back into source image coordinates
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer used for scaling an image to the needed
// dimensions for the network input tensor size
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	// precalculate scaling dimensions
	r.preCalc()

	return r
}

// Close frees memory allocated during resize process
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}

// preCalc the scaling factors for source and destination Mats
func (r *Resizer) preCalc() {

	r.resizeW = r.destWidth
	r.resizeH = r.destHeight

	scaleW := float32(r.destWidth) / float32(r.srcWidth)
	scaleH := float32(r.destHeight) / float32(r.srcHeight)
	r.scale = scaleH

	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = int(float32(r.srcHeight) * r.scale)
	} else {
		r.resizeW = int(float32(r.srcWidth) * r.scale)
	}

	r.yPad = (r.destHeight - r.resizeH) / 2 // padding height / 2
	r.xPad = (r.destWidth - r.resizeW) / 2  // padding width / 2
}

// LetterBoxResize resizes the input image to the dimensions needed for the
// network input tensor size whilst maintaining image aspect.  Color is that
// used for letter box padding.
func (r *Resizer) LetterBoxResize(src gocv.Mat, dest *gocv.Mat, color color.RGBA) {

	gocv.Resize(src, &r.tempMat, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(r.tempMat, dest, r.yPad, r.destHeight-r.resizeH-r.yPad,
		r.xPad, r.destWidth-r.resizeW-r.xPad, gocv.BorderConstant, color)
}

// MapDetection translates a detection expressed in network input pixel
// coordinates back into source image coordinates, removing the letterbox
// padding and undoing the resize scaling.  Landmarks are mapped the same
// way as the box corners.
func (r *Resizer) MapDetection(det result.Detection) result.Detection {

	mapped := det

	mapped.X1, mapped.Y1 = r.MapPoint(det.X1, det.Y1)
	mapped.X2, mapped.Y2 = r.MapPoint(det.X2, det.Y2)

	mapped.Landmarks = make([]result.Point, len(det.Landmarks))

	for i, pt := range det.Landmarks {
		x, y := r.MapPoint(pt.X, pt.Y)
		mapped.Landmarks[i] = result.Point{X: x, Y: y}
	}

	return mapped
}

// MapPoint translates a single point from network input coordinates into
// source image coordinates, clamped to the source dimensions
func (r *Resizer) MapPoint(x, y float32) (float32, float32) {

	sx := (x - float32(r.xPad)) / r.scale
	sy := (y - float32(r.yPad)) / r.scale

	return clampF(sx, 0, float32(r.srcWidth)), clampF(sy, 0, float32(r.srcHeight))
}

// clampF restricts a value to the range [min, max]
func clampF(v, min, max float32) float32 {

	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}

// ScaleFactor returns the scale factor used in letterbox resize
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

// XPad returns the x padding used in letterbox resize
func (r *Resizer) XPad() int {
	return r.xPad
}

// YPad returns the y padding used in letterbox resize
func (r *Resizer) YPad() int {
	return r.yPad
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
