package retinaface

// ScaleLevel describes one feature pyramid level of the model.  Stride is
// the pixel distance between adjacent prediction cells and BaseSizes are the
// prior box side lengths anchored at each cell.
type ScaleLevel struct {
	Stride    int
	BaseSizes []int
}

// Params defines the struct containing the RetinaFace parameters to use
// for decoding operations
type Params struct {
	// ConfThreshold is the minimum face probability required for an anchor
	// to be decoded into a candidate detection
	ConfThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for defining
	// the maximum allowed Intersection Over Union (IoU) between two
	// bounding boxes for both to be kept
	NMSThreshold float32
	// VisThreshold is a second confidence threshold applied after
	// suppression.  A value of 0 disables it.
	VisThreshold float32
	// MaxObjectNumber is the maximum number of detections that can be
	// returned
	MaxObjectNumber int
	// KeyPointsNumber is the number of face landmark keypoints representing
	// different features of the face
	KeyPointsNumber int
	// Variances are the fixed scale factors applied to center-offset and
	// size-offset decoding.  They are part of the trained model's encoding
	// convention, not tunable per call.
	Variances [2]float32
	// Scales are the feature pyramid levels of the model, ordered the same
	// way the network emits its per-anchor outputs
	Scales []ScaleLevel
	// ClipPriors clamps generated prior coordinates to [0,1].  The common
	// training-time convention leaves priors unclipped.
	ClipPriors bool
	// ClipBoxes clamps decoded box and landmark coordinates to the network
	// input dimensions before the degenerate box check
	ClipBoxes bool
}

// WiderFaceParams returns an instance of Params configured with the default
// values for a Model trained on the WIDERFACE dataset featuring:
// - NMS Threshold: 0.4
// - ConfThreshold: 0.5
// - VisThreshold: 0.4
// - MaxObjectNumber: 128
// - KeyPointsNumber: 5
// - Strides 8/16/32 with base sizes {16,32}, {64,128}, {256,512}
func WiderFaceParams() Params {
	return Params{
		ConfThreshold:   0.5,
		NMSThreshold:    0.4,
		VisThreshold:    0.4,
		MaxObjectNumber: 128,
		KeyPointsNumber: 5,
		Variances:       [2]float32{0.1, 0.2},
		Scales: []ScaleLevel{
			{Stride: 8, BaseSizes: []int{16, 32}},
			{Stride: 16, BaseSizes: []int{64, 128}},
			{Stride: 32, BaseSizes: []int{256, 512}},
		},
		ClipBoxes: true,
	}
}
