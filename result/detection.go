package result

// Point is a single face landmark keypoint in absolute pixel coordinates
type Point struct {
	X float32
	Y float32
}

// Detection defines the attributes of a single face detected
type Detection struct {
	// X1, Y1, X2, Y2 are the bounding box corners in absolute pixel
	// coordinates of the network input resolution
	X1 float32
	Y1 float32
	X2 float32
	Y2 float32
	// Confidence is the face probability score of the detection
	Confidence float32
	// Landmarks are the facial feature keypoints, ordered left eye, right
	// eye, nose, left mouth corner, right mouth corner
	Landmarks []Point
	// ID is a unique ID assigned to the detection result
	ID int64
}

// Width returns the pixel width of the detection bounding box
func (d Detection) Width() float32 {
	return d.X2 - d.X1
}

// Height returns the pixel height of the detection bounding box
func (d Detection) Height() float32 {
	return d.Y2 - d.Y1
}
