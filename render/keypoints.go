package render

import (
	"image"

	"github.com/visiontk/go-retinaface/result"
	"gocv.io/x/gocv"
)

/* face landmark keypoints
0: Left Eye
1: Right Eye
2: Nose
3: Left Mouth Corner
4: Right Mouth Corner
*/

// FaceKeyPoints renders the facial landmark keypoints for all detected faces
func FaceKeyPoints(img *gocv.Mat, detections []result.Detection, radius int) {

	for _, det := range detections {

		for j, pt := range det.Landmarks {
			gocv.Circle(img, image.Pt(int(pt.X), int(pt.Y)), radius,
				landmarkColors[j%len(landmarkColors)], -1)
		}
	}
}
