package render

import "image/color"

var (
	// faceColors is a list of colors cycled through when painting face
	// bounding boxes
	faceColors = []color.RGBA{
		{R: 72, G: 249, B: 10, A: 255},  // #48F90A
		{R: 0, G: 194, B: 255, A: 255},  // #00C2FF
		{R: 255, G: 178, B: 29, A: 255}, // #FFB21D
		{R: 255, G: 56, B: 56, A: 255},  // #FF3838
		{R: 132, G: 56, B: 255, A: 255}, // #8438FF
		{R: 255, G: 55, B: 199, A: 255}, // #FF37C7
		{R: 0, G: 212, B: 187, A: 255},  // #00D4BB
		{R: 100, G: 115, B: 255, A: 255}, // #6473FF
	}

	// landmarkColors paints the five face landmark points, ordered left
	// eye, right eye, nose, left mouth corner, right mouth corner
	landmarkColors = []color.RGBA{
		{R: 0, G: 255, B: 0, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 255, A: 255},
		{R: 255, G: 0, B: 255, A: 255},
		{R: 255, G: 255, B: 0, A: 255},
	}

	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)
