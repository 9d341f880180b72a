/*
Example code showing how to decode raw RetinaFace output tensors that have
been dumped to disk by an inference runtime, and render the resulting face
detections onto the source image.

Tensor dump files are raw little-endian buffers in the network's output
order: loc (4 floats per anchor), landmarks (10 floats per anchor) and
conf (2 floats per anchor).
*/
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	retinaface "github.com/visiontk/go-retinaface"
	"github.com/visiontk/go-retinaface/preprocess"
	"github.com/visiontk/go-retinaface/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	locFile := flag.String("loc", "../data/face-loc.bin", "Box delta tensor dump file")
	landmFile := flag.String("lm", "../data/face-landms.bin", "Landmark delta tensor dump file")
	confFile := flag.String("conf", "../data/face-conf.bin", "Class logit tensor dump file")
	imgFile := flag.String("i", "../data/face.jpg", "Source image the tensors were produced from")
	saveFile := flag.String("o", "../data/face-out.jpg", "The output JPG file with face detection markers")
	inputW := flag.Int("w", 640, "Network input width")
	inputH := flag.Int("h", 640, "Network input height")
	fp16 := flag.Bool("fp16", false, "Tensor dumps are float16 rather than float32")

	flag.Parse()

	tensors, err := loadTensors(*locFile, *landmFile, *confFile, *fp16)

	if err != nil {
		log.Fatal("Error loading tensor dumps: ", err)
	}

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	// the resizer describes how the source image was letterboxed to the
	// network input size, so decoded boxes can be mapped back
	resizer := preprocess.NewResizer(img.Cols(), img.Rows(), *inputW, *inputH)
	defer resizer.Close()

	decoder := retinaface.NewDecoder(retinaface.WiderFaceParams())

	start := time.Now()

	detections, err := decoder.DetectFaces(tensors, *inputW, *inputH)

	if err != nil {
		log.Fatal("Decoding failed with error: ", err)
	}

	endDecode := time.Now()

	// map detections from network input coordinates to source image
	// coordinates
	for i, det := range detections {
		detections[i] = resizer.MapDetection(det)
	}

	render.FaceKeyPoints(&img, detections, 3)
	render.FaceBoxes(&img, detections, render.DefaultFont(), 2)

	endRendering := time.Now()

	// output detection boxes to stdout
	for _, det := range detections {
		fmt.Printf("face @ (%.0f %.0f %.0f %.0f) %f\n", det.X1, det.Y1,
			det.X2, det.Y2, det.Confidence)
	}

	log.Printf("Decode speed: post processing=%s, rendering=%s, total time=%s\n",
		endDecode.Sub(start).String(),
		endRendering.Sub(endDecode).String(),
		endRendering.Sub(start).String(),
	)

	// Save the result
	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Fatal("Failed to save the image")
	}

	log.Printf("Saved face detection result to %s\n", *saveFile)
}

// loadTensors reads the three tensor dump files into a Tensors bundle
func loadTensors(locFile, landmFile, confFile string, fp16 bool) (retinaface.Tensors, error) {

	if fp16 {
		loc, err := readFloat16File(locFile)
		if err != nil {
			return retinaface.Tensors{}, err
		}

		landms, err := readFloat16File(landmFile)
		if err != nil {
			return retinaface.Tensors{}, err
		}

		conf, err := readFloat16File(confFile)
		if err != nil {
			return retinaface.Tensors{}, err
		}

		return retinaface.TensorsFromFloat16(loc, landms, conf), nil
	}

	loc, err := readFloat32File(locFile)
	if err != nil {
		return retinaface.Tensors{}, err
	}

	landms, err := readFloat32File(landmFile)
	if err != nil {
		return retinaface.Tensors{}, err
	}

	conf, err := readFloat32File(confFile)
	if err != nil {
		return retinaface.Tensors{}, err
	}

	return retinaface.Tensors{Loc: loc, Landms: landms, Conf: conf}, nil
}

// readFloat32File reads a raw little-endian float32 buffer from disk
func readFloat32File(name string) ([]float32, error) {

	raw, err := os.ReadFile(name)

	if err != nil {
		return nil, err
	}

	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%s: length %d is not a multiple of 4", name, len(raw))
	}

	buf := make([]float32, len(raw)/4)

	for i := range buf {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		buf[i] = math.Float32frombits(bits)
	}

	return buf, nil
}

// readFloat16File reads a raw little-endian float16 buffer from disk
func readFloat16File(name string) ([]uint16, error) {

	raw, err := os.ReadFile(name)

	if err != nil {
		return nil, err
	}

	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%s: length %d is not a multiple of 2", name, len(raw))
	}

	buf := make([]uint16, len(raw)/2)

	for i := range buf {
		buf[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}

	return buf, nil
}
