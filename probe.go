package mot2coco

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Prober reports the pixel dimensions of a frame image file.  The importer
// probes only the first frame of each sequence and assumes the dimensions
// hold for the whole sequence.
type Prober interface {
	Probe(file string) (width, height int, err error)
}

// GoCVProber probes image dimensions by decoding the file with OpenCV
type GoCVProber struct{}

// Probe decodes the image file and returns its width and height
func (GoCVProber) Probe(file string) (int, int, error) {

	img := gocv.IMRead(file, gocv.IMReadColor)

	if img.Empty() {
		return 0, 0, fmt.Errorf("error reading image %s", file)
	}

	defer img.Close()

	return img.Cols(), img.Rows(), nil
}
