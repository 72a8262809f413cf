/*
coco-preview renders one frame of a converted dataset with its annotation
boxes drawn on, to visually verify a conversion.
*/
package main

import (
	"flag"
	"log"
	"path/filepath"

	"gocv.io/x/gocv"

	mot2coco "github.com/swarmvision/go-mot2coco"
	"github.com/swarmvision/go-mot2coco/render"
)

func main() {

	jsonFile := flag.String("json", "", "unified dataset JSON file")
	datasetDir := flag.String("dir", "", "dataset directory the frame images live under")
	imageID := flag.Int("image", 0, "dataset wide image id of the frame to render")
	outFile := flag.String("o", "preview.jpg", "output image file")
	fontFile := flag.String("font", "", "optional TTF font for the frame title")
	flag.Parse()

	if *jsonFile == "" || *datasetDir == "" || *imageID == 0 {
		log.Fatal("need -json, -dir and -image")
	}

	doc, err := mot2coco.ReadUnified(*jsonFile)

	if err != nil {
		log.Fatalf("Error reading dataset: %v", err)
	}

	var frame *mot2coco.ImageDict

	for i := range doc.Images {
		if doc.Images[i].ID == *imageID {
			frame = &doc.Images[i]
			break
		}
	}

	if frame == nil {
		log.Fatalf("image %d not found in dataset", *imageID)
	}

	var annos []mot2coco.AnnotationDict

	for _, anno := range doc.Annotations {
		if anno.ImageID == *imageID {
			annos = append(annos, anno)
		}
	}

	framePath := filepath.Join(*datasetDir, filepath.FromSlash(frame.FileName))

	img := gocv.IMRead(framePath, gocv.IMReadColor)

	if img.Empty() {
		log.Fatalf("Error reading frame image %s", framePath)
	}

	defer img.Close()

	render.AnnotationBoxes(&img, annos, doc.Categories, render.DefaultFont(), 2)

	if *fontFile != "" {

		face, err := render.LoadFace(*fontFile, 24)

		if err != nil {
			log.Fatalf("Error loading font: %v", err)
		}

		title := frame.FileName

		if err := render.TTFText(&img, face, title, 10, 30, render.White); err != nil {
			log.Fatalf("Error rendering title: %v", err)
		}
	}

	if ok := gocv.IMWrite(*outFile, img); !ok {
		log.Fatalf("Error writing output image %s", *outFile)
	}

	log.Printf("wrote preview of image %d (%d annotations) to %s",
		*imageID, len(annos), *outFile)
}
