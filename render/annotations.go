// Package render draws a frame's annotations onto the frame image for
// visual inspection of a converted dataset.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	mot2coco "github.com/swarmvision/go-mot2coco"
)

// boxLabel records the label of one box so all labels can be drawn as the
// top most layer after the boxes
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// AnnotationBoxes draws a bounding box for every annotation, colored by
// track id and labelled with the category name and track id
func AnnotationBoxes(img *gocv.Mat, annos []mot2coco.AnnotationDict,
	categories []mot2coco.Category, font Font, lineThickness int) {

	names := make(map[int]string, len(categories))

	for _, category := range categories {
		names[category.ID] = category.Name
	}

	labels := make([]boxLabel, 0, len(annos))

	for _, anno := range annos {

		useClr := colorFor(anno.TrackID)

		left := anno.BBox[0]
		top := anno.BBox[1]
		right := anno.BBox[0] + anno.BBox[2]
		bottom := anno.BBox[1] + anno.BBox[3]

		// box around the object
		rect := image.Rect(left, top, right, bottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		name := names[anno.CategoryID]

		if name == "" {
			name = fmt.Sprintf("category %d", anno.CategoryID)
		}

		text := fmt.Sprintf("%s #%d", name, anno.TrackID)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		centerX := left + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		textPos := image.Pt(centerX-textSize.X/2, top-font.BottomPad)

		// filled box the label text gets written on
		labelRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			top-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, top)

		labels = append(labels, boxLabel{
			rect:    labelRect,
			clr:     useClr,
			text:    text,
			textPos: textPos,
		})
	}

	// draw the labels last so they sit above overlapping boxes
	for _, label := range labels {
		gocv.Rectangle(img, label.rect, label.clr, -1)

		gocv.PutTextWithParams(img, label.text, label.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
