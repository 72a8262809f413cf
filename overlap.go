package mot2coco

import (
	"math"

	clipper "github.com/ctessum/go.clipper"
)

// Overlap reports a pair of kept annotations in the same frame whose
// bounding boxes overlap at or above the requested IoU.  Heavily
// overlapping boxes in one frame usually mean a duplicated source line or
// a track that was split in the raw annotations.
type Overlap struct {
	ImageID int
	// IDA and IDB are the annotation ids of the pair
	IDA int
	IDB int
	// TrackA and TrackB are the pair's track ids
	TrackA int
	TrackB int
	IoU    float64
}

// Overlaps scans every frame for pairs of kept annotations whose boxes
// overlap with IoU >= minIoU.  Like the duplicate audit it is diagnostic
// only: read only, never fails and safe to call repeatedly.
func (d *Dataset) Overlaps(minIoU float64) []Overlap {

	var out []Overlap

	for _, v := range d.videos.values() {
		for _, img := range v.Images() {

			annos := img.Annotations()

			for i := 0; i < len(annos); i++ {
				for j := i + 1; j < len(annos); j++ {

					iou := boxIoU(annos[i].BBox(), annos[j].BBox())

					if iou < minIoU {
						continue
					}

					idA, errA := annos[i].ID()
					idB, errB := annos[j].ID()

					if errA != nil || errB != nil {
						// unbound annotations have not been accepted
						// into a frame, skip
						continue
					}

					out = append(out, Overlap{
						ImageID: img.ID(),
						IDA:     idA,
						IDB:     idB,
						TrackA:  annos[i].TrackID(),
						TrackB:  annos[j].TrackID(),
						IoU:     iou,
					})
				}
			}
		}
	}

	return out
}

// boxIoU computes the intersection over union of two boxes in left, top,
// width, height order.  The intersection polygon is obtained by clipping
// one box against the other.
func boxIoU(a, b [4]int) float64 {

	areaA := float64(a[2]) * float64(a[3])
	areaB := float64(b[2]) * float64(b[3])

	if areaA <= 0 || areaB <= 0 {
		return 0
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(boxPath(a), clipper.PtSubject, true)
	c.AddPath(boxPath(b), clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection, clipper.PftEvenOdd,
		clipper.PftEvenOdd)

	if !ok {
		return 0
	}

	intersection := 0.0

	for _, p := range solution {
		intersection += polygonArea(p)
	}

	union := areaA + areaB - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}

// boxPath converts a left, top, width, height box into a closed clipper
// path
func boxPath(box [4]int) clipper.Path {

	left := clipper.CInt(box[0])
	top := clipper.CInt(box[1])
	right := clipper.CInt(box[0] + box[2])
	bottom := clipper.CInt(box[1] + box[3])

	return clipper.Path{
		&clipper.IntPoint{X: left, Y: top},
		&clipper.IntPoint{X: right, Y: top},
		&clipper.IntPoint{X: right, Y: bottom},
		&clipper.IntPoint{X: left, Y: bottom},
	}
}

// polygonArea computes the absolute area of a closed polygon using the
// shoelace formula
func polygonArea(p clipper.Path) float64 {

	if len(p) < 3 {
		return 0
	}

	sum := 0.0

	for i := 0; i < len(p); i++ {
		j := (i + 1) % len(p)
		sum += float64(p[i].X)*float64(p[j].Y) - float64(p[j].X)*float64(p[i].Y)
	}

	return math.Abs(sum) / 2
}
