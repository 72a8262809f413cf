package mot2coco

import (
	"fmt"
	"strconv"
	"strings"
)

// numVisDroneClasses is the number of real object classes in a VisDrone
// annotation line.  Raw category index 0 marks ignored regions and index 11
// marks "others", both are filtered during parsing.
const numVisDroneClasses = 10

// annotationFields is the minimum number of comma separated fields on a raw
// annotation line: frame, track, left, top, width, height, score, category.
// Trailing fields (truncation, occlusion) are ignored.
const annotationFields = 8

// AnnotationDict is the exported COCO video form of one annotation
type AnnotationDict struct {
	ID         int    `json:"id"`
	CategoryID int    `json:"category_id"`
	ImageID    int    `json:"image_id"`
	TrackID    int    `json:"track_id"`
	Area       int    `json:"area"`
	BBox       [4]int `json:"bbox"`
	Iscrowd    int    `json:"iscrowd"`
}

// Annotation is one bounding box detection of one object in one frame.
// A freshly parsed Annotation has no id, the id is bound once when the
// annotation is accepted into an Image and never reassigned.
type Annotation struct {
	// imageID is the dataset wide id of the owning frame, already offset
	imageID int
	// trackID is the dataset wide track id, already offset
	trackID int
	// bbox is the bounding box in left, top, width, height order
	bbox [4]int
	// score is the raw confidence field, 0 or 1 in ground truth files
	score int
	// categoryID is the dataset wide category id
	categoryID int
	// id is the annotation id, valid only once bound is true
	id    int
	bound bool
}

// ParseAnnotation parses one raw VisDrone annotation line, resolving the
// sequence local frame and track numbers against the given running offsets.
//
// A line whose raw category index falls outside [1,10] (ignored regions and
// "others") or whose confidence score is not positive is a normal filtering
// outcome, not an error: ParseAnnotation returns (nil, nil) and the line is
// excluded from all downstream id spaces.  A line that cannot be parsed at
// all returns an error.
func ParseAnnotation(line string, imageIDOffset, trackIDOffset,
	categoryIDStart int) (*Annotation, error) {

	fields := strings.Split(strings.TrimSpace(line), ",")

	if len(fields) < annotationFields {
		return nil, fmt.Errorf("annotation line has %d fields, want at least %d",
			len(fields), annotationFields)
	}

	vals := make([]int, annotationFields)

	for i := 0; i < annotationFields; i++ {

		v, err := strconv.Atoi(strings.TrimSpace(fields[i]))

		if err != nil {
			return nil, fmt.Errorf("error parsing annotation field %d: %w", i, err)
		}

		vals[i] = v
	}

	rawCategory := vals[7]
	score := vals[6]

	// filter ignored regions, the "others" class, and zero confidence
	// placeholder boxes
	if rawCategory < 1 || rawCategory > numVisDroneClasses || score <= 0 {
		return nil, nil
	}

	return &Annotation{
		imageID:    vals[0] + imageIDOffset,
		trackID:    vals[1] + trackIDOffset,
		bbox:       [4]int{vals[2], vals[3], vals[4], vals[5]},
		score:      score,
		categoryID: rawCategory + categoryIDStart - 1,
	}, nil
}

// AnnotationFromDict rebuilds an already bound Annotation from its unified
// dataset form
func AnnotationFromDict(d AnnotationDict) *Annotation {
	return &Annotation{
		imageID:    d.ImageID,
		trackID:    d.TrackID,
		bbox:       d.BBox,
		score:      1,
		categoryID: d.CategoryID,
		id:         d.ID,
		bound:      true,
	}
}

// BindID binds the annotation id.  Binding is one-shot, a second call is a
// precondition violation and returns ErrBoundAnnotation.
func (a *Annotation) BindID(id int) error {

	if a.bound {
		return fmt.Errorf("%w: id %d", ErrBoundAnnotation, a.id)
	}

	a.id = id
	a.bound = true

	return nil
}

// ID returns the bound annotation id
func (a *Annotation) ID() (int, error) {

	if !a.bound {
		return 0, ErrUnboundAnnotation
	}

	return a.id, nil
}

// ImageID returns the dataset wide id of the frame owning this annotation
func (a *Annotation) ImageID() int {
	return a.imageID
}

// TrackID returns the dataset wide track id of this annotation
func (a *Annotation) TrackID() int {
	return a.trackID
}

// CategoryID returns the dataset wide category id of this annotation
func (a *Annotation) CategoryID() int {
	return a.categoryID
}

// BBox returns the bounding box in left, top, width, height order
func (a *Annotation) BBox() [4]int {
	return a.bbox
}

// Dict exports the annotation.  The id must have been bound first,
// otherwise ErrUnboundAnnotation is returned.
func (a *Annotation) Dict() (AnnotationDict, error) {

	if !a.bound {
		return AnnotationDict{}, ErrUnboundAnnotation
	}

	return AnnotationDict{
		ID:         a.id,
		CategoryID: a.categoryID,
		ImageID:    a.imageID,
		TrackID:    a.trackID,
		Area:       a.bbox[2] * a.bbox[3],
		BBox:       a.bbox,
		Iscrowd:    0,
	}, nil
}
