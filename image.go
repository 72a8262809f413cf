package mot2coco

import "fmt"

// noFrame is the prev/next frame id sentinel at sequence boundaries
const noFrame = -1

// ImageDict is the exported COCO video form of one frame
type ImageDict struct {
	FileName    string `json:"file_name"`
	ID          int    `json:"id"`
	FrameID     int    `json:"frame_id"`
	PrevFrameID int    `json:"prev_frame_id"`
	NextFrameID int    `json:"next_frame_id"`
	VideoID     int    `json:"video_id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Image is one video frame.  It owns the annotations accepted for the frame,
// keyed by their bound annotation id in insertion order.
type Image struct {
	// fileName is the frame image path relative to the dataset root
	fileName string
	// id is the dataset wide image id
	id int
	// frameID is the sequence local frame number, used only for prev/next
	// frame linkage
	frameID int
	// frameIDStart is the sequence local id of the first frame
	frameIDStart int
	// videoID is the id of the owning sequence
	videoID int
	// width and height of the frame in pixels
	width  int
	height int
	// annotations owned by this frame, keyed by annotation id
	annotations ordmap[*Annotation]
}

// NewImage creates a frame record with no annotations attached
func NewImage(fileName string, id, frameID, frameIDStart, videoID,
	width, height int) *Image {

	return &Image{
		fileName:     fileName,
		id:           id,
		frameID:      frameID,
		frameIDStart: frameIDStart,
		videoID:      videoID,
		width:        width,
		height:       height,
		annotations:  newOrdmap[*Annotation](),
	}
}

// ImageFromDict rebuilds a frame record from its unified dataset form.
// The frame id start is taken as the frame's own id when it reports no
// predecessor, which reproduces the original prev/next linkage on export.
func ImageFromDict(d ImageDict) *Image {

	start := d.FrameID

	if d.PrevFrameID != noFrame {
		start = d.FrameID - 1
	}

	return &Image{
		fileName:     d.FileName,
		id:           d.ID,
		frameID:      d.FrameID,
		frameIDStart: start,
		videoID:      d.VideoID,
		width:        d.Width,
		height:       d.Height,
		annotations:  newOrdmap[*Annotation](),
	}
}

// ID returns the dataset wide image id
func (img *Image) ID() int {
	return img.id
}

// FrameID returns the sequence local frame number
func (img *Image) FrameID() int {
	return img.frameID
}

// FileName returns the frame image path relative to the dataset root
func (img *Image) FileName() string {
	return img.fileName
}

// VideoID returns the id of the owning sequence
func (img *Image) VideoID() int {
	return img.videoID
}

// NumAnnotations returns the number of annotations owned by this frame
func (img *Image) NumAnnotations() int {
	return img.annotations.size()
}

// Annotations returns the owned annotations in insertion order
func (img *Image) Annotations() []*Annotation {
	return img.annotations.values()
}

// TrackIDs returns the track id of every owned annotation in insertion
// order, without deduplication
func (img *Image) TrackIDs() []int {

	tracks := make([]int, 0, img.annotations.size())

	for _, anno := range img.annotations.values() {
		tracks = append(tracks, anno.TrackID())
	}

	return tracks
}

// AnnotationIDs returns the bound annotation ids in insertion order
func (img *Image) AnnotationIDs() []int {
	return img.annotations.ids()
}

// AttachAnnotations binds sequentially increasing ids starting at
// annotationIDStart to the given annotations in source order and takes
// ownership of them.  This is the single point where an annotation's
// identity becomes permanent.
func (img *Image) AttachAnnotations(annos []*Annotation,
	annotationIDStart int) error {

	for idx, anno := range annos {

		id := annotationIDStart + idx

		if err := anno.BindID(id); err != nil {
			return fmt.Errorf("error binding annotation id %d on frame %d: %w",
				id, img.id, err)
		}

		img.annotations.set(id, anno)
	}

	return nil
}

// AddAnnotation inserts an already bound annotation, used when replaying
// a unified dataset
func (img *Image) AddAnnotation(d AnnotationDict) {
	img.annotations.set(d.ID, AnnotationFromDict(d))
}

// Dict exports the frame and its annotations.  The prev/next frame linkage
// is computed against maxFrameID, the maximum frame id present in the owning
// sequence, with -1 sentinels at the sequence boundaries.
func (img *Image) Dict(maxFrameID int) (ImageDict, []AnnotationDict, error) {

	prev := noFrame

	if img.frameID > img.frameIDStart {
		prev = img.frameID - 1
	}

	next := noFrame

	if img.frameID < maxFrameID {
		next = img.frameID + 1
	}

	annos := make([]AnnotationDict, 0, img.annotations.size())

	for _, anno := range img.annotations.values() {

		d, err := anno.Dict()

		if err != nil {
			return ImageDict{}, nil, fmt.Errorf("error exporting frame %d: %w",
				img.id, err)
		}

		annos = append(annos, d)
	}

	return ImageDict{
		FileName:    img.fileName,
		ID:          img.id,
		FrameID:     img.frameID,
		PrevFrameID: prev,
		NextFrameID: next,
		VideoID:     img.videoID,
		Width:       img.width,
		Height:      img.height,
	}, annos, nil
}
