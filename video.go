package mot2coco

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// VideoDict is the exported COCO video form of one sequence
type VideoDict struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
}

// Video is one recorded sequence, a directory of frame images plus one raw
// annotation file.  It owns the frames keyed by dataset wide image id in
// insertion order.
type Video struct {
	// id is the dataset wide video id
	id int
	// fileName is the sequence directory relative to the dataset root,
	// eg. "sequences/uav0000086_00000_v"
	fileName string
	// images owned by this sequence, keyed by image id
	images ordmap[*Image]
	// allTrackIDs is the deduplicated ordered set of offset track ids seen
	// on every raw annotation line, including filtered ones.  It is the
	// extent the allocator uses to compute the next sequence's track
	// offset.  Empty for sequences replayed from a unified dataset.
	allTrackIDs []int
	// loaded is true once the sequence has been populated from source
	loaded bool
}

// NewVideo creates an empty sequence record
func NewVideo(id int, fileName string) *Video {
	return &Video{
		id:       id,
		fileName: fileName,
		images:   newOrdmap[*Image](),
	}
}

// VideoFromDict rebuilds a sequence record from its unified dataset form
func VideoFromDict(d VideoDict) *Video {
	return NewVideo(d.ID, d.FileName)
}

// ID returns the dataset wide video id
func (v *Video) ID() int {
	return v.id
}

// FileName returns the sequence directory relative to the dataset root
func (v *Video) FileName() string {
	return v.fileName
}

// Len returns the number of frames owned by this sequence
func (v *Video) Len() int {
	return v.images.size()
}

// Image returns the frame with the given dataset wide image id
func (v *Video) Image(imageID int) (*Image, error) {

	img, ok := v.images.get(imageID)

	if !ok {
		return nil, fmt.Errorf("%w: image %d in video %d", ErrNotFound,
			imageID, v.id)
	}

	return img, nil
}

// Images returns the owned frames in insertion order
func (v *Video) Images() []*Image {
	return v.images.values()
}

// ImageIDs returns the owned image ids in insertion order
func (v *Video) ImageIDs() []int {
	return v.images.ids()
}

// TrackIDs returns the deduplicated ordered set of track ids appearing in
// any of this sequence's kept annotations
func (v *Video) TrackIDs() []int {

	var tracks []int
	seen := make(map[int]bool)

	for _, img := range v.images.values() {
		for _, trackID := range img.TrackIDs() {
			if !seen[trackID] {
				seen[trackID] = true
				tracks = append(tracks, trackID)
			}
		}
	}

	return tracks
}

// AllTrackIDs returns the deduplicated ordered set of track ids seen on
// every raw annotation line of the sequence, including filtered lines.
// For a sequence replayed from a unified dataset the raw extent is gone and
// the kept track ids are returned instead.
func (v *Video) AllTrackIDs() []int {

	if v.allTrackIDs != nil {
		out := make([]int, len(v.allTrackIDs))
		copy(out, v.allTrackIDs)
		return out
	}

	return v.TrackIDs()
}

// AnnotationIDs returns the bound annotation ids of all owned frames in
// insertion order
func (v *Video) AnnotationIDs() []int {

	var ids []int

	for _, img := range v.images.values() {
		ids = append(ids, img.AnnotationIDs()...)
	}

	return ids
}

// NumAnnotations returns the number of kept annotations across all frames
func (v *Video) NumAnnotations() int {

	total := 0

	for _, img := range v.images.values() {
		total += img.NumAnnotations()
	}

	return total
}

// AddImage inserts a frame rebuilt from a unified dataset
func (v *Video) AddImage(d ImageDict) {
	v.images.set(d.ID, ImageFromDict(d))
}

// LoadFromSource populates the sequence from its raw VisDrone source: the
// frame image directory and the sibling annotation text file.
//
// Frame files are ordered by a stable lexicographic sort of their names
// before frame ids are assigned, so frame ordering does not depend on the
// platform's directory listing order.  Only the first frame is probed for
// dimensions, which are assumed to hold for the whole sequence.
//
// The three offsets are the running counters threaded between sequences by
// the dataset allocator.  Annotation ids are bound from a single running
// counter across all frames of the sequence, so they are dense and
// monotonically increasing within the sequence.
func (v *Video) LoadFromSource(datasetDir string, prober Prober,
	preset Preset, imageIDOffset, trackIDOffset, annotationIDOffset int) error {

	videoDir := filepath.Join(datasetDir, filepath.FromSlash(v.fileName))

	entries, err := os.ReadDir(videoDir)

	if err != nil {
		return fmt.Errorf("error reading sequence directory: %w", err)
	}

	// os.ReadDir returns entries sorted by name, which pins the frame
	// ordering to a stable lexicographic order
	var frameFiles []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		frameFiles = append(frameFiles, entry.Name())
	}

	if len(frameFiles) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySequence, videoDir)
	}

	// probe the first frame and assume uniform dimensions
	width, height, err := prober.Probe(filepath.Join(videoDir, frameFiles[0]))

	if err != nil {
		return fmt.Errorf("error probing frame dimensions: %w", err)
	}

	// group surviving annotations by their resolved image id
	grouped, allTracks, err := v.readAnnotations(datasetDir, preset,
		imageIDOffset, trackIDOffset)

	if err != nil {
		return err
	}

	// distribute annotations over the frames, binding annotation ids from
	// one running counter for the whole sequence
	nextAnnotationID := preset.AnnotationIDStart + annotationIDOffset

	for idx, frameFile := range frameFiles {

		frameID := preset.FrameIDStart + idx
		imageID := frameID + imageIDOffset

		img := NewImage(path.Join(v.fileName, frameFile), imageID, frameID,
			preset.FrameIDStart, v.id, width, height)

		annos := grouped[imageID]

		if err := img.AttachAnnotations(annos, nextAnnotationID); err != nil {
			return err
		}

		nextAnnotationID += len(annos)
		v.images.set(imageID, img)
	}

	v.allTrackIDs = allTracks
	v.loaded = true

	return nil
}

// readAnnotations parses the sequence's raw annotation file, returning the
// surviving annotations grouped by resolved image id and the ordered set of
// offset track ids seen on every line including filtered ones
func (v *Video) readAnnotations(datasetDir string, preset Preset,
	imageIDOffset, trackIDOffset int) (map[int][]*Annotation, []int, error) {

	annotationFile := filepath.Join(datasetDir, "annotations",
		path.Base(v.fileName)+".txt")

	f, err := os.Open(annotationFile)

	if err != nil {
		return nil, nil, fmt.Errorf("error opening annotation file: %w", err)
	}

	defer f.Close()

	grouped := make(map[int][]*Annotation)

	var allTracks []int
	seenTracks := make(map[int]bool)

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {

		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		// the raw track extent includes filtered lines, so it is read
		// before the filter is applied
		rawTrack, err := rawTrackID(line)

		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", annotationFile, lineNum, err)
		}

		trackID := rawTrack + trackIDOffset

		if !seenTracks[trackID] {
			seenTracks[trackID] = true
			allTracks = append(allTracks, trackID)
		}

		anno, err := ParseAnnotation(line, imageIDOffset, trackIDOffset,
			preset.CategoryIDStart)

		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", annotationFile, lineNum, err)
		}

		if anno == nil {
			// filtered line, consumes no annotation id
			continue
		}

		grouped[anno.ImageID()] = append(grouped[anno.ImageID()], anno)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading annotation file: %w", err)
	}

	return grouped, allTracks, nil
}

// rawTrackID reads the sequence local track number from a raw annotation
// line
func rawTrackID(line string) (int, error) {

	fields := strings.SplitN(line, ",", 3)

	if len(fields) < 2 {
		return 0, fmt.Errorf("annotation line has no track field")
	}

	track, err := strconv.Atoi(strings.TrimSpace(fields[1]))

	if err != nil {
		return 0, fmt.Errorf("error parsing track field: %w", err)
	}

	return track, nil
}

// maxFrameID returns the maximum sequence local frame id among the owned
// frames
func (v *Video) maxFrameID() int {

	max := 0

	for _, img := range v.images.values() {
		if img.FrameID() > max {
			max = img.FrameID()
		}
	}

	return max
}

// Dict exports the sequence, its frames and their annotations.  The
// prev/next frame linkage of every frame is computed against the maximum
// frame id present in the sequence, not a fixed sequence length.
func (v *Video) Dict() (VideoDict, []ImageDict, []AnnotationDict, error) {

	maxFrame := v.maxFrameID()

	images := make([]ImageDict, 0, v.images.size())
	var annotations []AnnotationDict

	for _, img := range v.images.values() {

		imgDict, annos, err := img.Dict(maxFrame)

		if err != nil {
			return VideoDict{}, nil, nil, fmt.Errorf("error exporting video %d: %w",
				v.id, err)
		}

		images = append(images, imgDict)
		annotations = append(annotations, annos...)
	}

	return VideoDict{
		ID:       v.id,
		FileName: v.fileName,
	}, images, annotations, nil
}
