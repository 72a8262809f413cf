package mot2coco

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// UnifiedDataset is the top level unified dataset document, the COCO video
// form of a whole multi-sequence dataset.  Order within each collection is
// the insertion order produced by the exporter.
type UnifiedDataset struct {
	Categories  []Category       `json:"categories"`
	Annotations []AnnotationDict `json:"annotations"`
	Images      []ImageDict      `json:"images"`
	Videos      []VideoDict      `json:"videos"`
}

// IDSpace names one of the dataset's id spaces
type IDSpace string

const (
	SpaceVideo      IDSpace = "video"
	SpaceImage      IDSpace = "image"
	SpaceTrack      IDSpace = "track"
	SpaceAnnotation IDSpace = "annotation"
)

// Duplicate reports one id that occurred more than once within an id space
type Duplicate struct {
	Space IDSpace
	ID    int
	Count int
}

// idCounts records how often each id arrived in each id space.  Arrival is
// counted at insertion time, before the ordered mappings collapse
// duplicates, so the audit sees collisions the container representation
// cannot hold.
type idCounts struct {
	video      map[int]int
	image      map[int]int
	track      map[int]int
	annotation map[int]int
}

func newIDCounts() idCounts {
	return idCounts{
		video:      make(map[int]int),
		image:      make(map[int]int),
		track:      make(map[int]int),
		annotation: make(map[int]int),
	}
}

// Dataset owns the category registry and the ordered collection of
// sequences keyed by video id.  It drives the import pipeline, threads the
// running image/track/annotation offsets from one sequence into the next
// and performs the post-import duplicate audit.
type Dataset struct {
	categories []Category
	videos     ordmap[*Video]
	// datasetDir is the absolute source dataset directory, set by
	// LoadFromSources
	datasetDir string
	counts     idCounts
}

// New creates an empty dataset with the given category registry
func New(categories []Category) *Dataset {
	return &Dataset{
		categories: categories,
		videos:     newOrdmap[*Video](),
		counts:     newIDCounts(),
	}
}

// Categories returns the category registry
func (d *Dataset) Categories() []Category {
	return d.categories
}

// Len returns the number of sequences in the dataset
func (d *Dataset) Len() int {
	return d.videos.size()
}

// Video returns the sequence with the given video id
func (d *Dataset) Video(videoID int) (*Video, error) {

	v, ok := d.videos.get(videoID)

	if !ok {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}

	return v, nil
}

// Videos returns the sequences in insertion order
func (d *Dataset) Videos() []*Video {
	return d.videos.values()
}

// VideoIDs returns the video ids in insertion order
func (d *Dataset) VideoIDs() []int {
	return d.videos.ids()
}

// ImageIDsPerVideo returns the image ids of each sequence keyed by video id
func (d *Dataset) ImageIDsPerVideo() map[int][]int {

	out := make(map[int][]int, d.videos.size())

	for _, v := range d.videos.values() {
		out[v.ID()] = v.ImageIDs()
	}

	return out
}

// ImageIDs returns the image ids of all sequences, flattened in sequence
// order
func (d *Dataset) ImageIDs() []int {

	var ids []int

	for _, v := range d.videos.values() {
		ids = append(ids, v.ImageIDs()...)
	}

	return ids
}

// TrackIDs returns the kept track ids of all sequences, flattened per
// sequence in sequence order without global deduplication
func (d *Dataset) TrackIDs() []int {

	var ids []int

	for _, v := range d.videos.values() {
		ids = append(ids, v.TrackIDs()...)
	}

	return ids
}

// AnnotationIDs returns the bound annotation ids of all sequences,
// flattened in sequence order
func (d *Dataset) AnnotationIDs() []int {

	var ids []int

	for _, v := range d.videos.values() {
		ids = append(ids, v.AnnotationIDs()...)
	}

	return ids
}

// DatasetName returns the base name of the source dataset directory
func (d *Dataset) DatasetName() string {
	return filepath.Base(d.datasetDir)
}

// FromUnified rebuilds the ownership tree from an already unified dataset
// document.  Images are grouped under their declared video id and
// annotations under the video owning their declared image id, resolved
// through an image to video map built before any annotation is processed,
// so annotations may arrive in any order relative to their owning image.
//
// An image naming an unknown video id, or an annotation naming an unknown
// image id, fails fast with an error wrapping ErrNotFound.
func FromUnified(doc UnifiedDataset) (*Dataset, error) {

	d := New(doc.Categories)

	for _, videoDict := range doc.Videos {
		d.videos.set(videoDict.ID, VideoFromDict(videoDict))
		d.counts.video[videoDict.ID]++
	}

	for _, imageDict := range doc.Images {

		v, ok := d.videos.get(imageDict.VideoID)

		if !ok {
			return nil, fmt.Errorf("%w: video %d declared by image %d",
				ErrNotFound, imageDict.VideoID, imageDict.ID)
		}

		v.AddImage(imageDict)
		d.counts.image[imageDict.ID]++
	}

	// annotations carry only an image id, resolve owners up front
	videoOfImage := make(map[int]int)

	for _, v := range d.videos.values() {
		for _, imageID := range v.ImageIDs() {
			videoOfImage[imageID] = v.ID()
		}
	}

	// track ids deduplicate within a video but not across videos, two
	// videos sharing a track id both count as duplicates
	tracksPerVideo := make(map[int]map[int]bool)

	for _, annoDict := range doc.Annotations {

		videoID, ok := videoOfImage[annoDict.ImageID]

		if !ok {
			return nil, fmt.Errorf("%w: image %d declared by annotation %d",
				ErrNotFound, annoDict.ImageID, annoDict.ID)
		}

		v, _ := d.videos.get(videoID)

		img, err := v.Image(annoDict.ImageID)

		if err != nil {
			return nil, err
		}

		img.AddAnnotation(annoDict)
		d.counts.annotation[annoDict.ID]++

		if tracksPerVideo[videoID] == nil {
			tracksPerVideo[videoID] = make(map[int]bool)
		}
		tracksPerVideo[videoID][annoDict.TrackID] = true
	}

	for _, tracks := range tracksPerVideo {
		for trackID := range tracks {
			d.counts.track[trackID]++
		}
	}

	return d, nil
}

// LoadFromSources imports every raw sequence found under datasetDir, which
// must contain an "annotations" directory of per-sequence text files and a
// "sequences" directory of per-sequence frame directories.
//
// Sequences are assigned sequential video ids starting at the preset's
// video id start, in lexicographic order of their annotation file names.
// Three running counters are threaded from one sequence into the next:
// the image offset advances by the frame count of the sequence just
// loaded, while the track and annotation offsets are recomputed as
// max(assigned id) + 1 - start.  The max based recomputation rather than a
// running sum is deliberate: it stays collision free even when a
// sequence's internal numbering has gaps.
//
// A sequence either loads wholly and is folded into the dataset, or the
// import stops with an error and the sequence is not present at all.
func (d *Dataset) LoadFromSources(datasetDir string, prober Prober,
	preset Preset) error {

	absDir, err := filepath.Abs(datasetDir)

	if err != nil {
		return fmt.Errorf("error resolving dataset directory: %w", err)
	}

	d.datasetDir = absDir

	annotationsDir := filepath.Join(absDir, "annotations")

	entries, err := os.ReadDir(annotationsDir)

	if err != nil {
		return fmt.Errorf("error reading annotations directory: %w", err)
	}

	videoID := preset.VideoIDStart
	imageOffset := 0
	trackOffset := 0
	annotationOffset := 0

	for _, entry := range entries {

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		seqName := strings.TrimSuffix(entry.Name(), ".txt")

		video := NewVideo(videoID, path.Join("sequences", seqName))

		err := video.LoadFromSource(absDir, prober, preset, imageOffset,
			trackOffset, annotationOffset)

		if err != nil {
			return fmt.Errorf("error loading sequence %s: %w", seqName, err)
		}

		// fold the sequence in, ids are permanent from here
		d.videos.set(videoID, video)
		d.recordVideoCounts(video)

		log.Printf("loaded sequence %s: %d frames, %d tracks, %d annotations",
			seqName, video.Len(), len(video.TrackIDs()), video.NumAnnotations())

		// thread the running offsets into the next sequence
		imageOffset += video.Len()

		if max, ok := maxID(video.AllTrackIDs()); ok {
			trackOffset = max + 1 - preset.TrackIDStart
		}

		if max, ok := maxID(video.AnnotationIDs()); ok {
			annotationOffset = max + 1 - preset.AnnotationIDStart
		}

		videoID++
	}

	return nil
}

// recordVideoCounts records the arrival of a freshly imported sequence's
// ids for the duplicate audit
func (d *Dataset) recordVideoCounts(v *Video) {

	d.counts.video[v.ID()]++

	for _, imageID := range v.ImageIDs() {
		d.counts.image[imageID]++
	}

	for _, trackID := range v.TrackIDs() {
		d.counts.track[trackID]++
	}

	for _, annotationID := range v.AnnotationIDs() {
		d.counts.annotation[annotationID]++
	}
}

// Audit counts id occurrences within each id space and reports every id
// seen more than once.  Track ids are deduplicated within each video but
// not across videos.  The audit is diagnostic only: it never fails, never
// mutates state and is safe to call repeatedly.
func (d *Dataset) Audit() []Duplicate {

	var out []Duplicate

	spaces := []struct {
		space  IDSpace
		counts map[int]int
	}{
		{SpaceVideo, d.counts.video},
		{SpaceImage, d.counts.image},
		{SpaceTrack, d.counts.track},
		{SpaceAnnotation, d.counts.annotation},
	}

	for _, s := range spaces {

		var ids []int

		for id, count := range s.counts {
			if count > 1 {
				ids = append(ids, id)
			}
		}

		sort.Ints(ids)

		for _, id := range ids {
			out = append(out, Duplicate{
				Space: s.space,
				ID:    id,
				Count: s.counts[id],
			})
		}
	}

	return out
}

// Dict exports the whole dataset in insertion order.  It is read only and
// idempotent, exporting twice produces identical documents.
func (d *Dataset) Dict() (UnifiedDataset, error) {

	doc := UnifiedDataset{
		Categories: d.categories,
	}

	for _, v := range d.videos.values() {

		videoDict, images, annotations, err := v.Dict()

		if err != nil {
			return UnifiedDataset{}, err
		}

		doc.Videos = append(doc.Videos, videoDict)
		doc.Images = append(doc.Images, images...)
		doc.Annotations = append(doc.Annotations, annotations...)
	}

	return doc, nil
}

// DefaultJSONPath returns the output path the converter writes to when none
// is given: <dataset dir>/annotations/<dataset name>.json
func (d *Dataset) DefaultJSONPath() string {
	return filepath.Join(d.datasetDir, "annotations", d.DatasetName()+".json")
}

// WriteJSON exports the dataset and writes it as JSON to the given path.
// An indent of 0 writes compact JSON.
func (d *Dataset) WriteJSON(jsonPath string, indent int) error {

	doc, err := d.Dict()

	if err != nil {
		return err
	}

	var buf []byte

	if indent > 0 {
		buf, err = json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
	} else {
		buf, err = json.Marshal(doc)
	}

	if err != nil {
		return fmt.Errorf("error encoding dataset: %w", err)
	}

	if err := os.WriteFile(jsonPath, buf, 0644); err != nil {
		return fmt.Errorf("error writing dataset: %w", err)
	}

	return nil
}

// ReadUnified reads a unified dataset document from a JSON file
func ReadUnified(jsonPath string) (UnifiedDataset, error) {

	buf, err := os.ReadFile(jsonPath)

	if err != nil {
		return UnifiedDataset{}, fmt.Errorf("error reading dataset file: %w", err)
	}

	var doc UnifiedDataset

	if err := json.Unmarshal(buf, &doc); err != nil {
		return UnifiedDataset{}, fmt.Errorf("error decoding dataset file: %w", err)
	}

	return doc, nil
}

// maxID returns the maximum of ids, with ok false for an empty slice
func maxID(ids []int) (int, bool) {

	if len(ids) == 0 {
		return 0, false
	}

	max := ids[0]

	for _, id := range ids[1:] {
		if id > max {
			max = id
		}
	}

	return max, true
}
