package mot2coco

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeTwoSequenceDataset lays out a small two sequence dataset.  seq1's
// raw track numbering has a gap (tracks 1 and 7) to exercise the max based
// offset recomputation.
func writeTwoSequenceDataset(t *testing.T) string {

	t.Helper()

	root := t.TempDir()

	writeSequence(t, root, "seq1", 2, []string{
		"1,1,10,10,20,20,1,1",
		"2,7,40,40,20,20,1,4",
	})

	writeSequence(t, root, "seq2", 3, []string{
		"1,1,10,10,20,20,1,2",
		"2,2,40,40,20,20,1,4",
		"3,2,42,42,20,20,1,4",
	})

	return root
}

func TestLoadFromSourcesOffsetThreading(t *testing.T) {

	dataset := New(VisDronePreset().Categories())

	err := dataset.LoadFromSources(writeTwoSequenceDataset(t),
		stubProber{1920, 1080}, VisDronePreset())

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if dataset.Len() != 2 {
		t.Fatalf("video count: got %d, want 2", dataset.Len())
	}

	wantVideoIDs := []int{1, 2}

	for i, videoID := range dataset.VideoIDs() {
		if videoID != wantVideoIDs[i] {
			t.Errorf("video id %d: got %d, want %d", i, videoID, wantVideoIDs[i])
		}
	}

	seq1, err := dataset.Video(1)

	if err != nil {
		t.Fatal(err)
	}

	seq2, err := dataset.Video(2)

	if err != nil {
		t.Fatal(err)
	}

	// image id spaces of consecutive sequences are contiguous
	max1, _ := maxID(seq1.ImageIDs())
	min2 := seq2.ImageIDs()[0]

	if min2 != max1+1 {
		t.Errorf("image id continuation: seq1 max %d, seq2 min %d", max1, min2)
	}

	// seq1's raw tracks are 1 and 7, so the track offset recomputes to
	// max+1-start = 7 and seq2's raw tracks 1 and 2 map to 8 and 9,
	// not to the count based 3 and 4
	wantTracks := []int{8, 9}
	gotTracks := seq2.TrackIDs()

	if diff := cmp.Diff(wantTracks, gotTracks); diff != "" {
		t.Errorf("seq2 track ids mismatch (-want +got):\n%s", diff)
	}

	// seq1 bound annotation ids 1 and 2, so seq2 continues at 3
	wantAnnotationIDs := []int{3, 4, 5}
	gotAnnotationIDs := seq2.AnnotationIDs()

	if diff := cmp.Diff(wantAnnotationIDs, gotAnnotationIDs); diff != "" {
		t.Errorf("seq2 annotation ids mismatch (-want +got):\n%s", diff)
	}

	// a freshly imported dataset has no duplicate ids
	if duplicates := dataset.Audit(); len(duplicates) != 0 {
		t.Errorf("unexpected duplicates: %+v", duplicates)
	}
}

// the annotation offset is recomputed from the maximum assigned id, not the
// number of annotations, so internal gaps cannot cause collisions
func TestOffsetRecomputeUsesMaxNotCount(t *testing.T) {

	preset := VisDronePreset()

	v := NewVideo(1, "sequences/gappy")

	img1 := NewImage("sequences/gappy/0000001.jpg", 1, 1, 1, 1, 640, 480)

	annos1 := []*Annotation{
		mustParse(t, "1,1,0,0,10,10,1,1", 0, 0),
		mustParse(t, "1,2,5,5,10,10,1,2", 0, 0),
	}

	if err := img1.AttachAnnotations(annos1, 1); err != nil {
		t.Fatal(err)
	}

	v.images.set(1, img1)

	img2 := NewImage("sequences/gappy/0000002.jpg", 2, 2, 1, 1, 640, 480)

	annos2 := []*Annotation{
		mustParse(t, "2,3,0,0,10,10,1,1", 0, 0),
	}

	// ids 3 and 4 were consumed elsewhere, this frame starts at 5
	if err := img2.AttachAnnotations(annos2, 5); err != nil {
		t.Fatal(err)
	}

	v.images.set(2, img2)

	max, ok := maxID(v.AnnotationIDs())

	if !ok {
		t.Fatal("no annotation ids")
	}

	nextOffset := max + 1 - preset.AnnotationIDStart

	if nextOffset != 5 {
		t.Errorf("next annotation offset: got %d, want 5 (count based would give %d)",
			nextOffset, v.NumAnnotations())
	}
}

func TestRoundTrip(t *testing.T) {

	dataset := New(VisDronePreset().Categories())

	err := dataset.LoadFromSources(writeTwoSequenceDataset(t),
		stubProber{1920, 1080}, VisDronePreset())

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	doc, err := dataset.Dict()

	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	replayed, err := FromUnified(doc)

	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	doc2, err := replayed.Dict()

	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}

	if diff := cmp.Diff(doc, doc2); diff != "" {
		t.Errorf("round trip mismatch (-original +replayed):\n%s", diff)
	}

	// export is idempotent
	doc3, err := replayed.Dict()

	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(doc2, doc3); diff != "" {
		t.Errorf("second export differs (-first +second):\n%s", diff)
	}
}

func TestAuditDuplicates(t *testing.T) {

	// two videos both carrying annotation id 7 and track id 3
	doc := UnifiedDataset{
		Categories: BuildCategories([]string{"pedestrian"}, 1),
		Videos: []VideoDict{
			{ID: 1, FileName: "sequences/a"},
			{ID: 2, FileName: "sequences/b"},
		},
		Images: []ImageDict{
			{FileName: "sequences/a/1.jpg", ID: 1, FrameID: 1, PrevFrameID: -1,
				NextFrameID: -1, VideoID: 1, Width: 10, Height: 10},
			{FileName: "sequences/b/1.jpg", ID: 2, FrameID: 1, PrevFrameID: -1,
				NextFrameID: -1, VideoID: 2, Width: 10, Height: 10},
		},
		Annotations: []AnnotationDict{
			{ID: 7, CategoryID: 1, ImageID: 1, TrackID: 3, Area: 100,
				BBox: [4]int{0, 0, 10, 10}},
			{ID: 7, CategoryID: 1, ImageID: 2, TrackID: 3, Area: 100,
				BBox: [4]int{0, 0, 10, 10}},
		},
	}

	dataset, err := FromUnified(doc)

	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	want := []Duplicate{
		{Space: SpaceTrack, ID: 3, Count: 2},
		{Space: SpaceAnnotation, ID: 7, Count: 2},
	}

	got := dataset.Audit()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("audit mismatch (-want +got):\n%s", diff)
	}

	// the audit is re-entrant and does not mutate state
	if diff := cmp.Diff(want, dataset.Audit()); diff != "" {
		t.Errorf("second audit differs (-want +got):\n%s", diff)
	}
}

func TestAuditDuplicateVideoAndImageIDs(t *testing.T) {

	doc := UnifiedDataset{
		Categories: BuildCategories([]string{"pedestrian"}, 1),
		Videos: []VideoDict{
			{ID: 1, FileName: "sequences/a"},
			{ID: 1, FileName: "sequences/b"},
		},
		Images: []ImageDict{
			{FileName: "sequences/a/1.jpg", ID: 5, FrameID: 1, PrevFrameID: -1,
				NextFrameID: -1, VideoID: 1, Width: 10, Height: 10},
			{FileName: "sequences/b/1.jpg", ID: 5, FrameID: 1, PrevFrameID: -1,
				NextFrameID: -1, VideoID: 1, Width: 10, Height: 10},
		},
	}

	dataset, err := FromUnified(doc)

	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	want := []Duplicate{
		{Space: SpaceVideo, ID: 1, Count: 2},
		{Space: SpaceImage, ID: 5, Count: 2},
	}

	if diff := cmp.Diff(want, dataset.Audit()); diff != "" {
		t.Errorf("audit mismatch (-want +got):\n%s", diff)
	}
}

func TestFromUnifiedUnknownReferences(t *testing.T) {

	categories := BuildCategories([]string{"pedestrian"}, 1)

	// image declaring an unknown video
	_, err := FromUnified(UnifiedDataset{
		Categories: categories,
		Images: []ImageDict{
			{FileName: "x.jpg", ID: 1, FrameID: 1, VideoID: 99,
				Width: 10, Height: 10},
		},
	})

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown video: got %v, want ErrNotFound", err)
	}

	// annotation declaring an unknown image
	_, err = FromUnified(UnifiedDataset{
		Categories: categories,
		Videos:     []VideoDict{{ID: 1, FileName: "sequences/a"}},
		Annotations: []AnnotationDict{
			{ID: 1, CategoryID: 1, ImageID: 99, TrackID: 1,
				BBox: [4]int{0, 0, 1, 1}},
		},
	})

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown image: got %v, want ErrNotFound", err)
	}
}

// annotations may arrive in any order relative to their owning image
func TestFromUnifiedOutOfOrderAnnotations(t *testing.T) {

	doc := UnifiedDataset{
		Categories: BuildCategories([]string{"pedestrian"}, 1),
		Videos: []VideoDict{
			{ID: 1, FileName: "sequences/a"},
			{ID: 2, FileName: "sequences/b"},
		},
		Images: []ImageDict{
			{FileName: "sequences/a/1.jpg", ID: 1, FrameID: 1, PrevFrameID: -1,
				NextFrameID: -1, VideoID: 1, Width: 10, Height: 10},
			{FileName: "sequences/b/1.jpg", ID: 2, FrameID: 1, PrevFrameID: -1,
				NextFrameID: -1, VideoID: 2, Width: 10, Height: 10},
		},
		Annotations: []AnnotationDict{
			// second video's annotation listed first
			{ID: 2, CategoryID: 1, ImageID: 2, TrackID: 2, Area: 100,
				BBox: [4]int{0, 0, 10, 10}},
			{ID: 1, CategoryID: 1, ImageID: 1, TrackID: 1, Area: 100,
				BBox: [4]int{0, 0, 10, 10}},
		},
	}

	dataset, err := FromUnified(doc)

	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	for _, wantVideo := range []struct {
		videoID int
		imageID int
		annoID  int
	}{
		{1, 1, 1},
		{2, 2, 2},
	} {

		v, err := dataset.Video(wantVideo.videoID)

		if err != nil {
			t.Fatal(err)
		}

		img, err := v.Image(wantVideo.imageID)

		if err != nil {
			t.Fatal(err)
		}

		ids := img.AnnotationIDs()

		if len(ids) != 1 || ids[0] != wantVideo.annoID {
			t.Errorf("video %d: annotation ids %v, want [%d]",
				wantVideo.videoID, ids, wantVideo.annoID)
		}
	}
}

func TestLoadFromSourcesWholeSequenceAtomicity(t *testing.T) {

	root := t.TempDir()

	writeSequence(t, root, "seq1", 2, []string{
		"1,1,10,10,20,20,1,1",
	})

	// seq2 has an annotation file but no frame directory, loading it
	// must fail without folding it in
	writeSequence(t, root, "seq2", 1, []string{
		"1,1,10,10,20,20,1,1",
	})

	if err := os.RemoveAll(filepath.Join(root, "sequences", "seq2")); err != nil {
		t.Fatal(err)
	}

	dataset := New(VisDronePreset().Categories())

	err := dataset.LoadFromSources(root, stubProber{640, 480}, VisDronePreset())

	if err == nil {
		t.Fatal("expected load to fail on broken sequence")
	}

	if dataset.Len() != 1 {
		t.Fatalf("video count after failure: got %d, want 1", dataset.Len())
	}

	if _, err := dataset.Video(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("broken sequence visible: %v", err)
	}
}

func TestVideoLookupNotFound(t *testing.T) {

	dataset := New(VisDronePreset().Categories())

	if _, err := dataset.Video(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestWriteAndReadUnified(t *testing.T) {

	dataset := New(VisDronePreset().Categories())

	err := dataset.LoadFromSources(writeTwoSequenceDataset(t),
		stubProber{1280, 720}, VisDronePreset())

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	jsonPath := path.Join(t.TempDir(), "out.json")

	if err := dataset.WriteJSON(jsonPath, 2); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	doc, err := ReadUnified(jsonPath)

	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want, err := dataset.Dict()

	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("file round trip mismatch (-exported +read):\n%s", diff)
	}
}
