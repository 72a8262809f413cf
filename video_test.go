package mot2coco

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
)

// stubProber reports fixed dimensions without touching image files
type stubProber struct {
	width  int
	height int
}

func (p stubProber) Probe(string) (int, int, error) {
	return p.width, p.height, nil
}

// writeSequence lays out one raw sequence under root: a frame directory
// with numFrames empty image files and the sibling annotation file
func writeSequence(t *testing.T, root, name string, numFrames int,
	lines []string) {

	t.Helper()

	seqDir := filepath.Join(root, "sequences", name)

	if err := os.MkdirAll(seqDir, 0755); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= numFrames; i++ {

		frameFile := filepath.Join(seqDir, fmt.Sprintf("%07d.jpg", i))

		if err := os.WriteFile(frameFile, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	annotationsDir := filepath.Join(root, "annotations")

	if err := os.MkdirAll(annotationsDir, 0755); err != nil {
		t.Fatal(err)
	}

	content := strings.Join(lines, "\n") + "\n"

	err := os.WriteFile(filepath.Join(annotationsDir, name+".txt"),
		[]byte(content), 0644)

	if err != nil {
		t.Fatal(err)
	}
}

func TestVideoLoadFromSource(t *testing.T) {

	root := t.TempDir()

	writeSequence(t, root, "seq1", 3, []string{
		"1,1,10,10,20,20,1,1",
		"1,9,30,30,20,20,1,11", // category 11, filtered but track 9 counts
		"2,1,12,12,20,20,1,1",
		"2,2,40,40,20,20,1,4",
		"3,2,42,42,20,20,1,4",
	})

	v := NewVideo(1, path.Join("sequences", "seq1"))

	err := v.LoadFromSource(root, stubProber{1920, 1080}, VisDronePreset(),
		0, 0, 0)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if v.Len() != 3 {
		t.Fatalf("frame count: got %d, want 3", v.Len())
	}

	wantImageIDs := []int{1, 2, 3}

	for i, imageID := range v.ImageIDs() {
		if imageID != wantImageIDs[i] {
			t.Errorf("image id %d: got %d, want %d", i, imageID, wantImageIDs[i])
		}
	}

	// annotation ids are bound from one running counter for the whole
	// sequence: frame 1 has one kept annotation, frame 2 two, frame 3 one
	wantAnnotationIDs := []int{1, 2, 3, 4}

	gotAnnotationIDs := v.AnnotationIDs()

	if len(gotAnnotationIDs) != len(wantAnnotationIDs) {
		t.Fatalf("annotation ids: got %v, want %v", gotAnnotationIDs, wantAnnotationIDs)
	}

	for i, id := range gotAnnotationIDs {
		if id != wantAnnotationIDs[i] {
			t.Errorf("annotation id %d: got %d, want %d", i, id, wantAnnotationIDs[i])
		}
	}

	// active tracks exclude the filtered line, the raw extent includes it
	wantActive := []int{1, 2}
	gotActive := v.TrackIDs()

	if len(gotActive) != len(wantActive) {
		t.Fatalf("active tracks: got %v, want %v", gotActive, wantActive)
	}

	if max, ok := maxID(v.AllTrackIDs()); !ok || max != 9 {
		t.Errorf("all track max: got %d (%v), want 9", max, ok)
	}

	// probed dimensions applied to every frame
	for _, img := range v.Images() {

		d, _, err := img.Dict(v.maxFrameID())

		if err != nil {
			t.Fatal(err)
		}

		if d.Width != 1920 || d.Height != 1080 {
			t.Errorf("frame %d: got %dx%d, want 1920x1080", d.ID, d.Width, d.Height)
		}

		if d.VideoID != v.ID() {
			t.Errorf("frame %d: video id %d, want %d", d.ID, d.VideoID, v.ID())
		}
	}
}

func TestVideoLoadFromSourceOffsets(t *testing.T) {

	root := t.TempDir()

	writeSequence(t, root, "seq1", 2, []string{
		"1,1,10,10,20,20,1,1",
		"2,2,40,40,20,20,1,4",
	})

	v := NewVideo(2, path.Join("sequences", "seq1"))

	err := v.LoadFromSource(root, stubProber{640, 480}, VisDronePreset(),
		100, 50, 10)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	wantImageIDs := []int{101, 102}

	for i, imageID := range v.ImageIDs() {
		if imageID != wantImageIDs[i] {
			t.Errorf("image id %d: got %d, want %d", i, imageID, wantImageIDs[i])
		}
	}

	wantTracks := []int{51, 52}

	for i, trackID := range v.TrackIDs() {
		if trackID != wantTracks[i] {
			t.Errorf("track id %d: got %d, want %d", i, trackID, wantTracks[i])
		}
	}

	wantAnnotationIDs := []int{11, 12}

	for i, id := range v.AnnotationIDs() {
		if id != wantAnnotationIDs[i] {
			t.Errorf("annotation id %d: got %d, want %d", i, id, wantAnnotationIDs[i])
		}
	}

	// every retained annotation's image id resolves to a frame this
	// sequence owns
	for _, img := range v.Images() {
		for _, anno := range img.Annotations() {
			if anno.ImageID() != img.ID() {
				t.Errorf("annotation image id %d inside frame %d",
					anno.ImageID(), img.ID())
			}
		}
	}
}

func TestVideoLoadEmptySequence(t *testing.T) {

	root := t.TempDir()

	seqDir := filepath.Join(root, "sequences", "empty")

	if err := os.MkdirAll(seqDir, 0755); err != nil {
		t.Fatal(err)
	}

	v := NewVideo(1, path.Join("sequences", "empty"))

	err := v.LoadFromSource(root, stubProber{640, 480}, VisDronePreset(), 0, 0, 0)

	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("got %v, want ErrEmptySequence", err)
	}
}

func TestVideoLoadMissingDir(t *testing.T) {

	v := NewVideo(1, "sequences/nope")

	err := v.LoadFromSource(t.TempDir(), stubProber{640, 480},
		VisDronePreset(), 0, 0, 0)

	if err == nil {
		t.Error("expected error for missing sequence directory")
	}
}
