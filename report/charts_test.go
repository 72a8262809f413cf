package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	mot2coco "github.com/swarmvision/go-mot2coco"
)

func TestWriteCharts(t *testing.T) {

	doc := mot2coco.UnifiedDataset{
		Categories: mot2coco.BuildCategories([]string{"pedestrian", "car"}, 1),
		Videos: []mot2coco.VideoDict{
			{ID: 1, FileName: "sequences/seq1"},
		},
		Images: []mot2coco.ImageDict{
			{FileName: "sequences/seq1/0000001.jpg", ID: 1, FrameID: 1,
				PrevFrameID: -1, NextFrameID: -1, VideoID: 1,
				Width: 640, Height: 480},
		},
		Annotations: []mot2coco.AnnotationDict{
			{ID: 1, CategoryID: 1, ImageID: 1, TrackID: 1, Area: 400,
				BBox: [4]int{10, 10, 20, 20}},
			{ID: 2, CategoryID: 2, ImageID: 1, TrackID: 2, Area: 900,
				BBox: [4]int{50, 50, 30, 30}},
		},
	}

	dataset, err := mot2coco.FromUnified(doc)

	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	htmlPath := filepath.Join(t.TempDir(), "overview.html")

	if err := WriteCharts(htmlPath, dataset); err != nil {
		t.Fatalf("chart render failed: %v", err)
	}

	content, err := os.ReadFile(htmlPath)

	if err != nil {
		t.Fatal(err)
	}

	out := string(content)

	for _, want := range []string{
		"Annotations per video",
		"Annotations per category",
		"seq1",
		"pedestrian",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("chart page missing %q", want)
		}
	}
}
