// Package report renders dataset overviews, audit results and HTML chart
// pages for human inspection.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"

	mot2coco "github.com/swarmvision/go-mot2coco"
)

// WriteOverview renders the dataset overview as a table of per id space
// count, min and max, followed by annotation distribution statistics
func WriteOverview(w io.Writer, ov mot2coco.Overview) {

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID Space", "Count", "Min ID", "Max ID"})

	appendStats(table, "videos", ov.Videos)
	appendStats(table, "images", ov.Images)
	appendStats(table, "tracks (active)", ov.ActiveTracks)
	appendStats(table, "tracks (all)", ov.AllTracks)
	appendStats(table, "annotations", ov.Annotations)

	table.Render()

	fmt.Fprintf(w, "total annotations: %d\n", ov.NumAnnotations)

	if len(ov.AnnotationsPerImage) > 0 {

		mean := stat.Mean(ov.AnnotationsPerImage, nil)

		if len(ov.AnnotationsPerImage) > 1 {
			stddev := stat.StdDev(ov.AnnotationsPerImage, nil)
			fmt.Fprintf(w, "annotations per image: mean %.2f, stddev %.2f\n",
				mean, stddev)
		} else {
			fmt.Fprintf(w, "annotations per image: mean %.2f\n", mean)
		}
	}
}

// appendStats adds one id space row to the overview table
func appendStats(table *tablewriter.Table, name string,
	stats mot2coco.IDSpaceStats) {

	table.Append([]string{
		name,
		strconv.Itoa(stats.Count),
		strconv.Itoa(stats.Min),
		strconv.Itoa(stats.Max),
	})
}

// WriteDuplicates renders the duplicate audit result.  No duplicates
// prints a single all clear line.
func WriteDuplicates(w io.Writer, duplicates []mot2coco.Duplicate) {

	if len(duplicates) == 0 {
		fmt.Fprintln(w, "duplicate audit: no duplicated ids found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID Space", "ID", "Occurrences"})

	for _, dup := range duplicates {
		table.Append([]string{
			string(dup.Space),
			strconv.Itoa(dup.ID),
			strconv.Itoa(dup.Count),
		})
	}

	fmt.Fprintf(w, "[WARNING] %d duplicated ids found\n", len(duplicates))
	table.Render()
}

// WriteOverlaps renders the box overlap audit result
func WriteOverlaps(w io.Writer, overlaps []mot2coco.Overlap) {

	if len(overlaps) == 0 {
		fmt.Fprintln(w, "overlap audit: no overlapping boxes found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Image", "Annotation A", "Annotation B", "IoU"})

	for _, ov := range overlaps {
		table.Append([]string{
			strconv.Itoa(ov.ImageID),
			strconv.Itoa(ov.IDA),
			strconv.Itoa(ov.IDB),
			fmt.Sprintf("%.2f", ov.IoU),
		})
	}

	fmt.Fprintf(w, "[WARNING] %d overlapping annotation pairs found\n",
		len(overlaps))
	table.Render()
}
