package report

import (
	"fmt"
	"os"
	"path"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	mot2coco "github.com/swarmvision/go-mot2coco"
)

// WriteCharts renders an HTML page with bar charts of the annotation
// distribution across videos and categories
func WriteCharts(htmlPath string, d *mot2coco.Dataset) error {

	page := components.NewPage()
	page.PageTitle = "dataset overview"

	page.AddCharts(
		annotationsPerVideo(d),
		annotationsPerCategory(d),
	)

	f, err := os.Create(htmlPath)

	if err != nil {
		return fmt.Errorf("error creating chart page: %w", err)
	}

	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("error rendering chart page: %w", err)
	}

	return nil
}

// annotationsPerVideo builds a bar chart of kept annotation counts per
// sequence
func annotationsPerVideo(d *mot2coco.Dataset) *charts.Bar {

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Annotations per video"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45}}),
	)

	var names []string
	var data []opts.BarData

	for _, v := range d.Videos() {
		names = append(names, path.Base(v.FileName()))
		data = append(data, opts.BarData{Value: v.NumAnnotations()})
	}

	bar.SetXAxis(names).AddSeries("annotations", data)

	return bar
}

// annotationsPerCategory builds a bar chart of kept annotation counts per
// category
func annotationsPerCategory(d *mot2coco.Dataset) *charts.Bar {

	counts := make(map[int]int)

	for _, v := range d.Videos() {
		for _, img := range v.Images() {
			for _, anno := range img.Annotations() {
				counts[anno.CategoryID()]++
			}
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Annotations per category"}),
	)

	var names []string
	var data []opts.BarData

	for _, category := range d.Categories() {
		names = append(names, category.Name)
		data = append(data, opts.BarData{Value: counts[category.ID]})
	}

	bar.SetXAxis(names).AddSeries("annotations", data)

	return bar
}
