/*
coco-overview inspects a unified COCO style dataset JSON file: it prints
per id space statistics, runs the duplicate id audit and can additionally
write an HTML chart page or export the dataset into a SQLite database.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	mot2coco "github.com/swarmvision/go-mot2coco"
	"github.com/swarmvision/go-mot2coco/report"
	"github.com/swarmvision/go-mot2coco/store"
)

func main() {

	jsonFile := flag.String("json", "", "unified dataset JSON file")
	htmlFile := flag.String("html", "", "also write an HTML chart page to this path")
	dbFile := flag.String("db", "", "also export the dataset into this SQLite database")
	overlapIoU := flag.Float64("overlap", 0, "also report annotation pairs overlapping with at least this IoU, 0 disables")
	flag.Parse()

	path := *jsonFile

	if path == "" {
		path = prompt("Dataset JSON: ")
	}

	if path == "" {
		log.Fatal("no dataset file given")
	}

	doc, err := mot2coco.ReadUnified(path)

	if err != nil {
		log.Fatalf("Error reading dataset: %v", err)
	}

	dataset, err := mot2coco.FromUnified(doc)

	if err != nil {
		log.Fatalf("Error loading dataset: %v", err)
	}

	report.WriteOverview(os.Stdout, dataset.Overview())
	report.WriteDuplicates(os.Stdout, dataset.Audit())

	if *overlapIoU > 0 {
		report.WriteOverlaps(os.Stdout, dataset.Overlaps(*overlapIoU))
	}

	if *htmlFile != "" {

		if err := report.WriteCharts(*htmlFile, dataset); err != nil {
			log.Fatalf("Error writing charts: %v", err)
		}

		log.Printf("wrote chart page to %s", *htmlFile)
	}

	if *dbFile != "" {

		if err := store.Export(*dbFile, doc); err != nil {
			log.Fatalf("Error exporting database: %v", err)
		}

		log.Printf("exported dataset to %s", *dbFile)
	}
}

// prompt reads one line from stdin, mirroring the interactive use of the
// tool when no flags are given
func prompt(msg string) string {

	fmt.Print(msg)

	scanner := bufio.NewScanner(os.Stdin)

	if !scanner.Scan() {
		return ""
	}

	return strings.TrimSpace(scanner.Text())
}
