/*
visdrone2coco converts a VisDrone MOT dataset directory (containing the two
subdirectories "annotations" and "sequences") into a single unified COCO
style JSON file with dataset wide unique ids.
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
)

func main() {

	datasetDir := flag.String("dir", "", "dataset directory containing `annotations` and `sequences` subdirs")
	presetsFile := flag.String("presets", "", "TOML presets file, built in VisDrone preset used when empty")
	presetName := flag.String("preset", "VisDrone", "preset name to load from the presets file")
	outFile := flag.String("o", "", "output JSON file, defaults to <dir>/annotations/<dataset name>.json")
	indent := flag.Int("indent", 2, "JSON indent width, 0 writes compact JSON")
	flag.Parse()

	dir := *datasetDir

	if dir == "" {
		dir = prompt("Dataset dir (containing 2 subdirs: `annotations` & `sequences`): ")
	}

	if dir == "" {
		log.Fatal("no dataset directory given")
	}

	preset := mot2coco.VisDronePreset()

	if *presetsFile != "" {

		var err error
		preset, err = mot2coco.LoadPreset(*presetsFile, *presetName)

		if err != nil {
			log.Fatalf("Error loading preset: %v", err)
		}
	}

	dataset := mot2coco.New(preset.Categories())

	err := dataset.LoadFromSources(dir, mot2coco.GoCVProber{}, preset)

	if err != nil {
		log.Fatalf("Error loading dataset: %v", err)
	}

	// surface allocation bugs before writing anything out
	report.WriteDuplicates(os.Stdout, dataset.Audit())

	out := *outFile

	if out == "" {
		out = dataset.DefaultJSONPath()
	}

	if err := dataset.WriteJSON(out, *indent); err != nil {
		log.Fatalf("Error writing dataset: %v", err)
	}

	log.Printf("wrote dataset to %s", out)
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
