package mot2coco

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Preset holds the starting values for each id space and the ordered
// category names of a target dataset flavour.  A Preset is passed explicitly
// into New and threaded down to every record constructor, there is no
// package level configuration.
type Preset struct {
	// VideoIDStart is the id given to the first sequence discovered
	VideoIDStart int `toml:"video_id_start"`
	// FrameIDStart is the sequence local id of the first frame
	FrameIDStart int `toml:"frame_id_start"`
	// TrackIDStart is the id the first track of each raw sequence uses
	TrackIDStart int `toml:"track_id_start"`
	// AnnotationIDStart is the id given to the first accepted annotation
	AnnotationIDStart int `toml:"annotation_id_start"`
	// CategoryIDStart is the id of the first category
	CategoryIDStart int `toml:"category_id_start"`
	// CategoryNames is the ordered list of class names
	CategoryNames []string `toml:"category_names"`
}

// VisDronePreset returns the preset used for converting the VisDrone MOT
// dataset into COCO video format
func VisDronePreset() Preset {
	return Preset{
		VideoIDStart:      1,
		FrameIDStart:      1,
		TrackIDStart:      1,
		AnnotationIDStart: 1,
		CategoryIDStart:   1,
		CategoryNames:     VisDroneCategoryNames(),
	}
}

// LoadPreset reads the named preset from a TOML presets file.  The file
// contains one table per preset, eg.
//
//	[VisDrone]
//	video_id_start = 1
//	frame_id_start = 1
//	track_id_start = 1
//	annotation_id_start = 1
//	category_id_start = 1
//	category_names = ["pedestrian", "people"]
func LoadPreset(file string, name string) (Preset, error) {

	var doc map[string]Preset

	_, err := toml.DecodeFile(file, &doc)

	if err != nil {
		return Preset{}, fmt.Errorf("error reading presets file: %w", err)
	}

	preset, ok := doc[name]

	if !ok {
		return Preset{}, fmt.Errorf("preset %q not found in %s", name, file)
	}

	return preset, nil
}

// Categories builds the category registry for this preset
func (p Preset) Categories() []Category {
	return BuildCategories(p.CategoryNames, p.CategoryIDStart)
}
