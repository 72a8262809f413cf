package mot2coco

// Category is one object class of the dataset.  Categories are created once
// from a Preset and are read only thereafter.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// VisDroneCategoryNames returns the ten object classes of the VisDrone MOT
// annotations, in category index order.  Index 0 (ignored regions) and
// index 11 (others) are filtered during parsing and have no category.
func VisDroneCategoryNames() []string {
	return []string{
		"pedestrian", "people", "bicycle", "car", "van",
		"truck", "tricycle", "awning-tricycle", "bus", "motor",
	}
}

// BuildCategories assigns ids startID, startID+1, ... to the given class
// names in list order
func BuildCategories(names []string, startID int) []Category {

	categories := make([]Category, 0, len(names))

	for idx, name := range names {
		categories = append(categories, Category{
			ID:   startID + idx,
			Name: name,
		})
	}

	return categories
}
