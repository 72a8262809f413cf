package mot2coco

// IDSpaceStats aggregates one id space for human inspection
type IDSpaceStats struct {
	// Count is the number of ids in the space
	Count int
	// Min and Max are the smallest and largest id, both 0 when the space
	// is empty
	Min int
	Max int
}

// Overview aggregates the dataset's id spaces for human inspection.
// ActiveTracks counts the track ids of kept annotations while AllTracks
// counts the raw pre-filter track extent; annotation ids have no pre-filter
// variant because ids are only ever bound to annotations that survived the
// filter.
type Overview struct {
	Videos       IDSpaceStats
	Images       IDSpaceStats
	ActiveTracks IDSpaceStats
	AllTracks    IDSpaceStats
	Annotations  IDSpaceStats
	// NumAnnotations is the total number of kept annotations
	NumAnnotations int
	// AnnotationsPerImage holds the kept annotation count of every frame
	// in sequence order, for distribution statistics
	AnnotationsPerImage []float64
}

// Overview aggregates count, min and max over every id space of the
// dataset.  It is read only and safe to call at any time after loading.
func (d *Dataset) Overview() Overview {

	var allTracks []int
	var perImage []float64
	total := 0

	for _, v := range d.videos.values() {

		allTracks = append(allTracks, v.AllTrackIDs()...)
		total += v.NumAnnotations()

		for _, img := range v.Images() {
			perImage = append(perImage, float64(img.NumAnnotations()))
		}
	}

	return Overview{
		Videos:              statsOf(d.VideoIDs()),
		Images:              statsOf(d.ImageIDs()),
		ActiveTracks:        statsOf(d.TrackIDs()),
		AllTracks:           statsOf(allTracks),
		Annotations:         statsOf(d.AnnotationIDs()),
		NumAnnotations:      total,
		AnnotationsPerImage: perImage,
	}
}

// statsOf aggregates count, min and max over one id space
func statsOf(ids []int) IDSpaceStats {

	if len(ids) == 0 {
		return IDSpaceStats{}
	}

	min := ids[0]
	max := ids[0]

	for _, id := range ids[1:] {
		if id < min {
			min = id
		}
		if id > max {
			max = id
		}
	}

	return IDSpaceStats{
		Count: len(ids),
		Min:   min,
		Max:   max,
	}
}
