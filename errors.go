package mot2coco

import "errors"

var (
	// ErrUnboundAnnotation is returned when an annotation is exported
	// before an id has been bound to it
	ErrUnboundAnnotation = errors.New("annotation has no id bound")

	// ErrBoundAnnotation is returned when binding an id to an annotation
	// that already has one
	ErrBoundAnnotation = errors.New("annotation id already bound")

	// ErrNotFound is returned when a video, image or track id does not
	// resolve to a record owned by the dataset
	ErrNotFound = errors.New("id not found")

	// ErrEmptySequence is returned when a sequence directory contains no
	// frame images
	ErrEmptySequence = errors.New("sequence contains no frames")
)
