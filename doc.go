/*
go-mot2coco converts per-sequence multi-object-tracking annotations in the
VisDrone MOT format (one comma separated text file per video sequence plus
a directory of frame images) into a single unified COCO style dataset
covering many videos, with dataset wide unique identifiers and cross
references between videos, images, tracks and annotations.

The core of the package is the id allocation model: per-sequence frame
numbers, track numbers and annotation counters are translated into globally
unique ids by threading running offsets from one sequence into the next.
A post-import duplicate audit surfaces any id collisions produced by
allocation mistakes.

See tool code and usage in the cmd subdirectory.
*/
package mot2coco
