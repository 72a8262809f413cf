// Package store exports a unified dataset into a SQLite database so it can
// be inspected and queried with plain SQL.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	mot2coco "github.com/swarmvision/go-mot2coco"
)

// schema holds the four unified dataset collections as relational tables.
// Foreign keys mirror the cross references of the document form, they are
// declared but not enforced so datasets with integrity warnings can still
// be exported and inspected.
const schema = `
	CREATE TABLE IF NOT EXISTS categories (
		id     INTEGER PRIMARY KEY,
		name   TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS videos (
		id         INTEGER PRIMARY KEY,
		file_name  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS images (
		id             INTEGER PRIMARY KEY,
		file_name      TEXT NOT NULL,
		frame_id       INTEGER NOT NULL,
		prev_frame_id  INTEGER NOT NULL,
		next_frame_id  INTEGER NOT NULL,
		video_id       INTEGER NOT NULL REFERENCES videos(id),
		width          INTEGER NOT NULL,
		height         INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS annotations (
		id           INTEGER PRIMARY KEY,
		category_id  INTEGER NOT NULL REFERENCES categories(id),
		image_id     INTEGER NOT NULL REFERENCES images(id),
		track_id     INTEGER NOT NULL,
		area         INTEGER NOT NULL,
		bbox_left    INTEGER NOT NULL,
		bbox_top     INTEGER NOT NULL,
		bbox_width   INTEGER NOT NULL,
		bbox_height  INTEGER NOT NULL,
		iscrowd      INTEGER NOT NULL
	);
`

// Export writes the unified dataset document into a SQLite database file,
// creating the schema if needed.  All rows are written in one transaction,
// a failed export leaves no partial data behind.
func Export(dbPath string, doc mot2coco.UnifiedDataset) error {

	db, err := sql.Open("sqlite", dbPath)

	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}

	tx, err := db.Begin()

	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	defer tx.Rollback()

	if err := insertAll(tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing export: %w", err)
	}

	return nil
}

// insertAll writes every collection of the document into the transaction
func insertAll(tx *sql.Tx, doc mot2coco.UnifiedDataset) error {

	for _, category := range doc.Categories {
		_, err := tx.Exec(`INSERT INTO categories (id, name) VALUES (?, ?)`,
			category.ID, category.Name)
		if err != nil {
			return fmt.Errorf("error inserting category %d: %w", category.ID, err)
		}
	}

	for _, video := range doc.Videos {
		_, err := tx.Exec(`INSERT INTO videos (id, file_name) VALUES (?, ?)`,
			video.ID, video.FileName)
		if err != nil {
			return fmt.Errorf("error inserting video %d: %w", video.ID, err)
		}
	}

	imageStmt, err := tx.Prepare(`
		INSERT INTO images
			(id, file_name, frame_id, prev_frame_id, next_frame_id,
			 video_id, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	if err != nil {
		return fmt.Errorf("error preparing image insert: %w", err)
	}

	defer imageStmt.Close()

	for _, img := range doc.Images {
		_, err := imageStmt.Exec(img.ID, img.FileName, img.FrameID,
			img.PrevFrameID, img.NextFrameID, img.VideoID, img.Width, img.Height)
		if err != nil {
			return fmt.Errorf("error inserting image %d: %w", img.ID, err)
		}
	}

	annotationStmt, err := tx.Prepare(`
		INSERT INTO annotations
			(id, category_id, image_id, track_id, area,
			 bbox_left, bbox_top, bbox_width, bbox_height, iscrowd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	if err != nil {
		return fmt.Errorf("error preparing annotation insert: %w", err)
	}

	defer annotationStmt.Close()

	for _, anno := range doc.Annotations {
		_, err := annotationStmt.Exec(anno.ID, anno.CategoryID, anno.ImageID,
			anno.TrackID, anno.Area,
			anno.BBox[0], anno.BBox[1], anno.BBox[2], anno.BBox[3], anno.Iscrowd)
		if err != nil {
			return fmt.Errorf("error inserting annotation %d: %w", anno.ID, err)
		}
	}

	return nil
}

// Counts returns the row count of every dataset table in the database
func Counts(dbPath string) (map[string]int, error) {

	db, err := sql.Open("sqlite", dbPath)

	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	defer db.Close()

	counts := make(map[string]int)

	for _, table := range []string{"categories", "videos", "images", "annotations"} {

		var n int

		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)

		if err != nil {
			return nil, fmt.Errorf("error counting %s: %w", table, err)
		}

		counts[table] = n
	}

	return counts, nil
}
