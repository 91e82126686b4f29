package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Drawing is a saved canvas.
type Drawing struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mode   string `json:"mode"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// PNG is only loaded by GetByID.
	PNG       []byte    `json:"-"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// DrawingRepository provides CRUD operations for drawings.
type DrawingRepository struct {
	db *sql.DB
}

// Drawings returns the drawing repository for this store.
func (s *Store) Drawings() *DrawingRepository {
	return &DrawingRepository{db: s.db}
}

// Create inserts a new drawing. An empty ID is filled with a new UUID and
// an empty name with one derived from the creation time.
func (r *DrawingRepository) Create(d *Drawing) error {
	if len(d.PNG) == 0 {
		return errors.New("drawing has no image data")
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now()
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = "drawing " + d.CreatedAt.Format("2006-01-02 15:04:05")
	}
	d.Size = len(d.PNG)

	_, err := r.db.Exec(
		`INSERT INTO drawings (id, name, mode, width, height, png, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Mode, d.Width, d.Height, d.PNG, d.CreatedAt,
	)
	return err
}

// GetByID retrieves a drawing, including its image, by ID.
func (r *DrawingRepository) GetByID(id string) (*Drawing, error) {
	d := &Drawing{}
	err := r.db.QueryRow(
		`SELECT id, name, mode, width, height, png, created_at
		 FROM drawings WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.Name, &d.Mode, &d.Width, &d.Height, &d.PNG, &d.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	d.Size = len(d.PNG)
	return d, nil
}

// List retrieves all drawings without image data, newest first.
func (r *DrawingRepository) List() ([]*Drawing, error) {
	rows, err := r.db.Query(
		`SELECT id, name, mode, width, height, length(png), created_at
		 FROM drawings ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drawings []*Drawing
	for rows.Next() {
		d := &Drawing{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Mode, &d.Width, &d.Height, &d.Size, &d.CreatedAt); err != nil {
			return nil, err
		}
		drawings = append(drawings, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drawings, nil
}

// Rename changes the name of a drawing.
func (r *DrawingRepository) Rename(id, name string) error {
	result, err := r.db.Exec(`UPDATE drawings SET name = ? WHERE id = ?`, strings.TrimSpace(name), id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// Delete removes a drawing by its ID.
func (r *DrawingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM drawings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

func expectRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
