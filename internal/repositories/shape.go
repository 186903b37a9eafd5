package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

const shapeColumns = `id, sequence, name, position_type, base_fret, frets, fingering, source_url, created_at, updated_at, deleted_at`

// ShapeRepository implements models.Repository[*models.PersistedShape] for ingested chord shapes.
type ShapeRepository struct {
	db *sql.DB
}

// NewShapeRepository creates a new ShapeRepository with the given database connection
func NewShapeRepository(db *sql.DB) *ShapeRepository {
	return &ShapeRepository{db: db}
}

// Create inserts a new [models.PersistedShape] with generated ID and sequence
func (r *ShapeRepository) Create(p *models.PersistedShape) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "chord_shapes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	p.SetID(shared.GenerateID())
	p.SetSequence(sequence)

	s := p.Shape()
	_, err = r.db.Exec(`
		INSERT INTO chord_shapes (id, sequence, name, position_type, base_fret, frets, fingering, source_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID(), sequence, s.Name(), s.PositionType(), s.BaseFret(),
		p.FretsCompact(), p.FingeringCompact(), p.SourceURL(),
		p.CreatedAt(), p.UpdatedAt(),
	)
	if err != nil {
		return insertError("chord shape", s.String(), err)
	}
	return nil
}

// Get retrieves a shape by ID, excluding soft-deleted rows
func (r *ShapeRepository) Get(id string) (*models.PersistedShape, error) {
	row := r.db.QueryRow(`SELECT `+shapeColumns+` FROM chord_shapes WHERE id = ? AND deleted_at IS NULL`, id)
	return scanShape(row)
}

// GetByFrets retrieves the live shape of name with the given compact frets
func (r *ShapeRepository) GetByFrets(name, frets string) (*models.PersistedShape, error) {
	row := r.db.QueryRow(`SELECT `+shapeColumns+` FROM chord_shapes WHERE name = ? AND frets = ? AND deleted_at IS NULL`, name, frets)
	return scanShape(row)
}

// GetByVariant retrieves the first live shape of name with the given position type and base fret
func (r *ShapeRepository) GetByVariant(name, positionType string, baseFret int) (*models.PersistedShape, error) {
	row := r.db.QueryRow(`
		SELECT `+shapeColumns+` FROM chord_shapes
		WHERE name = ? AND position_type = ? AND base_fret = ? AND deleted_at IS NULL
		ORDER BY sequence ASC
		LIMIT 1
	`, name, positionType, baseFret)
	return scanShape(row)
}

// Update replaces the fingering and source of an existing shape
func (r *ShapeRepository) Update(p *models.PersistedShape) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	p.SetUpdatedAt(now)

	result, err := r.db.Exec(`
		UPDATE chord_shapes
		SET fingering = ?, source_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, p.FingeringCompact(), p.SourceURL(), now, p.ID())
	if err != nil {
		return fmt.Errorf("failed to update chord shape: %w", err)
	}
	return requireRow(result, "chord shape", p.ID())
}

// Delete soft-deletes a shape by ID
func (r *ShapeRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE chord_shapes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete chord shape: %w", err)
	}
	return requireRow(result, "chord shape", id)
}

// List retrieves live shapes filtered by the "name", "position_type" and "source_url"
// criteria, in sequence order
func (r *ShapeRepository) List(criteria map[string]any) ([]*models.PersistedShape, error) {
	query := `SELECT ` + shapeColumns + ` FROM chord_shapes WHERE deleted_at IS NULL`
	var args []any

	for _, col := range []string{"name", "position_type", "source_url"} {
		if v, ok := criteria[col].(string); ok && v != "" {
			query += " AND " + col + " = ?"
			args = append(args, v)
		}
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chord shapes: %w", err)
	}
	defer rows.Close()

	var shapes []*models.PersistedShape
	for rows.Next() {
		p, err := scanShape(rows)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return shapes, nil
}

// Shapes returns every live cached shape, oldest first, ready to extend a resolver table.
func (r *ShapeRepository) Shapes() ([]models.ChordShape, error) {
	persisted, err := r.List(nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChordShape, len(persisted))
	for i, p := range persisted {
		out[i] = p.Shape()
	}
	return out, nil
}

func scanShape(row scanner) (*models.PersistedShape, error) {
	var (
		id, name, pt, frets, fingering, sourceURL string
		sequence, baseFret                        int
		createdAt, updatedAt                      time.Time
		deletedAt                                 sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &pt, &baseFret, &frets, &fingering, &sourceURL, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: chord shape", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chord shape: %w", err)
	}

	shape, err := models.RestoreShape(name, pt, baseFret, frets, fingering)
	if err != nil {
		return nil, fmt.Errorf("stored chord shape %s is corrupt: %w", id, err)
	}

	p := models.NewPersistedShape(sequence, shape, sourceURL)
	p.SetID(id)
	p.SetCreatedAt(createdAt)
	p.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		p.SetDeletedAt(&deletedAt.Time)
	}
	return p, nil
}
