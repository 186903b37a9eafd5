package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

const diagramColumns = `id, sequence, variant_key, chord_name, position_type, fret_position, theme, locator, checksum, size, created_at, updated_at, deleted_at`

// DiagramRepository implements models.Repository[*models.PersistedDiagram] for rendered variants.
//
// Variant keys are unique across live and soft-deleted rows; [DiagramRepository.Upsert]
// revives a deleted row instead of inserting a second one.
type DiagramRepository struct {
	db *sql.DB
}

// NewDiagramRepository creates a new DiagramRepository with the given database connection
func NewDiagramRepository(db *sql.DB) *DiagramRepository {
	return &DiagramRepository{db: db}
}

// Create inserts a new [models.PersistedDiagram] with generated ID and sequence
func (r *DiagramRepository) Create(d *models.PersistedDiagram) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "diagrams")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	d.SetID(shared.GenerateID())
	d.SetSequence(sequence)

	v := d.Variant()
	_, err = r.db.Exec(`
		INSERT INTO diagrams (id, sequence, variant_key, chord_name, position_type, fret_position, theme, locator, checksum, size, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID(), sequence, d.Key(),
		v.ChordName, v.PositionType, v.FretPosition, string(v.Theme),
		d.Locator(), d.Checksum(), d.Size(),
		d.CreatedAt(), d.UpdatedAt(),
	)
	if err != nil {
		return insertError("diagram", d.Key(), err)
	}
	return nil
}

// Get retrieves a diagram by ID, excluding soft-deleted rows
func (r *DiagramRepository) Get(id string) (*models.PersistedDiagram, error) {
	row := r.db.QueryRow(`SELECT `+diagramColumns+` FROM diagrams WHERE id = ? AND deleted_at IS NULL`, id)
	return scanDiagram(row)
}

// GetByKey retrieves a live diagram by variant key
func (r *DiagramRepository) GetByKey(key string) (*models.PersistedDiagram, error) {
	row := r.db.QueryRow(`SELECT `+diagramColumns+` FROM diagrams WHERE variant_key = ? AND deleted_at IS NULL`, key)
	return scanDiagram(row)
}

// Update stores new render details for an existing diagram
func (r *DiagramRepository) Update(d *models.PersistedDiagram) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	d.SetUpdatedAt(now)

	result, err := r.db.Exec(`
		UPDATE diagrams
		SET locator = ?, checksum = ?, size = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, d.Locator(), d.Checksum(), d.Size(), now, d.ID())
	if err != nil {
		return fmt.Errorf("failed to update diagram: %w", err)
	}
	return requireRow(result, "diagram", d.ID())
}

// Upsert creates the diagram or, when its variant key is already recorded, replaces the
// render details and clears any soft delete. The record receives the stored ID and sequence.
func (r *DiagramRepository) Upsert(d *models.PersistedDiagram) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var (
		id       string
		sequence int
	)
	err := r.db.QueryRow(`SELECT id, sequence FROM diagrams WHERE variant_key = ?`, d.Key()).Scan(&id, &sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return r.Create(d)
	}
	if err != nil {
		return fmt.Errorf("failed to look up diagram: %w", err)
	}

	now := time.Now()
	if _, err := r.db.Exec(`
		UPDATE diagrams
		SET locator = ?, checksum = ?, size = ?, updated_at = ?, deleted_at = NULL
		WHERE id = ?
	`, d.Locator(), d.Checksum(), d.Size(), now, id); err != nil {
		return fmt.Errorf("failed to update diagram: %w", err)
	}

	d.SetID(id)
	d.SetSequence(sequence)
	d.SetUpdatedAt(now)
	d.SetDeletedAt(nil)
	return nil
}

// Delete soft-deletes a diagram by ID
func (r *DiagramRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE diagrams SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete diagram: %w", err)
	}
	return requireRow(result, "diagram", id)
}

// List retrieves live diagrams filtered by the "chord_name", "position_type" and "theme"
// criteria, in sequence order
func (r *DiagramRepository) List(criteria map[string]any) ([]*models.PersistedDiagram, error) {
	query := `SELECT ` + diagramColumns + ` FROM diagrams WHERE deleted_at IS NULL`
	var args []any

	for _, col := range []string{"chord_name", "position_type", "theme"} {
		if v, ok := criteria[col].(string); ok && v != "" {
			query += " AND " + col + " = ?"
			args = append(args, v)
		}
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagrams: %w", err)
	}
	defer rows.Close()

	var diagrams []*models.PersistedDiagram
	for rows.Next() {
		d, err := scanDiagram(rows)
		if err != nil {
			return nil, err
		}
		diagrams = append(diagrams, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return diagrams, nil
}

func scanDiagram(row scanner) (*models.PersistedDiagram, error) {
	var (
		id, key, chord, pt, theme, locator, checksum string
		sequence, fret, size                         int
		createdAt, updatedAt                         time.Time
		deletedAt                                    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &key, &chord, &pt, &fret, &theme, &locator, &checksum, &size, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: diagram", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan diagram: %w", err)
	}

	variant := models.VariantKey{ChordName: chord, PositionType: pt, FretPosition: fret, Theme: models.Theme(theme)}
	d := models.NewPersistedDiagram(sequence, key, variant, locator, checksum, size)
	d.SetID(id)
	d.SetCreatedAt(createdAt)
	d.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		d.SetDeletedAt(&deletedAt.Time)
	}
	return d, nil
}
