// Package repository contains data access logic separated from HTTP handlers.
// This file holds the queries for cemetery sections.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values
	"fmt"

	"github.com/iliyamo/grave-assignment/internal/model"
)

// ErrSectionNotFound is returned when a section cannot be found in the DB.
var ErrSectionNotFound = errors.New("section not found")

// SectionRepo encapsulates all database queries related to cemetery sections.
type SectionRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewSectionRepo constructs a SectionRepo with the provided DB handle.
func NewSectionRepo(db *sql.DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// Create inserts a new section.  A section_id that already exists yields
// ErrDuplicate.  After the insert the row is read back so the caller gets
// the DB-assigned created_at.
func (r *SectionRepo) Create(ctx context.Context, s *model.Section) error {
	const q = `INSERT INTO cemetery_sections (section_id, section_name, total_plots, available_plots, description)
	           VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, s.SectionID, s.SectionName, s.TotalPlots, s.AvailablePlots, nullString(s.Description)); err != nil {
		return classify(err)
	}
	created, err := r.GetByID(ctx, s.SectionID)
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

// GetByID returns the section with the given identifier or
// ErrSectionNotFound.
func (r *SectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	const q = `SELECT section_id, section_name, total_plots, available_plots, description, created_at
	           FROM cemetery_sections WHERE section_id = ?`
	s, err := scanSection(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListWithCounts returns every section with grave counts computed from the
// graves table, ordered by section_id.
func (r *SectionRepo) ListWithCounts(ctx context.Context) ([]model.SectionSummary, error) {
	const q = `SELECT cs.section_id, cs.section_name, cs.total_plots, cs.available_plots, cs.description, cs.created_at,
	                  COUNT(g.grave_id),
	                  COALESCE(SUM(CASE WHEN g.status = 'available' THEN 1 ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN g.status = 'occupied' THEN 1 ELSE 0 END), 0)
	           FROM cemetery_sections cs
	           LEFT JOIN graves g ON g.section = cs.section_id
	           GROUP BY cs.section_id, cs.section_name, cs.total_plots, cs.available_plots, cs.description, cs.created_at
	           ORDER BY cs.section_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SectionSummary, 0)
	for rows.Next() {
		var (
			s    model.SectionSummary
			desc sql.NullString
		)
		if err := rows.Scan(
			&s.SectionID, &s.SectionName, &s.TotalPlots, &s.AvailablePlots, &desc, &s.CreatedAt,
			&s.TotalGraves, &s.AvailableGraves, &s.OccupiedGraves,
		); err != nil {
			return nil, err
		}
		s.Description = stringPtr(desc)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecrementAvailableTx lowers the section's available_plots counter by one
// within the caller's transaction.  The counter never goes below zero.
func (r *SectionRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, sectionID string) error {
	const q = `UPDATE cemetery_sections SET available_plots = available_plots - 1
	           WHERE section_id = ? AND available_plots > 0`
	if _, err := tx.ExecContext(ctx, q, sectionID); err != nil {
		return fmt.Errorf("decrement available plots: %w", err)
	}
	return nil
}

func scanSection(row rowScanner) (*model.Section, error) {
	var (
		s    model.Section
		desc sql.NullString
	)
	if err := row.Scan(&s.SectionID, &s.SectionName, &s.TotalPlots, &s.AvailablePlots, &desc, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Description = stringPtr(desc)
	return &s, nil
}
