package repository

import (
	"context"
	"database/sql"
	"math"

	"github.com/iliyamo/grave-assignment/internal/model"
)

// StatisticsRepo runs the aggregate queries behind the statistics endpoint.
type StatisticsRepo struct {
	db *sql.DB
}

// NewStatisticsRepo returns a StatisticsRepo bound to db.
func NewStatisticsRepo(db *sql.DB) *StatisticsRepo { return &StatisticsRepo{db: db} }

// Get returns per-section grave counts and overall burial counts.
func (r *StatisticsRepo) Get(ctx context.Context) (*model.Statistics, error) {
	sections, err := r.sections(ctx)
	if err != nil {
		return nil, err
	}
	overall, err := r.overall(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Statistics{Sections: sections, Overall: *overall}, nil
}

func (r *StatisticsRepo) sections(ctx context.Context) ([]model.SectionStatistics, error) {
	const q = `SELECT cs.section_id, cs.section_name,
	                  COUNT(g.grave_id),
	                  COALESCE(SUM(CASE WHEN g.status = 'available' THEN 1 ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN g.status = 'occupied' THEN 1 ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN g.status = 'maintenance' THEN 1 ELSE 0 END), 0)
	           FROM cemetery_sections cs
	           LEFT JOIN graves g ON g.section = cs.section_id
	           GROUP BY cs.section_id, cs.section_name
	           ORDER BY cs.section_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SectionStatistics, 0)
	for rows.Next() {
		var s model.SectionStatistics
		if err := rows.Scan(&s.SectionID, &s.SectionName, &s.TotalGraves, &s.AvailableGraves, &s.OccupiedGraves, &s.MaintenanceGraves); err != nil {
			return nil, err
		}
		s.OccupancyPercentage = occupancy(s.OccupiedGraves, s.TotalGraves)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StatisticsRepo) overall(ctx context.Context) (*model.OverallStatistics, error) {
	var o model.OverallStatistics
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deceased_persons`).Scan(&o.TotalDeceased); err != nil {
		return nil, err
	}
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(CASE WHEN burial_completed THEN 1 ELSE 0 END), 0)
	           FROM grave_assignments`
	if err := r.db.QueryRowContext(ctx, q).Scan(&o.TotalAssignments, &o.CompletedBurials); err != nil {
		return nil, err
	}
	o.PendingBurials = o.TotalAssignments - o.CompletedBurials
	return &o, nil
}

// occupancy is occupied/total as a percentage rounded to two decimals; an
// empty section is 0%.
func occupancy(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(occupied)/float64(total)*10000) / 100
}
