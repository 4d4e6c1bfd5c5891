package repository // repository defines data access for graves

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions
	"strings"

	"github.com/iliyamo/grave-assignment/internal/database"
	"github.com/iliyamo/grave-assignment/internal/model"
)

// ErrGraveNotFound is returned when a grave lookup yields no rows.
var ErrGraveNotFound = errors.New("grave not found")

// GraveFilter narrows List.  Empty fields match everything; Limit <= 0
// disables paging.
type GraveFilter struct {
	Section string
	Status  model.GraveStatus
	Limit   int
	Offset  int
}

// GraveRepo provides methods to work with graves in the database.
type GraveRepo struct {
	db   *sql.DB
	lock string // row-lock suffix for the store's dialect
}

// NewGraveRepo constructs a GraveRepo.  driver selects how rows are locked
// during an assignment (see database.LockClause).
func NewGraveRepo(db *sql.DB, driver string) *GraveRepo {
	return &GraveRepo{db: db, lock: database.LockClause(driver)}
}

// Create inserts a grave.  Status defaults to available; occupied is
// rejected with ErrInvalidStatus since only an assignment may set it.
// Returns ErrDuplicate for an existing grave_id and ErrInvalidReference
// when the section does not exist.
func (r *GraveRepo) Create(ctx context.Context, g *model.Grave) error {
	switch g.Status {
	case "":
		g.Status = model.GraveAvailable
	case model.GraveAvailable, model.GraveMaintenance:
	default:
		return ErrInvalidStatus
	}
	const q = `INSERT INTO graves (grave_id, section, grave_row, grave_plot, status) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, g.GraveID, g.Section, g.GraveRow, g.GravePlot, string(g.Status)); err != nil {
		return classify(err)
	}
	created, err := r.GetByID(ctx, g.GraveID)
	if err != nil {
		return err
	}
	*g = *created
	return nil
}

const graveColumns = `g.grave_id, g.section, g.grave_row, g.grave_plot, g.status, cs.section_name, g.created_at`

// GetByID retrieves a grave by its id together with its section name.
func (r *GraveRepo) GetByID(ctx context.Context, id string) (*model.Grave, error) {
	const q = `SELECT ` + graveColumns + `
	           FROM graves g
	           LEFT JOIN cemetery_sections cs ON cs.section_id = g.section
	           WHERE g.grave_id = ?`
	g, err := scanGrave(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGraveNotFound
		}
		return nil, err
	}
	return g, nil
}

// List retrieves graves matching f ordered by section, row then plot.
func (r *GraveRepo) List(ctx context.Context, f GraveFilter) ([]model.Grave, error) {
	where, args := f.where()
	q := `SELECT ` + graveColumns + `
	      FROM graves g
	      LEFT JOIN cemetery_sections cs ON cs.section_id = g.section` + where +
		` ORDER BY g.section, g.grave_row, g.grave_plot`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	return r.query(ctx, q, args...)
}

// Count returns the number of graves matching f, ignoring Limit/Offset.
func (r *GraveRepo) Count(ctx context.Context, f GraveFilter) (int, error) {
	where, args := f.where()
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graves g`+where, args...).Scan(&n)
	return n, err
}

func (f GraveFilter) where() (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Section != "" {
		conds = append(conds, "g.section = ?")
		args = append(args, f.Section)
	}
	if f.Status != "" {
		conds = append(conds, "g.status = ?")
		args = append(args, string(f.Status))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListAvailableBySection retrieves the available graves of one section.
func (r *GraveRepo) ListAvailableBySection(ctx context.Context, sectionID string) ([]model.Grave, error) {
	return r.List(ctx, GraveFilter{Section: sectionID, Status: model.GraveAvailable})
}

// LockForAssignmentTx reads a grave inside tx and holds a row lock on it
// until the transaction ends, so concurrent assignments of the same grave
// are serialised.  Returns ErrGraveNotFound when the grave does not exist.
func (r *GraveRepo) LockForAssignmentTx(ctx context.Context, tx *sql.Tx, id string) (*model.Grave, error) {
	q := `SELECT grave_id, section, grave_row, grave_plot, status, created_at
	      FROM graves WHERE grave_id = ?` + r.lock
	var (
		g      model.Grave
		status string
	)
	err := tx.QueryRowContext(ctx, q, id).Scan(&g.GraveID, &g.Section, &g.GraveRow, &g.GravePlot, &status, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGraveNotFound
		}
		return nil, err
	}
	g.Status = model.GraveStatus(status)
	return &g, nil
}

// MarkOccupiedTx flips an available grave to occupied.  The update only
// matches a row that is still available; when none matches ErrConflict is
// returned and the caller must roll back.
func (r *GraveRepo) MarkOccupiedTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `UPDATE graves SET status = ? WHERE grave_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, string(model.GraveOccupied), id, string(model.GraveAvailable))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrConflict
	}
	return nil
}

func (r *GraveRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.Grave, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Grave, 0)
	for rows.Next() {
		g, err := scanGrave(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanGrave(row rowScanner) (*model.Grave, error) {
	var (
		g           model.Grave
		status      string
		sectionName sql.NullString
	)
	if err := row.Scan(&g.GraveID, &g.Section, &g.GraveRow, &g.GravePlot, &status, &sectionName, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.Status = model.GraveStatus(status)
	g.SectionName = stringPtr(sectionName)
	return &g, nil
}
