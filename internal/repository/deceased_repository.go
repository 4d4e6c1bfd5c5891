package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/grave-assignment/internal/model"
)

// ErrDeceasedNotFound is returned when a deceased person lookup yields no
// rows.
var ErrDeceasedNotFound = errors.New("deceased person not found")

// DeceasedRepo provides persistence for deceased person records.  Records
// are insert-only.
type DeceasedRepo struct {
	db *sql.DB
}

// NewDeceasedRepo returns a new DeceasedRepo bound to the given database.
func NewDeceasedRepo(db *sql.DB) *DeceasedRepo { return &DeceasedRepo{db: db} }

// Create inserts a record and populates its generated ID and created_at.
// A duplicate Emirates ID yields ErrDuplicate.
func (r *DeceasedRepo) Create(ctx context.Context, d *model.Deceased) error {
	died, err := parseDate("date_of_death", d.DateOfDeath)
	if err != nil {
		return err
	}
	buried, err := nullDate("date_of_burial", d.DateOfBurial)
	if err != nil {
		return err
	}
	const q = `INSERT INTO deceased_persons
	           (full_name_arabic, full_name_english, eid, age_at_death, gender, date_of_death, date_of_burial, nationality, special_requests)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		d.FullNameArabic, nullString(d.FullNameEnglish), d.EID, d.AgeAtDeath, d.Gender,
		died, buried, nullString(d.Nationality), nullString(d.SpecialRequests),
	)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*d = *created
	return nil
}

const deceasedColumns = `deceased_id, full_name_arabic, full_name_english, eid, age_at_death, gender,
	date_of_death, date_of_burial, nationality, special_requests, created_at`

// GetByID returns a record or ErrDeceasedNotFound.
func (r *DeceasedRepo) GetByID(ctx context.Context, id uint64) (*model.Deceased, error) {
	const q = `SELECT ` + deceasedColumns + ` FROM deceased_persons WHERE deceased_id = ?`
	d, err := scanDeceased(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeceasedNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns all records, newest date of death first.  A non-empty search
// matches as a substring against the Arabic name, the English name or the
// Emirates ID.
func (r *DeceasedRepo) List(ctx context.Context, search string) ([]model.Deceased, error) {
	q := `SELECT ` + deceasedColumns + ` FROM deceased_persons`
	var args []interface{}
	if search != "" {
		term := "%" + search + "%"
		q += ` WHERE full_name_arabic LIKE ? OR full_name_english LIKE ? OR eid LIKE ?`
		args = append(args, term, term, term)
	}
	q += ` ORDER BY date_of_death DESC, deceased_id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Deceased, 0)
	for rows.Next() {
		d, err := scanDeceased(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsTx reports whether a record exists, reading through tx.
func (r *DeceasedRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	const q = `SELECT deceased_id FROM deceased_persons WHERE deceased_id = ?`
	var got uint64
	if err := tx.QueryRowContext(ctx, q, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func scanDeceased(row rowScanner) (*model.Deceased, error) {
	var (
		d                      model.Deceased
		english, nat, requests sql.NullString
		died, buried           sql.NullTime
	)
	if err := row.Scan(
		&d.DeceasedID, &d.FullNameArabic, &english, &d.EID, &d.AgeAtDeath, &d.Gender,
		&died, &buried, &nat, &requests, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.FullNameEnglish = stringPtr(english)
	if died.Valid {
		d.DateOfDeath = formatDate(died.Time)
	}
	d.DateOfBurial = datePtr(buried)
	d.Nationality = stringPtr(nat)
	d.SpecialRequests = stringPtr(requests)
	return &d, nil
}
