package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/grave-assignment/internal/database"
    "github.com/iliyamo/grave-assignment/internal/model"
)

// ErrAssignmentNotFound is returned when an assignment lookup yields no
// rows.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentRepo provides persistence for grave assignments.  Assignments
// are created only inside the assignment unit of work (CreateTx); the only
// later mutation is MarkCompleted.  All timestamp fields are stored in UTC.
type AssignmentRepo struct {
    db *sql.DB
}

// NewAssignmentRepo returns a new AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// AssignmentFilter narrows List.  Zero values match everything; Limit <= 0
// disables paging.
type AssignmentFilter struct {
    GraveID    string
    DeceasedID uint64
    Limit      int
    Offset     int
}

// CreateTx inserts a new assignment within the scope of an existing
// transaction.  It populates the generated ID and the DB defaults
// (burial_completed, assignment_date) on the provided record.  The caller
// must commit or rollback the transaction.  A second assignment for the
// same deceased person yields ErrDeceasedAssigned; one for the same grave
// yields ErrDuplicate.
func (r *AssignmentRepo) CreateTx(ctx context.Context, tx *sql.Tx, a *model.Assignment) error {
    burialDate, err := parseDate("burial_date", a.BurialDate)
    if err != nil {
        return err
    }
    const q = `INSERT INTO grave_assignments (deceased_id, grave_id, assigned_by, burial_date, burial_time, notes)
               VALUES (?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, a.DeceasedID, a.GraveID, a.AssignedBy, burialDate, a.BurialTime, nullString(a.Notes))
    if err != nil {
        if database.IsDuplicateOn(err, "deceased") {
            return ErrDeceasedAssigned
        }
        return classify(err)
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    // Query back the full row to populate timestamps and defaults
    const sel = `SELECT ` + assignmentColumns + ` FROM grave_assignments ga WHERE ga.assignment_id = ?`
    created, err := scanAssignment(tx.QueryRowContext(ctx, sel, id))
    if err != nil {
        return err
    }
    *a = *created
    return nil
}

// HasAssignmentForDeceasedTx reports whether the deceased person already
// has an assignment, reading through tx.
func (r *AssignmentRepo) HasAssignmentForDeceasedTx(ctx context.Context, tx *sql.Tx, deceasedID uint64) (bool, error) {
    const q = `SELECT COUNT(*) FROM grave_assignments WHERE deceased_id = ?`
    var n int
    if err := tx.QueryRowContext(ctx, q, deceasedID).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// MarkCompleted sets burial_completed to true.  Calling it on an already
// completed assignment succeeds.  Returns ErrAssignmentNotFound when the
// assignment does not exist.
func (r *AssignmentRepo) MarkCompleted(ctx context.Context, id uint64) error {
    const q = `UPDATE grave_assignments SET burial_completed = ? WHERE assignment_id = ?`
    res, err := r.db.ExecContext(ctx, q, true, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n > 0 {
        return nil
    }
    // MySQL reports zero affected rows when the value is unchanged, so a
    // zero count only means "not found" if the row is really absent.
    var got uint64
    err = r.db.QueryRowContext(ctx, `SELECT assignment_id FROM grave_assignments WHERE assignment_id = ?`, id).Scan(&got)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrAssignmentNotFound
    }
    return err
}

const assignmentColumns = `ga.assignment_id, ga.deceased_id, ga.grave_id, ga.assigned_by, ga.burial_date, ga.burial_time,
    ga.notes, ga.burial_completed, ga.assignment_date`

const assignmentDetailQuery = `SELECT ` + assignmentColumns + `,
        dp.full_name_arabic, dp.full_name_english, dp.eid, dp.gender, dp.date_of_death,
        g.section, g.grave_row, g.grave_plot, cs.section_name
    FROM grave_assignments ga
    JOIN deceased_persons dp ON dp.deceased_id = ga.deceased_id
    JOIN graves g ON g.grave_id = ga.grave_id
    JOIN cemetery_sections cs ON cs.section_id = g.section`

// GetByID returns an assignment joined with its deceased person, grave and
// section, or ErrAssignmentNotFound.
func (r *AssignmentRepo) GetByID(ctx context.Context, id uint64) (*model.AssignmentDetail, error) {
    const q = assignmentDetailQuery + ` WHERE ga.assignment_id = ?`
    d, err := scanAssignmentDetail(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrAssignmentNotFound
        }
        return nil, err
    }
    return d, nil
}

// List returns joined assignments matching f, newest first, and the total
// number of matches ignoring Limit/Offset.
func (r *AssignmentRepo) List(ctx context.Context, f AssignmentFilter) ([]model.AssignmentDetail, int, error) {
    var (
        conds []string
        args  []interface{}
    )
    if f.GraveID != "" {
        conds = append(conds, "ga.grave_id = ?")
        args = append(args, f.GraveID)
    }
    if f.DeceasedID != 0 {
        conds = append(conds, "ga.deceased_id = ?")
        args = append(args, f.DeceasedID)
    }
    where := ""
    if len(conds) > 0 {
        where = " WHERE " + strings.Join(conds, " AND ")
    }

    var total int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grave_assignments ga`+where, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    q := assignmentDetailQuery + where + ` ORDER BY ga.assignment_date DESC, ga.assignment_id DESC`
    if f.Limit > 0 {
        q += ` LIMIT ? OFFSET ?`
        args = append(args, f.Limit, f.Offset)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    details := make([]model.AssignmentDetail, 0)
    for rows.Next() {
        d, err := scanAssignmentDetail(rows)
        if err != nil {
            return nil, 0, err
        }
        details = append(details, *d)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return details, total, nil
}

func scanAssignment(row rowScanner) (*model.Assignment, error) {
    var (
        a          model.Assignment
        burialDate time.Time
        notes      sql.NullString
    )
    if err := row.Scan(
        &a.AssignmentID, &a.DeceasedID, &a.GraveID, &a.AssignedBy, &burialDate, &a.BurialTime,
        &notes, &a.BurialCompleted, &a.AssignmentDate,
    ); err != nil {
        return nil, err
    }
    a.BurialDate = formatDate(burialDate)
    a.Notes = stringPtr(notes)
    return &a, nil
}

func scanAssignmentDetail(row rowScanner) (*model.AssignmentDetail, error) {
    var (
        d          model.AssignmentDetail
        burialDate time.Time
        died       time.Time
        notes      sql.NullString
        english    sql.NullString
    )
    if err := row.Scan(
        &d.AssignmentID, &d.DeceasedID, &d.GraveID, &d.AssignedBy, &burialDate, &d.BurialTime,
        &notes, &d.BurialCompleted, &d.AssignmentDate,
        &d.FullNameArabic, &english, &d.EID, &d.Gender, &died,
        &d.Section, &d.GraveRow, &d.GravePlot, &d.SectionName,
    ); err != nil {
        return nil, err
    }
    d.BurialDate = formatDate(burialDate)
    d.Notes = stringPtr(notes)
    d.FullNameEnglish = stringPtr(english)
    d.DateOfDeath = formatDate(died)
    return &d, nil
}
