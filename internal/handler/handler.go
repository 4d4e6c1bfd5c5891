package handler // handler defines http handlers

import (
    "database/sql"
    "time"

    "github.com/iliyamo/grave-assignment/internal/repository"
    "github.com/iliyamo/grave-assignment/internal/service"
)

// Handler bundles the repositories and the assignment engine behind the
// cemetery API.
type Handler struct {
    DB           *sql.DB                    // DB is pinged by the health check
    Sections     *repository.SectionRepo    // Sections provides section persistence
    Graves       *repository.GraveRepo      // Graves provides grave persistence
    Deceased     *repository.DeceasedRepo   // Deceased provides deceased record persistence
    Assignments  *repository.AssignmentRepo // Assignments serves assignment reads
    Statistics   *repository.StatisticsRepo // Statistics runs the aggregate queries
    Engine       *service.AssignmentService // Engine performs assignment writes
    QueryTimeout time.Duration              // QueryTimeout bounds single reads and writes
}

// New constructs a Handler and panics if any dependency is nil.
func New(db *sql.DB, sections *repository.SectionRepo, graves *repository.GraveRepo, deceased *repository.DeceasedRepo,
    assignments *repository.AssignmentRepo, statistics *repository.StatisticsRepo, engine *service.AssignmentService, queryTimeout time.Duration) *Handler {
    if db == nil || sections == nil || graves == nil || deceased == nil || assignments == nil || statistics == nil || engine == nil {
        panic("nil dependency passed to handler.New")
    }
    if queryTimeout <= 0 {
        queryTimeout = 5 * time.Second
    }
    return &Handler{
        DB:           db,
        Sections:     sections,
        Graves:       graves,
        Deceased:     deceased,
        Assignments:  assignments,
        Statistics:   statistics,
        Engine:       engine,
        QueryTimeout: queryTimeout,
    }
}
