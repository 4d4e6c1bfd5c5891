package service

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/labstack/gommon/log"

    "github.com/iliyamo/grave-assignment/internal/apperr"
    "github.com/iliyamo/grave-assignment/internal/database"
    "github.com/iliyamo/grave-assignment/internal/model"
    "github.com/iliyamo/grave-assignment/internal/queue"
    "github.com/iliyamo/grave-assignment/internal/repository"
    "github.com/iliyamo/grave-assignment/internal/validation"
)

// publishTimeout bounds how long a request waits for the broker after its
// transaction has committed.
const publishTimeout = 3 * time.Second

// CreateAssignmentInput is the request body of POST /assignments.  Fields
// decode as validation.Scalar so a value of the wrong JSON type is reported
// with the other field errors; deceased_id accepts 7 and "7" alike.
type CreateAssignmentInput struct {
    DeceasedID validation.Scalar  `json:"deceased_id" validate:"posint" msg:"Valid deceased person ID is required"`
    GraveID    validation.Scalar  `json:"grave_id" validate:"notblank" msg:"Grave ID is required"`
    AssignedBy validation.Scalar  `json:"assigned_by" validate:"notblank" msg:"Assigned by is required"`
    BurialDate validation.Scalar  `json:"burial_date" validate:"required,datetime=2006-01-02" msg:"Valid burial date is required"`
    BurialTime validation.Scalar  `json:"burial_time" validate:"required,hhmmss" msg:"Valid burial time is required (HH:MM:SS)"`
    Notes      *validation.Scalar `json:"notes"`
}

// AssignmentService is the assignment engine.  It is the only component
// that changes a grave's status, and it does so in the same transaction
// that records the assignment.
type AssignmentService struct {
    db          *sql.DB
    graves      *repository.GraveRepo
    sections    *repository.SectionRepo
    deceased    *repository.DeceasedRepo
    assignments *repository.AssignmentRepo
    publisher   Publisher
    validator   *validation.Validator
    logger      echo.Logger
    txTimeout   time.Duration
}

// Options carries the optional collaborators of AssignmentService.
type Options struct {
    Publisher Publisher
    Logger    echo.Logger
    TxTimeout time.Duration
}

// NewAssignmentService wires the engine to its repositories.  Zero-valued
// options fall back to a NopPublisher, a stderr logger and a 5s deadline.
func NewAssignmentService(
    db *sql.DB,
    graves *repository.GraveRepo,
    sections *repository.SectionRepo,
    deceased *repository.DeceasedRepo,
    assignments *repository.AssignmentRepo,
    v *validation.Validator,
    opts Options,
) *AssignmentService {
    if opts.Publisher == nil {
        opts.Publisher = NopPublisher{}
    }
    if opts.Logger == nil {
        opts.Logger = log.New("service")
    }
    if opts.TxTimeout <= 0 {
        opts.TxTimeout = 5 * time.Second
    }
    return &AssignmentService{
        db:          db,
        graves:      graves,
        sections:    sections,
        deceased:    deceased,
        assignments: assignments,
        publisher:   opts.Publisher,
        validator:   v,
        logger:      opts.Logger,
        txTimeout:   opts.TxTimeout,
    }
}

// CreateAssignment assigns a grave to a deceased person.  The checks run in
// a fixed order and each failure is distinct:
//
//   1. input shape                 -> validation
//   2. grave exists                -> not found "Grave not found"
//   3. grave is available          -> conflict "Grave is not available for assignment"
//   4. deceased person exists      -> not found "Deceased person not found"
//   5. deceased not yet assigned   -> conflict
//
// The grave row is locked for the rest of the transaction and flipped to
// occupied with a conditional update, so two concurrent calls for the same
// grave cannot both succeed.  Any failure rolls back every write.
func (s *AssignmentService) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*model.Assignment, error) {
    if err := s.validator.Struct(in); err != nil {
        return nil, err
    }

    ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
    defer cancel()

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, s.storeError(err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    grave, err := s.graves.LockForAssignmentTx(ctx, tx, string(in.GraveID))
    if err != nil {
        if errors.Is(err, repository.ErrGraveNotFound) {
            return nil, apperr.NotFound("grave", "Grave not found")
        }
        return nil, s.storeError(err)
    }
    if !grave.IsAvailable() {
        return nil, apperr.Conflict("grave", "Grave is not available for assignment")
    }

    deceasedID, err := in.DeceasedID.Uint()
    if err != nil {
        return nil, apperr.Validation(apperr.FieldError{Field: "deceased_id", Message: "Valid deceased person ID is required", Value: string(in.DeceasedID)})
    }
    exists, err := s.deceased.ExistsTx(ctx, tx, deceasedID)
    if err != nil {
        return nil, s.storeError(err)
    }
    if !exists {
        return nil, apperr.NotFound("deceased person", "Deceased person not found")
    }
    assigned, err := s.assignments.HasAssignmentForDeceasedTx(ctx, tx, deceasedID)
    if err != nil {
        return nil, s.storeError(err)
    }
    if assigned {
        return nil, apperr.Conflict("deceased person", "Deceased person already has a grave assignment")
    }

    if err := s.graves.MarkOccupiedTx(ctx, tx, grave.GraveID); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return nil, apperr.Conflict("grave", "Grave is not available for assignment")
        }
        return nil, s.storeError(err)
    }

    a := &model.Assignment{
        DeceasedID: deceasedID,
        GraveID:    grave.GraveID,
        AssignedBy: string(in.AssignedBy),
        BurialDate: string(in.BurialDate),
        BurialTime: validation.NormalizeClock(string(in.BurialTime)),
        Notes:      in.Notes.StringPtr(),
    }
    if err := s.assignments.CreateTx(ctx, tx, a); err != nil {
        switch {
        case errors.Is(err, repository.ErrDeceasedAssigned):
            return nil, apperr.Conflict("deceased person", "Deceased person already has a grave assignment")
        case errors.Is(err, repository.ErrDuplicate):
            return nil, apperr.Conflict("grave", "Grave is not available for assignment")
        case errors.Is(err, repository.ErrInvalidReference):
            return nil, apperr.NotFound("deceased person", "Deceased person not found")
        }
        return nil, s.storeError(err)
    }
    if err := s.sections.DecrementAvailableTx(ctx, tx, grave.Section); err != nil {
        return nil, s.storeError(err)
    }

    if err := tx.Commit(); err != nil {
        return nil, s.storeError(err)
    }
    committed = true

    s.publish(ctx, queue.AssignmentEvent{
        Type:         queue.EventAssignmentCreated,
        AssignmentID: a.AssignmentID,
        DeceasedID:   a.DeceasedID,
        GraveID:      a.GraveID,
        Section:      grave.Section,
        AssignedBy:   a.AssignedBy,
        BurialDate:   a.BurialDate,
        BurialTime:   a.BurialTime,
    })
    return a, nil
}

// CompleteAssignment marks a burial as completed.  Completing an already
// completed assignment succeeds.
func (s *AssignmentService) CompleteAssignment(ctx context.Context, id uint64) error {
    ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
    defer cancel()

    if err := s.assignments.MarkCompleted(ctx, id); err != nil {
        if errors.Is(err, repository.ErrAssignmentNotFound) {
            return apperr.NotFound("assignment", "Assignment not found")
        }
        return s.storeError(err)
    }

    ev := queue.AssignmentEvent{Type: queue.EventBurialCompleted, AssignmentID: id}
    if d, err := s.assignments.GetByID(ctx, id); err == nil {
        ev.DeceasedID, ev.GraveID, ev.Section = d.DeceasedID, d.GraveID, d.Section
    }
    s.publish(ctx, ev)
    return nil
}

// publish runs after commit; its context survives the caller's
// cancellation and failures are only logged.
func (s *AssignmentService) publish(ctx context.Context, ev queue.AssignmentEvent) {
    ev.EventID = uuid.NewString()
    ev.OccurredAt = queue.Stamp(time.Now())

    pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
    defer cancel()
    if err := s.publisher.Publish(pctx, ev); err != nil {
        s.logger.Warnj(log.JSON{
            "msg":           "publish event failed",
            "event_id":      ev.EventID,
            "type":          ev.Type,
            "assignment_id": ev.AssignmentID,
            "error":         err.Error(),
        })
    }
}

// storeError turns a store failure into a retryable or internal error.
func (s *AssignmentService) storeError(err error) error {
    if database.IsRetryable(err) {
        return apperr.Unavailable(err)
    }
    return apperr.Internal(err)
}
