package service

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strconv"
    "sync"
    "testing"
    "time"

    "github.com/labstack/gommon/log"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/grave-assignment/internal/apperr"
    "github.com/iliyamo/grave-assignment/internal/config"
    "github.com/iliyamo/grave-assignment/internal/model"
    "github.com/iliyamo/grave-assignment/internal/queue"
    "github.com/iliyamo/grave-assignment/internal/repository"
    "github.com/iliyamo/grave-assignment/internal/testutil"
    "github.com/iliyamo/grave-assignment/internal/validation"
)

type recordingPublisher struct {
    mu     sync.Mutex
    events []queue.AssignmentEvent
    err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.AssignmentEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return p.err
}

func (p *recordingPublisher) Events() []queue.AssignmentEvent {
    p.mu.Lock()
    defer p.mu.Unlock()
    return append([]queue.AssignmentEvent(nil), p.events...)
}

type fixture struct {
    db          *sql.DB
    svc         *AssignmentService
    pub         *recordingPublisher
    sections    *repository.SectionRepo
    graves      *repository.GraveRepo
    deceased    *repository.DeceasedRepo
    assignments *repository.AssignmentRepo
}

func newFixture(t *testing.T, timeout time.Duration) *fixture {
    t.Helper()
    db := testutil.NewSQLiteDB(t)
    f := &fixture{
        db:          db,
        pub:         &recordingPublisher{},
        sections:    repository.NewSectionRepo(db),
        graves:      repository.NewGraveRepo(db, config.DriverSQLite),
        deceased:    repository.NewDeceasedRepo(db),
        assignments: repository.NewAssignmentRepo(db),
    }
    logger := log.New("test")
    logger.SetLevel(log.OFF)
    f.svc = NewAssignmentService(db, f.graves, f.sections, f.deceased, f.assignments, validation.New(),
        Options{Publisher: f.pub, Logger: logger, TxTimeout: timeout})
    return f
}

func (f *fixture) seed(t *testing.T) (graveID string, deceasedID uint64) {
    t.Helper()
    ctx := context.Background()
    require.NoError(t, f.sections.Create(ctx, &model.Section{SectionID: "A", SectionName: "Section A", TotalPlots: 100, AvailablePlots: 100}))
    require.NoError(t, f.graves.Create(ctx, &model.Grave{GraveID: "A-1-01", Section: "A", GraveRow: 1, GravePlot: 1}))
    return "A-1-01", f.addDeceased(t, "111111111111111")
}

func (f *fixture) addDeceased(t *testing.T, eid string) uint64 {
    t.Helper()
    d := &model.Deceased{FullNameArabic: "محمد أحمد", EID: eid, AgeAtDeath: 70, Gender: "male", DateOfDeath: "2024-01-15"}
    require.NoError(t, f.deceased.Create(context.Background(), d))
    return d.DeceasedID
}

func input(graveID string, deceasedID uint64) CreateAssignmentInput {
    return CreateAssignmentInput{
        DeceasedID: validation.Scalar(strconv.FormatUint(deceasedID, 10)),
        GraveID:    validation.Scalar(graveID),
        AssignedBy: "Admin",
        BurialDate: "2024-01-16",
        BurialTime: "10:00:00",
    }
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
    t.Helper()
    require.Error(t, err)
    ae, ok := apperr.As(err)
    require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
    require.Equal(t, kind, ae.Kind, ae.Error())
    return ae
}

func TestCreateAssignment_Success(t *testing.T) {
    f := newFixture(t, 0)
    graveID, deceasedID := f.seed(t)
    ctx := context.Background()

    in := input(graveID, deceasedID)
    in.BurialTime = "9:30:00"
    a, err := f.svc.CreateAssignment(ctx, in)
    require.NoError(t, err)
    assert.NotZero(t, a.AssignmentID)
    assert.Equal(t, "09:30:00", a.BurialTime)
    assert.False(t, a.BurialCompleted)
    assert.False(t, a.AssignmentDate.IsZero())

    g, err := f.graves.GetByID(ctx, graveID)
    require.NoError(t, err)
    assert.Equal(t, model.GraveOccupied, g.Status)

    s, err := f.sections.GetByID(ctx, "A")
    require.NoError(t, err)
    assert.Equal(t, 99, s.AvailablePlots)

    events := f.pub.Events()
    require.Len(t, events, 1)
    assert.Equal(t, queue.EventAssignmentCreated, events[0].Type)
    assert.Equal(t, a.AssignmentID, events[0].AssignmentID)
    assert.Equal(t, "A", events[0].Section)
    assert.NotEmpty(t, events[0].EventID)
}

func TestCreateAssignment_ReportsEveryInvalidField(t *testing.T) {
    f := newFixture(t, 0)
    _, err := f.svc.CreateAssignment(context.Background(), CreateAssignmentInput{BurialDate: "2024-13-40", BurialTime: "25:00:00"})
    ae := requireKind(t, err, apperr.KindValidation)

    var fields []string
    for _, fe := range ae.Fields {
        fields = append(fields, fe.Field)
    }
    assert.ElementsMatch(t, []string{"deceased_id", "grave_id", "assigned_by", "burial_date", "burial_time"}, fields)
}

func TestCreateAssignment_PreconditionOrder(t *testing.T) {
    f := newFixture(t, 0)
    graveID, deceasedID := f.seed(t)
    ctx := context.Background()

    _, err := f.svc.CreateAssignment(ctx, input("NOPE", 9999))
    ae := requireKind(t, err, apperr.KindNotFound)
    assert.Equal(t, "Grave not found", ae.Message)

    _, err = f.svc.CreateAssignment(ctx, input(graveID, 9999))
    ae = requireKind(t, err, apperr.KindNotFound)
    assert.Equal(t, "Deceased person not found", ae.Message)

    _, err = f.svc.CreateAssignment(ctx, input(graveID, deceasedID))
    require.NoError(t, err)

    other := f.addDeceased(t, "222222222222222")
    _, err = f.svc.CreateAssignment(ctx, input(graveID, other))
    ae = requireKind(t, err, apperr.KindConflict)
    assert.Equal(t, "Grave is not available for assignment", ae.Message)
}

func TestCreateAssignment_MissingDeceasedRollsBack(t *testing.T) {
    f := newFixture(t, 0)
    graveID, _ := f.seed(t)
    ctx := context.Background()

    _, err := f.svc.CreateAssignment(ctx, input(graveID, 424242))
    requireKind(t, err, apperr.KindNotFound)

    g, err := f.graves.GetByID(ctx, graveID)
    require.NoError(t, err)
    assert.Equal(t, model.GraveAvailable, g.Status)

    _, total, err := f.assignments.List(ctx, repository.AssignmentFilter{})
    require.NoError(t, err)
    assert.Zero(t, total)
    assert.Empty(t, f.pub.Events())
}

func TestCreateAssignment_MaintenanceGrave(t *testing.T) {
    f := newFixture(t, 0)
    _, deceasedID := f.seed(t)
    ctx := context.Background()
    require.NoError(t, f.graves.Create(ctx, &model.Grave{GraveID: "A-1-02", Section: "A", GraveRow: 1, GravePlot: 2, Status: model.GraveMaintenance}))

    _, err := f.svc.CreateAssignment(ctx, input("A-1-02", deceasedID))
    requireKind(t, err, apperr.KindConflict)
}

func TestCreateAssignment_DeceasedAssignedOnce(t *testing.T) {
    f := newFixture(t, 0)
    graveID, deceasedID := f.seed(t)
    ctx := context.Background()
    require.NoError(t, f.graves.Create(ctx, &model.Grave{GraveID: "A-1-02", Section: "A", GraveRow: 1, GravePlot: 2}))

    _, err := f.svc.CreateAssignment(ctx, input(graveID, deceasedID))
    require.NoError(t, err)

    _, err = f.svc.CreateAssignment(ctx, input("A-1-02", deceasedID))
    ae := requireKind(t, err, apperr.KindConflict)
    assert.Equal(t, "Deceased person already has a grave assignment", ae.Message)

    g, err := f.graves.GetByID(ctx, "A-1-02")
    require.NoError(t, err)
    assert.Equal(t, model.GraveAvailable, g.Status)
}

func TestCreateAssignment_ConcurrentSameGrave(t *testing.T) {
    f := newFixture(t, 10*time.Second)
    graveID, _ := f.seed(t)

    const n = 8
    ids := make([]uint64, n)
    for i := range ids {
        ids[i] = f.addDeceased(t, fmt.Sprintf("78400000000%04d", i))
    }

    var (
        wg        sync.WaitGroup
        mu        sync.Mutex
        successes int
        conflicts int
    )
    start := make(chan struct{})
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func(id uint64) {
            defer wg.Done()
            <-start
            _, err := f.svc.CreateAssignment(context.Background(), input(graveID, id))
            mu.Lock()
            defer mu.Unlock()
            switch {
            case err == nil:
                successes++
            case apperr.KindOf(err) == apperr.KindConflict:
                conflicts++
            default:
                t.Errorf("unexpected error: %v", err)
            }
        }(ids[i])
    }
    close(start)
    wg.Wait()

    assert.Equal(t, 1, successes)
    assert.Equal(t, n-1, conflicts)

    _, total, err := f.assignments.List(context.Background(), repository.AssignmentFilter{GraveID: graveID})
    require.NoError(t, err)
    assert.Equal(t, 1, total)
}

func TestCreateAssignment_TimeoutIsRetryable(t *testing.T) {
    f := newFixture(t, 50*time.Millisecond)
    graveID, deceasedID := f.seed(t)

    // Hold the only pooled connection so the engine cannot start its
    // transaction before the deadline.
    tx, err := f.db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    defer func() { _ = tx.Rollback() }()

    _, err = f.svc.CreateAssignment(context.Background(), input(graveID, deceasedID))
    requireKind(t, err, apperr.KindUnavailable)
}

func TestCreateAssignment_PublishFailureDoesNotFail(t *testing.T) {
    f := newFixture(t, 0)
    graveID, deceasedID := f.seed(t)
    f.pub.err = errors.New("broker down")

    a, err := f.svc.CreateAssignment(context.Background(), input(graveID, deceasedID))
    require.NoError(t, err)
    assert.NotZero(t, a.AssignmentID)
}

func TestCompleteAssignment(t *testing.T) {
    f := newFixture(t, 0)
    graveID, deceasedID := f.seed(t)
    ctx := context.Background()

    a, err := f.svc.CreateAssignment(ctx, input(graveID, deceasedID))
    require.NoError(t, err)

    require.NoError(t, f.svc.CompleteAssignment(ctx, a.AssignmentID))
    require.NoError(t, f.svc.CompleteAssignment(ctx, a.AssignmentID))

    d, err := f.assignments.GetByID(ctx, a.AssignmentID)
    require.NoError(t, err)
    assert.True(t, d.BurialCompleted)

    events := f.pub.Events()
    require.Len(t, events, 3)
    assert.Equal(t, queue.EventBurialCompleted, events[1].Type)
    assert.Equal(t, graveID, events[1].GraveID)

    err = f.svc.CompleteAssignment(ctx, 9999)
    ae := requireKind(t, err, apperr.KindNotFound)
    assert.Equal(t, "Assignment not found", ae.Message)
}
