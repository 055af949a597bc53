package robot_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rpggio/robolab/internal/repository/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

var fixedNow = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func newService(repo *mocks.RobotRepository, opts ...robot.Option) *robot.Service {
	opts = append([]robot.Option{robot.WithClock(fixedNow)}, opts...)
	return robot.NewService(repo, zerolog.Nop(), opts...)
}

func validInput() robot.Input {
	return robot.Input{Name: "R2-D2", Label: "Astromech droid", Year: 1977, Type: robot.TypeService}
}

func TestRobotService_CreateTrimsAndInserts(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	want := robot.Input{Name: "R2-D2", Label: "Astromech droid", Year: 1977, Type: robot.TypeService}

	repo.On("IsNameUnique", ctx, "R2-D2", "").Return(true, nil)
	repo.On("Create", ctx, want).Return(&robot.Robot{ID: "id-1", Name: "R2-D2"}, nil)

	svc := newService(repo)
	in := validInput()
	in.Name = "  R2-D2 "
	in.Label = " Astromech droid  "
	rec, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "id-1", rec.ID)
	repo.AssertExpectations(t)
}

func TestRobotService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	repo.On("IsNameUnique", ctx, "R2-D2", "").Return(false, nil)

	svc := newService(repo)
	_, err := svc.Create(ctx, validInput())
	require.ErrorIs(t, err, robot.ErrDuplicateName)
	require.Equal(t, robot.KindDuplicateName, robot.Kind(err))
	require.Equal(t, `A robot named "R2-D2" already exists`, robot.Message(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRobotService_CreateRaceMappedByStore(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	repo.On("IsNameUnique", ctx, "R2-D2", "").Return(true, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil, &robot.DuplicateNameError{Name: "R2-D2"})

	svc := newService(repo)
	_, err := svc.Create(ctx, validInput())
	require.ErrorIs(t, err, robot.ErrDuplicateName)
}

func TestRobotService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	svc := newService(repo)

	in := validInput()
	in.Name = "R"
	in.Year = 2026
	_, err := svc.Create(ctx, in)
	require.ErrorIs(t, err, robot.ErrValidation)

	var verr *robot.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	require.Equal(t, "name", verr.Fields[0].Field)
	require.Equal(t, "year", verr.Fields[1].Field)
	repo.AssertNotCalled(t, "IsNameUnique", mock.Anything, mock.Anything, mock.Anything)
}

func TestRobotService_UpdateChecksNameExcludingSelf(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	name := "C-3PO"
	patch := robot.Patch{Name: &name}

	repo.On("IsNameUnique", ctx, "C-3PO", "id-1").Return(true, nil)
	repo.On("Update", ctx, "id-1", patch).Return(&robot.Robot{ID: "id-1", Name: "C-3PO"}, nil)

	svc := newService(repo)
	rec, err := svc.Update(ctx, "id-1", patch)
	require.NoError(t, err)
	require.Equal(t, "C-3PO", rec.Name)
	repo.AssertExpectations(t)
}

func TestRobotService_UpdateWithoutNameSkipsCheck(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	year := 1980
	patch := robot.Patch{Year: &year}

	repo.On("Update", ctx, "id-1", patch).Return(&robot.Robot{ID: "id-1", Year: 1980}, nil)

	svc := newService(repo)
	_, err := svc.Update(ctx, "id-1", patch)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "IsNameUnique", mock.Anything, mock.Anything, mock.Anything)
}

func TestRobotService_UpdateEmptyID(t *testing.T) {
	svc := newService(&mocks.RobotRepository{})
	_, err := svc.Update(context.Background(), " ", robot.Patch{})
	require.ErrorIs(t, err, robot.ErrNotFound)
}

func TestRobotService_UpdateInvalidPatch(t *testing.T) {
	svc := newService(&mocks.RobotRepository{})
	kind := robot.Type("spaceship")
	_, err := svc.Update(context.Background(), "id-1", robot.Patch{Type: &kind})
	require.ErrorIs(t, err, robot.ErrValidation)
}

func TestRobotService_NotFoundPassesThrough(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	repo.On("Delete", ctx, "missing").Return(robot.ErrNotFound)
	repo.On("Archive", ctx, "missing").Return(nil, robot.ErrNotFound)
	repo.On("Unarchive", ctx, "missing").Return(nil, robot.ErrNotFound)

	svc := newService(repo)
	require.ErrorIs(t, svc.Remove(ctx, "missing"), robot.ErrNotFound)

	_, err := svc.Archive(ctx, "missing")
	require.ErrorIs(t, err, robot.ErrNotFound)

	_, err = svc.Unarchive(ctx, "missing")
	require.ErrorIs(t, err, robot.ErrNotFound)
	require.Equal(t, "Robot not found", robot.Message(err))
}

func TestRobotService_InternalErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	boom := errors.New("disk I/O error")
	repo.On("Count", ctx, false).Return(0, boom)

	svc := newService(repo)
	_, err := svc.Count(ctx, false)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "counting robots")
	require.Equal(t, robot.KindInternal, robot.Kind(err))
	require.Equal(t, "Something went wrong, please try again", robot.Message(err))
}

func TestRobotService_GetAbsent(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	repo.On("Get", ctx, "nope", false).Return(nil, nil)

	svc := newService(repo)
	rec, err := svc.Get(ctx, "nope", false)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestRobotService_ListNormalizesOptions(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	want := robot.ListOptions{Q: "droid", Sort: robot.SortName, Order: robot.OrderAsc, Limit: robot.DefaultListLimit}
	repo.On("List", ctx, want).Return([]robot.Robot{{ID: "a"}}, nil)

	svc := newService(repo)
	recs, err := svc.List(ctx, robot.ListOptions{Q: " droid ", Sort: "color", Order: "sideways"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	repo.AssertExpectations(t)
}

func TestRobotService_IsNameUniqueTrims(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	repo.On("IsNameUnique", ctx, "r2d2", "").Return(false, nil)

	svc := newService(repo)
	unique, err := svc.IsNameUnique(ctx, " r2d2 ", "")
	require.NoError(t, err)
	require.False(t, unique)
}

func TestRobotService_ExportJSONEmpty(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	repo.On("Export", ctx, false).Return(nil, nil)

	svc := newService(repo)
	data, err := svc.ExportJSON(ctx, false)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestRobotService_ExportToFileEmpty(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	repo.On("Export", ctx, false).Return([]robot.Robot{}, nil)

	svc := newService(repo)
	_, err := svc.ExportToFile(ctx, t.TempDir(), false)
	require.ErrorIs(t, err, robot.ErrNothingToExport)
	require.Equal(t, "No robots to export", robot.Message(err))
}

func TestRobotService_ExportToFile(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	recs := []robot.Robot{
		{ID: "a", Name: "R2-D2", Label: "Astromech droid", Year: 1977, Type: robot.TypeService},
		{ID: "b", Name: "Baxter", Label: "Factory arm", Year: 2012, Type: robot.TypeIndustrial},
	}
	repo.On("Export", ctx, false).Return(recs, nil)

	fs := afs.New()
	svc := newService(repo, robot.WithFileSystem(fs))
	res, err := svc.ExportToFile(ctx, t.TempDir(), false)
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)

	wantName := fmt.Sprintf("robots_export_%d.json", fixedNow().UnixMilli())
	require.True(t, strings.HasSuffix(res.URL, wantName), res.URL)

	data, err := fs.DownloadWithURL(ctx, res.URL)
	require.NoError(t, err)
	require.Equal(t, res.Bytes, len(data))

	var got []robot.Robot
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, recs, got)
}

func TestRobotService_RecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RobotRepository{}
	rec := &mocks.Recorder{}
	repo.On("Delete", ctx, "missing").Return(robot.ErrNotFound)
	rec.On("ObserveOperation", "sqlite", "remove", "not_found", mock.Anything).Return()

	svc := newService(repo, robot.WithRecorder(rec))
	_ = svc.Remove(ctx, "missing")
	rec.AssertExpectations(t)
}
