package repository

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJittiPat/Timetable2/internal/models"
	"github.com/MrJittiPat/Timetable2/pkg/storage"
)

func TestScheduleRepositorySaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewScheduleRepository(storage.NewFileStore(fs), "/srv/output.csv")
	assignments := []models.Assignment{
		{GroupID: "G1", TimeslotID: "Mon-1", SubjectID: "S1", TeacherID: "T1", RoomID: "R1"},
		{GroupID: "G1", TimeslotID: "Mon-2", SubjectID: "S1", TeacherID: "T1", RoomID: "R1"},
	}

	require.NoError(t, repo.Save(assignments))

	raw, err := afero.ReadFile(fs, "/srv/output.csv")
	require.NoError(t, err)
	assert.Equal(t, "group_id,timeslot_id,subject_id,teacher_id,room_id\nG1,Mon-1,S1,T1,R1\nG1,Mon-2,S1,T1,R1\n", string(raw))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, assignments, loaded)
	assert.Equal(t, "output.csv", repo.Name())
}

func TestScheduleRepositoryEmptyScheduleWritesHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewScheduleRepository(storage.NewFileStore(fs), "/srv/output.csv")

	require.NoError(t, repo.Save(nil))

	raw, err := afero.ReadFile(fs, "/srv/output.csv")
	require.NoError(t, err)
	assert.Equal(t, "group_id,timeslot_id,subject_id,teacher_id,room_id\n", string(raw))
}

func TestScheduleRepositoryMissingOutput(t *testing.T) {
	repo := NewScheduleRepository(storage.NewFileStore(afero.NewMemMapFs()), "/srv/output.csv")

	assert.False(t, repo.Exists())
	_, err := repo.Open()
	assert.ErrorIs(t, err, ErrOutputMissing)
	_, err = repo.Load()
	assert.ErrorIs(t, err, ErrOutputMissing)
}

func TestScheduleRepositorySaveFailureKeepsPreviousOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/output.csv", []byte("previous"), 0o644))
	repo := NewScheduleRepository(storage.NewFileStore(afero.NewReadOnlyFs(fs)), "/srv/output.csv")

	require.Error(t, repo.Save([]models.Assignment{{GroupID: "G1"}}))

	reader, err := repo.Open()
	require.NoError(t, err)
	defer reader.Close() //nolint:errcheck
	raw, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(raw))
}
