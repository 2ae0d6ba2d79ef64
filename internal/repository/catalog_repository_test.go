package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJittiPat/Timetable2/internal/models"
)

func writeTables(t *testing.T, fs afero.Fs, dir string, tables map[string]string) {
	t.Helper()
	for name, content := range tables {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func sampleTables() map[string]string {
	return map[string]string{
		TeacherFile:      "teacher_id,teacher_name\nT1,Somchai\r\nT2,\n",
		RoomFile:         "room_id,room_name\nR1,Lab 1\n\nR2,Room 2\n",
		GroupFile:        "group_id,group_name,advisor\nG1,Grade 1/1,T1\nG2\n",
		SubjectFile:      "subject_id,subject_name,theory,practice,credit\nS1,Math,2,1,3\nS2,Art,x,,1\nS3,Drawing,2.0,1.5,3\n",
		EligibilityFile:  "subject_id,teacher_id\nS1,T1\nS1,T2\n",
		TimeslotFile:     "timeslot_id,day,period\nMon-1,Mon,1\nMon-2, Mon , 2 \nMon-x,Mon,\nTue-3,Tue,3abc\n",
		RegistrationFile: "group_id,subject_id\nG1,S1\nG2,S2\n",
	}
}

func TestCatalogRepositoryLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTables(t, fs, "/data", sampleTables())
	repo := NewCatalogRepository(fs, "/data", nil)

	catalog, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.Teacher{{ID: "T1", Name: "Somchai"}, {ID: "T2", Name: ""}}, catalog.Teachers)
	assert.Equal(t, []models.Room{{ID: "R1", Name: "Lab 1"}, {ID: "R2", Name: "Room 2"}}, catalog.Rooms)
	assert.Equal(t, []models.StudentGroup{{ID: "G1", Name: "Grade 1/1", Advisor: "T1"}, {ID: "G2"}}, catalog.Groups)
	assert.Equal(t, []models.Subject{
		{ID: "S1", Name: "Math", Theory: 2, Practice: 1, Credit: "3"},
		{ID: "S2", Name: "Art", Theory: 0, Practice: 0, Credit: "1"},
		{ID: "S3", Name: "Drawing", Theory: 2, Practice: 1, Credit: "3"},
	}, catalog.Subjects)
	assert.Equal(t, []models.Eligibility{{SubjectID: "S1", TeacherID: "T1"}, {SubjectID: "S1", TeacherID: "T2"}}, catalog.Eligibilities)
	assert.Equal(t, []models.Timeslot{
		{ID: "Mon-1", Day: "Mon", Period: 1},
		{ID: "Mon-2", Day: "Mon", Period: 2},
		{ID: "Mon-x", Day: "Mon", Period: 0},
		{ID: "Tue-3", Day: "Tue", Period: 3},
	}, catalog.Timeslots)
	assert.Equal(t, []models.Registration{{GroupID: "G1", SubjectID: "S1"}, {GroupID: "G2", SubjectID: "S2"}}, catalog.Registrations)
	assert.Len(t, catalog.Fingerprint, 64)
}

func TestCatalogRepositoryMissingTablesAreEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTables(t, fs, "/data", map[string]string{
		RoomFile:    "room_id,room_name\n",
		SubjectFile: "subject_id,subject_name,theory,practice,credit",
	})
	repo := NewCatalogRepository(fs, "/data", nil)

	catalog, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, catalog.Teachers)
	assert.Empty(t, catalog.Rooms)
	assert.Empty(t, catalog.Subjects)
	assert.Empty(t, catalog.Registrations)
}

func TestCatalogRepositoryFingerprintTracksInputs(t *testing.T) {
	fs := afero.NewMemMapFs()
	tables := sampleTables()
	writeTables(t, fs, "/data", tables)
	repo := NewCatalogRepository(fs, "/data", nil)
	ctx := context.Background()

	first, err := repo.Fingerprint(ctx)
	require.NoError(t, err)
	again, err := repo.Fingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	catalog, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, catalog.Fingerprint)

	writeTables(t, fs, "/data", map[string]string{RegistrationFile: tables[RegistrationFile] + "G1,S2\n"})
	changed, err := repo.Fingerprint(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestCatalogRepositoryHonoursCancellation(t *testing.T) {
	repo := NewCatalogRepository(afero.NewMemMapFs(), "/data", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseTablePadsShortRows(t *testing.T) {
	rows, err := parseTable([]byte("a,b,c\n1\n , ,\n2,3,4,5\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, row{"a": "1", "b": "", "c": ""}, rows[0])
	assert.Equal(t, row{"a": "2", "b": "3", "c": "4"}, rows[1])
}

func TestLeadingInt(t *testing.T) {
	cases := map[string]int{
		"2":         2,
		" 12 ":      12,
		"2.0":       2,
		"1.5":       1,
		"3abc":      3,
		"3 periods": 3,
		"+4":        4,
		"-1":        -1,
		"":          0,
		"x":         0,
		"-":         0,
		".5":        0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, leadingInt(raw), raw)
	}
}
