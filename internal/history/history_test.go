package history

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revpol/tapealert/internal/tapealert"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func alertsFor(t *testing.T, codes ...int) []tapealert.Alert {
	t.Helper()
	var alerts []tapealert.Alert
	for _, code := range codes {
		f, ok := tapealert.Lookup(code)
		require.True(t, ok)
		alerts = append(alerts, tapealert.Alert{Flag: f, Detail: f.Name})
	}
	return alerts
}

func TestRecordAndReadBack(t *testing.T) {
	db := openTestDB(t)

	check := &Check{
		ID:     "run-1",
		JobID:  "1234",
		Device: "/dev/nst0",
		SGNode: "/dev/sg3",
		Status: StatusOK,
	}
	require.NoError(t, db.RecordCheck(check, alertsFor(t, 20, 13)))
	assert.Equal(t, 2, check.AlertCount)

	checks, err := db.RecentChecks("", 0)
	require.NoError(t, err)
	require.Len(t, checks, 1)

	got := checks[0]
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "1234", got.JobID)
	assert.Equal(t, "/dev/nst0", got.Device)
	assert.Equal(t, "/dev/sg3", got.SGNode)
	assert.Equal(t, StatusOK, got.Status)
	assert.Empty(t, got.Failure)
	assert.Equal(t, 2, got.AlertCount)
	assert.Equal(t, []int{13, 20}, got.Codes)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecordFailedCheck(t *testing.T) {
	db := openTestDB(t)

	check := &Check{
		ID:      "run-2",
		Device:  "/dev/nst0",
		Status:  StatusFailed,
		Failure: "no matching sg node",
	}
	require.NoError(t, db.RecordCheck(check, nil))

	checks, err := db.RecentChecks("", 0)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, StatusFailed, checks[0].Status)
	assert.Equal(t, "no matching sg node", checks[0].Failure)
	assert.Empty(t, checks[0].JobID)
	assert.Zero(t, checks[0].AlertCount)
	assert.Empty(t, checks[0].Codes)
}

func TestRecentChecksFilterAndLimit(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		dev := "/dev/nst0"
		if i%2 == 1 {
			dev = "/dev/nst1"
		}
		require.NoError(t, db.RecordCheck(&Check{
			ID:     fmt.Sprintf("run-%d", i),
			Device: dev,
			Status: StatusOK,
		}, nil))
	}

	checks, err := db.RecentChecks("", 3)
	require.NoError(t, err)
	require.Len(t, checks, 3)
	assert.Equal(t, "run-4", checks[0].ID)

	nst1, err := db.RecentChecks("/dev/nst1", 0)
	require.NoError(t, err)
	require.Len(t, nst1, 2)
	for _, c := range nst1 {
		assert.Equal(t, "/dev/nst1", c.Device)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.RecordCheck(&Check{
		ID: "run-1", Device: "/dev/nst0", Status: StatusOK,
	}, alertsFor(t, 4)))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	checks, err := db.RecentChecks("", 0)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, []int{4}, checks[0].Codes)
}
