package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/perplex/internal/logging"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs", "preferences.db")
	database, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, path
}

func TestPreferencesDefaults(t *testing.T) {
	database, _ := openTestDB(t)
	prefs := NewPreferences(database, logging.Discard())

	assert.Equal(t, "meetings", prefs.String(KeyProjectTab, "meetings"))
	assert.False(t, prefs.Bool(KeyMeetingUpcomingOnly, false))
	assert.True(t, prefs.Bool(KeyMeetingUpcomingOnly, true))
}

func TestPreferencesRoundTrip(t *testing.T) {
	database, _ := openTestDB(t)
	prefs := NewPreferences(database, logging.Discard())

	prefs.SetString(KeyProjectTab, "tags")
	prefs.SetBool(KeyMeetingUpcomingOnly, true)

	assert.Equal(t, "tags", prefs.String(KeyProjectTab, "meetings"))
	assert.True(t, prefs.Bool(KeyMeetingUpcomingOnly, false))

	prefs.SetString(KeyProjectTab, "meetings")
	assert.Equal(t, "meetings", prefs.String(KeyProjectTab, ""))
}

func TestPreferencesSurviveReopen(t *testing.T) {
	database, path := openTestDB(t)
	NewPreferences(database, logging.Discard()).SetBool(KeyMeetingUpcomingOnly, true)
	require.NoError(t, database.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, NewPreferences(reopened, logging.Discard()).Bool(KeyMeetingUpcomingOnly, false))
}

func TestPreferencesMalformedBool(t *testing.T) {
	database, _ := openTestDB(t)
	prefs := NewPreferences(database, logging.Discard())

	prefs.SetString(KeyMeetingUpcomingOnly, "sometimes")
	assert.True(t, prefs.Bool(KeyMeetingUpcomingOnly, true))
}

type failingStore struct{}

func (failingStore) GetSetting(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingStore) SetSetting(string, string) error          { return errors.New("disk gone") }

func TestPreferencesStoreErrorsFallBack(t *testing.T) {
	prefs := NewPreferences(failingStore{}, logging.Discard())
	prefs.SetBool(KeyMeetingUpcomingOnly, true)
	assert.Equal(t, "meetings", prefs.String(KeyProjectTab, "meetings"))
}
