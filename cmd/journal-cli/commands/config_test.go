package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadConfigDefaults(t *testing.T) {
	config, err := readConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "journal.db", config.Database.File)
	require.Equal(t, defaultRefreshCron, config.RefreshCron)

	opts, err := config.ClientOptions()
	require.NoError(t, err)
	require.Zero(t, opts.Timeout)
	require.Empty(t, opts.BaseUrl)
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		base_url: "http://localhost:9000",
		period_id: "1801",
		request_timeout: "45s",
		database: { url: "libsql://journal.turso.io", auth_token: "token" },
		refresh_cron: "0 7 * * *",
	}`), 0600))

	config, err := readConfig(path)
	require.NoError(t, err)
	require.Equal(t, "libsql://journal.turso.io", config.Database.Url)
	require.Empty(t, config.Database.File)
	require.Equal(t, "0 7 * * *", config.RefreshCron)

	opts, err := config.ClientOptions()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000", opts.BaseUrl)
	require.Equal(t, "1801", opts.PeriodId)
	require.Equal(t, 45*time.Second, opts.Timeout)
}

func TestClientOptionsInvalidTimeout(t *testing.T) {
	_, err := Config{RequestTimeout: "soon"}.ClientOptions()
	require.Error(t, err)

	_, err = Config{RequestTimeout: "-1s"}.ClientOptions()
	require.Error(t, err)
}
