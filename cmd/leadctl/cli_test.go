package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"terrasite_backend/internal/auth/password"
	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/httpkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyLeads = `[
  {
    "id": 1,
    "name": "Ирина",
    "services": ["Сайт"],
    "description": "Сайт для салона красоты с онлайн-записью, прайсом и страницей мастеров салона",
    "budget": "30-50k",
    "contact_method": "whatsapp",
    "phone": "+79001234567",
    "telegram": null,
    "phone_number": null,
    "call_time": null,
    "email": null,
    "timestamp": "2024-03-01T10:15:30.123456"
  },
  {
    "id": 2,
    "name": "Дмитрий",
    "services": ["Дизайн", "Сайт"],
    "description": "Редизайн сайта автосервиса с онлайн-записью на диагностику и расчётом стоимости",
    "budget": "50-150k",
    "contact_method": "email",
    "email": "dm@example.com",
    "timestamp": "2024-03-02T08:00:00.000000Z"
  }
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:               "production",
		LeadsStore:        config.StoreFile,
		LeadsFile:         filepath.Join(t.TempDir(), "leads.json"),
		DuplicateWindow:   5 * time.Minute,
		AdminJWTSecret:    "test-secret",
		AdminTokenTTL:     time.Hour,
		AsynqQueueName:    "notifications",
		MinioBucketLeads:  "leads-archive",
		SMTPPort:          465,
	}
}

func runCLI(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(func() (*config.Config, error) { return cfg, nil })
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"leadctl"}, args...))
	return out.String(), err
}

func writeLegacyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "old-leads.json")
	require.NoError(t, os.WriteFile(path, []byte(legacyLeads), 0o644))
	return path
}

func TestImportThenList(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "", "import", writeLegacyFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"imported": 2`)

	out, err = runCLI(t, cfg, "", "list")
	require.NoError(t, err)

	var leads []domain.Lead
	require.NoError(t, json.Unmarshal([]byte(out), &leads))
	require.Len(t, leads, 2)
	assert.Equal(t, int64(1), leads[0].ID)
	assert.Equal(t, "Ирина", leads[0].Name)
	assert.Equal(t, int64(2), leads[1].ID)
	assert.Equal(t, "2024-03-02T08:00:00.000000Z", leads[1].Timestamp)
}

func TestImportAppendsAfterExistingLeads(t *testing.T) {
	cfg := testConfig(t)
	path := writeLegacyFile(t)

	_, err := runCLI(t, cfg, "", "import", path)
	require.NoError(t, err)
	_, err = runCLI(t, cfg, "", "import", path)
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "", "list")
	require.NoError(t, err)

	var leads []domain.Lead
	require.NoError(t, json.Unmarshal([]byte(out), &leads))
	require.Len(t, leads, 4)
	assert.Equal(t, int64(4), leads[3].ID)
}

func TestImportDryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "", "import", "--dry-run", writeLegacyFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"parsed": 2`)

	_, statErr := os.Stat(cfg.LeadsFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportRejectsBadInput(t *testing.T) {
	cfg := testConfig(t)

	_, err := runCLI(t, cfg, "", "import")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"contact_method":"fax","timestamp":"2024-01-01T00:00:00Z"}]`), 0o644))
	_, err = runCLI(t, cfg, "", "import", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown contact method")
}

func TestHashPasswordFromStdin(t *testing.T) {
	out, err := runCLI(t, testConfig(t), "s3cret-pass\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, password.Compare(hash, "s3cret-pass"))
}

func TestHashPasswordRequiresInput(t *testing.T) {
	_, err := runCLI(t, testConfig(t), "", "hash-password")
	assert.Error(t, err)
}

func TestTokenIsAcceptedByMiddleware(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "", "token", "--ttl", "10m")
	require.NoError(t, err)

	var resp map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	claims, err := httpkit.ParseAccessToken(resp["token"], cfg.AdminJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])

	expiresAt, err := time.Parse(time.RFC3339, resp["expiresAt"])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, time.Minute)
}

func TestTokenWithoutSecretFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminJWTSecret = ""

	_, err := runCLI(t, cfg, "", "token")
	assert.Error(t, err)
}

func TestArchiveBackfillNeedsMinIO(t *testing.T) {
	_, err := runCLI(t, testConfig(t), "", "archive-backfill")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_MINIO_ENDPOINT")
}
