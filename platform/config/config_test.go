package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.GetHTTPAddr())
	assert.Equal(t, StoreFile, cfg.GetLeadsStore())
	assert.Equal(t, "data/leads.json", cfg.GetLeadsFile())
	assert.Equal(t, 5*time.Minute, cfg.GetDuplicateWindow())
	assert.Equal(t, "smtp.yandex.ru", cfg.GetSMTPHost())
	assert.Equal(t, 465, cfg.GetSMTPPort())
	assert.Equal(t, []string{"*"}, cfg.GetCORSOrigins())
	assert.Equal(t, 10, cfg.GetRateLimitPerMinute())
	assert.False(t, cfg.IsSMTPEnabled())
	assert.False(t, cfg.IsTelegramEnabled())
	assert.False(t, cfg.IsMinIOEnabled())
	assert.False(t, cfg.IsAdminAuthEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_LEADS_STORE", "SQLite")
	t.Setenv("APP_SQLITE_PATH", "/tmp/leads.db")
	t.Setenv("APP_DUPLICATE_WINDOW", "90s")
	t.Setenv("APP_SMTP_USER", "bot@example.ru")
	t.Setenv("APP_SMTP_PASSWORD", "secret")
	t.Setenv("APP_TO_EMAIL", "sales@example.ru")
	t.Setenv("APP_TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("APP_TELEGRAM_CHAT_ID", "-100200")
	t.Setenv("APP_CORS_ORIGINS", "https://a.ru, https://b.ru ,")
	t.Setenv("APP_WHATSAPP_URL", "http://gowa:3000")
	t.Setenv("APP_WHATSAPP_NOTIFY_PHONE", "+79001112233")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.GetLeadsStore())
	assert.Equal(t, 90*time.Second, cfg.GetDuplicateWindow())
	assert.True(t, cfg.IsSMTPEnabled())
	assert.Equal(t, "bot@example.ru", cfg.GetFromEmail())
	assert.True(t, cfg.IsTelegramEnabled())
	assert.Equal(t, int64(-100200), cfg.GetTelegramChatID())
	assert.Equal(t, []string{"https://a.ru", "https://b.ru"}, cfg.GetCORSOrigins())
	assert.True(t, cfg.IsWhatsAppEnabled())
	assert.Equal(t, "+79001112233", cfg.GetWhatsAppNotifyPhone())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":        {"APP_LEADS_STORE": "mongo"},
		"postgres without url": {"APP_LEADS_STORE": "postgres"},
		"bad window":           {"APP_DUPLICATE_WINDOW": "soon"},
		"bad smtp port":        {"APP_SMTP_PORT": "0"},
		"hash without secret":  {"APP_ADMIN_PASSWORD_HASH": "$2a$10$x"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
