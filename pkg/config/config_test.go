package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-automation/pkg/config"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Cron.Timezone)
	assert.Equal(t, "postgres", cfg.App.StoreDriver)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 30, cfg.Notification.TTLDays)
	assert.Equal(t, "http://localhost:3000", cfg.App.FrontendURL)
	assert.Empty(t, cfg.Cron.Schedules)
}

func TestFromViper_OverridesDeCadenciaYTimezone(t *testing.T) {
	v := viper.New()
	v.Set("CRON_TIMEZONE", "America/Bogota")
	v.Set("CRON_TASK_REMINDERS", "*/5 * * * *")
	v.Set("JOBS_DISABLED", "low-stock, license-expiry")
	v.Set("SMTP_PORT", "2525")
	v.Set("FRONTEND_URL", "https://app.example.com/")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "America/Bogota", cfg.Cron.Timezone)
	assert.Equal(t, "*/5 * * * *", cfg.Cron.ScheduleFor("task-reminders", "0 * * * *"))
	assert.Equal(t, "0 7 * * *", cfg.Cron.ScheduleFor("low-stock", "0 7 * * *"))
	assert.True(t, cfg.Cron.IsDisabled("low-stock"))
	assert.True(t, cfg.Cron.IsDisabled("license-expiry"))
	assert.False(t, cfg.Cron.IsDisabled("workflow"))
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "https://app.example.com", cfg.App.FrontendURL, "se recorta el slash final")
}

func TestCronConfig_OverrideDeJobSinListaFija(t *testing.T) {
	v := viper.New()
	v.Set("CRON_BILLING_SYNC", "*/10 * * * *")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "*/10 * * * *", cfg.Cron.ScheduleFor("billing-sync", "0 * * * *"),
		"cualquier job registrado puede sobreescribir su cadencia")

	cfg.Cron.Schedules = map[string]string{"billing-sync": "0 3 * * *"}
	assert.Equal(t, "0 3 * * *", cfg.Cron.ScheduleFor("billing-sync", "0 * * * *"), "Schedules tiene prioridad")
}

func TestFromViper_StoreDriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")
	_, err := config.FromViper(v)
	assert.Error(t, err)
}

func TestCronKey(t *testing.T) {
	assert.Equal(t, "CRON_NOTIFICATION_CLEANUP", config.CronKey("notification-cleanup"))
}
