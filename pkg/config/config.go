package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	HTTP         HTTPConfig
	Cron         CronConfig
	SMTP         SMTPConfig
	Notification NotificationConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env         string // development, staging, production
	Name        string
	LogLevel    string
	StoreDriver string // postgres | memory
	FrontendURL string // base para los enlaces dentro de los emails
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT para la API de operación.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP de operación.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CronConfig zona horaria y cadencias de los jobs.
// Los overrides CRON_<JOB> se resuelven por nombre al registrar, así la lista de
// jobs vive solo en el registro. Schedules permite fijarlos sin entorno.
type CronConfig struct {
	Timezone  string
	Schedules map[string]string
	Disabled  []string

	lookup func(key string) string
}

// ScheduleFor devuelve el override del job (Schedules, luego CRON_<JOB>) o def.
func (c CronConfig) ScheduleFor(job, def string) string {
	if s, ok := c.Schedules[job]; ok && s != "" {
		return s
	}
	if c.lookup != nil {
		if s := strings.TrimSpace(c.lookup(CronKey(job))); s != "" {
			return s
		}
	}
	return def
}

// IsDisabled indica si el job está en JOBS_DISABLED.
func (c CronConfig) IsDisabled(job string) bool {
	for _, d := range c.Disabled {
		if d == job {
			return true
		}
	}
	return false
}

// SMTPConfig transporte de correo. Host vacío = mailer de log (sin envío real).
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// NotificationConfig parámetros de las notificaciones in-app.
type NotificationConfig struct {
	TTLDays int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, CRON_TIMEZONE, SMTP_HOST, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	return FromViper(v)
}

// FromViper construye la configuración a partir de una instancia de Viper ya cargada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:         getString(v, "APP_ENV", "development"),
			Name:        getString(v, "APP_NAME", "erp-automation"),
			LogLevel:    getString(v, "LOG_LEVEL", "info"),
			StoreDriver: getString(v, "STORE_DRIVER", "postgres"),
			FrontendURL: strings.TrimRight(getString(v, "FRONTEND_URL", "http://localhost:3000"), "/"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "erp"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "erp-automation"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8081),
		},
		Cron: CronConfig{
			Timezone:  getString(v, "CRON_TIMEZONE", "UTC"),
			Schedules: map[string]string{},
			Disabled:  splitList(getString(v, "JOBS_DISABLED", "")),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", "no-reply@erp.local"),
		},
		Notification: NotificationConfig{
			TTLDays: getInt(v, "NOTIFICATION_TTL_DAYS", 30),
		},
	}

	cfg.Cron.lookup = func(key string) string { return getString(v, key, "") }

	switch cfg.App.StoreDriver {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("STORE_DRIVER inválido: %q (postgres|memory)", cfg.App.StoreDriver)
	}
	if cfg.Notification.TTLDays <= 0 {
		cfg.Notification.TTLDays = 30
	}
	return cfg, nil
}

// CronKey nombre de la variable de entorno con el override de cadencia del job.
// task-reminders → CRON_TASK_REMINDERS.
func CronKey(job string) string {
	return "CRON_" + strings.ToUpper(strings.ReplaceAll(job, "-", "_"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
