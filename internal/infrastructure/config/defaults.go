package config

import (
	"time"

	"github.com/spf13/viper"
)

// defaults lists every key. Keys without a useful default are still
// registered with their zero value so that AutomaticEnv can override them
// during Unmarshal.
var defaults = map[string]any{
	"app.name":     "plfog",
	"app.env":      "development",
	"app.port":     "8080",
	"app.timezone": "America/Los_Angeles",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "plfog",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":     false,
	"redis.host":        "localhost",
	"redis.port":        6379,
	"redis.password":    "",
	"redis.db":          0,
	"redis.setting_ttl": 5 * time.Minute,

	"jwt.secret":                  "",
	"jwt.access_token_expiration": 12 * time.Hour,
	"jwt.issuer":                  "plfog",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":     15 * time.Second,
	"http.write_timeout":    15 * time.Second,
	"http.idle_timeout":     60 * time.Second,
	"http.max_header_bytes": 1 << 20,
	"http.max_body_size":    int64(10 << 20),
	// no cross-origin requests until origins are configured
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"stripe.live_mode":       false,
	"stripe.live_secret_key": "",
	"stripe.test_secret_key": "",
	"stripe.currency":        "usd",

	"webpush.vapid_public_key":  "",
	"webpush.vapid_private_key": "",
	"webpush.admin_email":       "",

	"storage.enabled":            false,
	"storage.endpoint":           "",
	"storage.region":             "us-east-1",
	"storage.bucket":             "plfog-documents",
	"storage.access_key_id":      "",
	"storage.secret_access_key":  "",
	"storage.use_path_style":     false,
	"storage.presign_expiration": 15 * time.Minute,
	"storage.max_upload_size":    int64(25 << 20),

	"scheduler.enabled":            false,
	"scheduler.bill_tabs_schedule": "0 6 1 * *",
	"scheduler.job_timeout":        30 * time.Minute,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "plfog",
	"telemetry.insecure":                false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_export_interval": time.Minute,
	"telemetry.logs_enabled":            false,

	"static.service_worker_path": "static/sw.js",
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
