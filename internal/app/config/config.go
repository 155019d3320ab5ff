// Package config loads the connector configuration from defaults, an optional
// config file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML
// config file. Environment variables always win over the file.
const ConfigFileEnv = "SUPPLY_CONFIG_FILE"

// Config carries every runtime knob of the connector.
type Config struct {
	DataDir    string `koanf:"data_dir"`
	CADir      string `koanf:"ca_dir"`
	ListenAddr string `koanf:"listen_addr"`

	OzonClientID string `koanf:"ozon_client_id"`
	OzonAPIKey   string `koanf:"ozon_api_key"`
	OzonBaseURL  string `koanf:"ozon_base_url"`

	SupplyTaskFile string `koanf:"supply_task_file"`
	Timezone       string `koanf:"timezone"`

	APITimeoutSeconds          int     `koanf:"api_timeout_seconds"`
	OzonHTTPHardTimeoutSeconds int     `koanf:"ozon_http_hard_timeout_seconds"`
	CreateQuietBeforeSec       float64 `koanf:"create_quiet_before_sec"`
	CreateQuietAfterSec        float64 `koanf:"create_quiet_after_sec"`

	SupplyProcessInterval        int `koanf:"supply_process_interval"`
	SlotPollIntervalSeconds      int `koanf:"slot_poll_interval_seconds"`
	OperationPollIntervalSeconds int `koanf:"operation_poll_interval_seconds"`
	OperationPollTimeoutSeconds  int `koanf:"operation_poll_timeout_seconds"`
	SupplyMaxOperationRetries    int `koanf:"supply_max_operation_retries"`

	RateLimitDefaultCooldown int `koanf:"rate_limit_default_cooldown"`
	RateLimitMaxOn429        int `koanf:"rate_limit_max_on429"`
	On429ShortRetrySec       int `koanf:"on429_short_retry_sec"`

	CreateInitialBackoff          int `koanf:"create_initial_backoff"`
	CreateMaxBackoff              int `koanf:"create_max_backoff"`
	SupplyCreateStageDelaySeconds int `koanf:"supply_create_stage_delay_seconds"`
	SupplyCreateMinRetrySeconds   int `koanf:"supply_create_min_retry_seconds"`
	SupplyCreateMaxRetrySeconds   int `koanf:"supply_create_max_retry_seconds"`
	DraftCreateMinSpacingSeconds  int `koanf:"draft_create_min_spacing_seconds"`
	DraftCreateMaxBackoff         int `koanf:"draft_create_max_backoff"`

	TimeslotAllowFallback         bool `koanf:"timeslot_allow_fallback"`
	TimeslotFallbackDeltaMin      int  `koanf:"timeslot_fallback_delta_min"`
	SupplyTimeslotSearchExtraDays int  `koanf:"supply_timeslot_search_extra_days"`

	SupplyMaxDraftsPerTick        int `koanf:"supply_max_drafts_per_tick"`
	SupplyMaxSupplyCreatesPerTick int `koanf:"supply_max_supply_creates_per_tick"`

	SupplyPurgeAgeDays int `koanf:"supply_purge_age_days"`
	PurgeStaleHours    int `koanf:"purge_stale_hours"`
	SupplyMinLeadMin   int `koanf:"supply_min_lead_minutes"`
	SupplyMaxRollDays  int `koanf:"supply_max_roll_days"`

	AutoCreateCargoes bool `koanf:"auto_create_cargoes"`
	AutoCreateLabels  bool `koanf:"auto_create_labels"`
	AutoSendLabelPDF  bool `koanf:"auto_send_label_pdf"`

	AutoDeleteCreatedMinutes   int  `koanf:"auto_delete_created_minutes"`
	AutoDeleteCreatedImmediate bool `koanf:"auto_delete_created_immediate"`

	SupplyTypeDefault  string `koanf:"supply_type_default"`
	SupplyClusterIDs   string `koanf:"supply_cluster_ids"`
	SupplyWarehouseMap string `koanf:"supply_warehouse_map"`
	DropID             int64  `koanf:"drop_id"`

	NotifyWebhookURL string `koanf:"notify_webhook_url"`
	SellerPortalURL  string `koanf:"seller_portal_url"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"data_dir":    "/app/data",
		"ca_dir":      "/app/ca",
		"listen_addr": ":8080",

		"ozon_base_url": "https://api-seller.ozon.ru",

		"supply_task_file": "supply_tasks.db",
		"timezone":         "Asia/Yekaterinburg",

		"api_timeout_seconds":            15,
		"ozon_http_hard_timeout_seconds": 8,
		"create_quiet_before_sec":        0.6,
		"create_quiet_after_sec":         1.2,

		"supply_process_interval":         45,
		"slot_poll_interval_seconds":      180,
		"operation_poll_interval_seconds": 25,
		"operation_poll_timeout_seconds":  600,
		"supply_max_operation_retries":    25,

		"rate_limit_default_cooldown": 10,
		"rate_limit_max_on429":        60,
		"on429_short_retry_sec":       5,

		"create_initial_backoff":            2,
		"create_max_backoff":                120,
		"supply_create_stage_delay_seconds": 15,
		"supply_create_min_retry_seconds":   20,
		"supply_create_max_retry_seconds":   90,
		"draft_create_min_spacing_seconds":  3,
		"draft_create_max_backoff":          120,

		"timeslot_allow_fallback":           false,
		"timeslot_fallback_delta_min":       120,
		"supply_timeslot_search_extra_days": 7,

		"supply_max_drafts_per_tick":         1,
		"supply_max_supply_creates_per_tick": 1,

		"supply_purge_age_days":   7,
		"purge_stale_hours":       48,
		"supply_min_lead_minutes": 60,
		"supply_max_roll_days":    14,

		"auto_create_cargoes":  false,
		"auto_create_labels":   true,
		"auto_send_label_pdf":  true,

		"auto_delete_created_minutes":   10,
		"auto_delete_created_immediate": true,

		"supply_type_default": "CREATE_TYPE_DIRECT",

		"seller_portal_url": "https://seller.ozon.ru",
	}
}

// Load builds the Config. Precedence: defaults, then the optional YAML file,
// then environment variables. Environment names are the upper-cased koanf
// keys (DATA_DIR, OZON_CLIENT_ID, SUPPLY_WAREHOUSE_MAP, ...).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.SupplyTimeslotSearchExtraDays < 0 {
		cfg.SupplyTimeslotSearchExtraDays = 0
	}
	if cfg.OzonHTTPHardTimeoutSeconds < 1 {
		cfg.OzonHTTPHardTimeoutSeconds = 1
	}
	if cfg.DraftCreateMinSpacingSeconds < 1 {
		cfg.DraftCreateMinSpacingSeconds = 1
	}

	return cfg, nil
}

// Location resolves the configured warehouse timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DBPath is the SQLite task store path under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.SupplyTaskFile)
}

// KeysDir holds key material, including the payload-encryption PEM.
func (c *Config) KeysDir() string {
	return filepath.Join(c.DataDir, "keys")
}

// PayloadEncryptionKeyPath is the PEM consumed by the web middleware.
func (c *Config) PayloadEncryptionKeyPath() string {
	return filepath.Join(c.KeysDir(), "payload-encryption-key.pem")
}

// ClusterIDs parses the comma-separated cluster id list.
func (c *Config) ClusterIDs() []int64 {
	if strings.TrimSpace(c.SupplyClusterIDs) == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(c.SupplyClusterIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
