package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	AuthIssuer     string `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey string `mapstructure:"AUTH_SIGNING_KEY"`

	// Risk classification thresholds, inclusive lower bounds.
	RiskCriticalAt int `mapstructure:"RISK_CRITICAL_AT"`
	RiskHighAt     int `mapstructure:"RISK_HIGH_AT"`
	RiskMediumAt   int `mapstructure:"RISK_MEDIUM_AT"`

	// Ethical scores below ApprovalThreshold require a human approver.
	ApprovalThreshold int `mapstructure:"APPROVAL_THRESHOLD"`
	// Scores above MinorConcernAt classify as neutral dignity impact.
	MinorConcernAt int `mapstructure:"MINOR_CONCERN_AT"`
	// Action types treated as dignity-preserving when nothing degrades
	// their score, e.g. "COMFORT,SOCIAL".
	DignityPreservingActions []string `mapstructure:"DIGNITY_PRESERVING_ACTIONS"`

	// Optional external rule definitions; built-in defaults apply when empty.
	RiskRulesFile    string `mapstructure:"RISK_RULES_FILE"`
	EthicalRulesFile string `mapstructure:"ETHICAL_RULES_FILE"`

	// Incidents within this window mark a snapshot as recently affected.
	IncidentWindowDays int `mapstructure:"INCIDENT_WINDOW_DAYS"`

	// Bound on the audit-store write; persistence is non-fatal past it.
	AuditWriteTimeout time.Duration `mapstructure:"AUDIT_WRITE_TIMEOUT"`

	// Static cultural observance window for deployments without a
	// calendar integration (e.g. OBSERVANCE=ramadan).
	Observance      string `mapstructure:"OBSERVANCE"`
	ObservanceStart string `mapstructure:"OBSERVANCE_START"`
	ObservanceEnd   string `mapstructure:"OBSERVANCE_END"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RISK_CRITICAL_AT", 80)
	v.SetDefault("RISK_HIGH_AT", 50)
	v.SetDefault("RISK_MEDIUM_AT", 20)
	v.SetDefault("APPROVAL_THRESHOLD", 60)
	v.SetDefault("MINOR_CONCERN_AT", 70)
	v.SetDefault("DIGNITY_PRESERVING_ACTIONS", "ROUTINE_CARE")
	v.SetDefault("INCIDENT_WINDOW_DAYS", 30)
	v.SetDefault("AUDIT_WRITE_TIMEOUT", "5s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"CORS_ORIGINS", "AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
		"RISK_CRITICAL_AT", "RISK_HIGH_AT", "RISK_MEDIUM_AT",
		"APPROVAL_THRESHOLD", "MINOR_CONCERN_AT", "DIGNITY_PRESERVING_ACTIONS",
		"RISK_RULES_FILE", "ETHICAL_RULES_FILE",
		"INCIDENT_WINDOW_DAYS", "AUDIT_WRITE_TIMEOUT",
		"OBSERVANCE", "OBSERVANCE_START", "OBSERVANCE_END",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration can produce a sound engine.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required outside development")
	}
	if c.ApprovalThreshold < 0 || c.ApprovalThreshold > 100 {
		return fmt.Errorf("APPROVAL_THRESHOLD must be within [0,100], got %d", c.ApprovalThreshold)
	}
	if c.MinorConcernAt < 0 || c.MinorConcernAt > 100 {
		return fmt.Errorf("MINOR_CONCERN_AT must be within [0,100], got %d", c.MinorConcernAt)
	}
	if !(c.RiskMediumAt < c.RiskHighAt && c.RiskHighAt < c.RiskCriticalAt) {
		return fmt.Errorf("risk thresholds must be strictly increasing: medium=%d high=%d critical=%d",
			c.RiskMediumAt, c.RiskHighAt, c.RiskCriticalAt)
	}
	if c.RiskMediumAt < 0 || c.RiskCriticalAt > 100 {
		return fmt.Errorf("risk thresholds must lie within [0,100]")
	}
	if c.IncidentWindowDays <= 0 {
		return fmt.Errorf("INCIDENT_WINDOW_DAYS must be positive, got %d", c.IncidentWindowDays)
	}
	if (c.Observance == "") != (c.ObservanceStart == "" && c.ObservanceEnd == "") {
		return fmt.Errorf("OBSERVANCE, OBSERVANCE_START and OBSERVANCE_END must be set together")
	}
	return nil
}
