package synccrmlead

import (
	"time"

	"advisor-routing/internal/common/config"
)

type Config struct {
	Enabled    bool
	LeadSource string
	Timeout    time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		Enabled:    cfg.Integrations.Zoho.Enabled,
		LeadSource: cfg.Integrations.Zoho.LeadSource,
		Timeout:    timeout,
	}
}
