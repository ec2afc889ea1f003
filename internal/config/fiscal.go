package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FiscalConfig selects the active calculation policy. The policy is a
// deployment choice, never a runtime branch on request data.
type FiscalConfig struct {
	Policy                  string  `mapstructure:"policy"`
	AdditionWithholdingRate float64 `mapstructure:"additionWithholdingRate"`
}

func DefaultFiscalConfig() FiscalConfig {
	return FiscalConfig{
		Policy:                  "extraction",
		AdditionWithholdingRate: 0,
	}
}

// FiscalConfigHolder keeps the current fiscal configuration and swaps it
// atomically on file reload. A request's breakdown is computed once, so a
// reload only affects calculations performed after it.
type FiscalConfigHolder struct {
	current atomic.Value // holds FiscalConfig
}

func NewFiscalConfigHolder() (*FiscalConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("fiscal")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/cashout/config")
	v.AddConfigPath("/etc/cashout")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CASHOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultFiscalConfig()
		v.SetDefault("fiscal.policy", defaults.Policy)
		v.SetDefault("fiscal.additionWithholdingRate", defaults.AdditionWithholdingRate)
	}

	var cfg FiscalConfig
	if err := v.UnmarshalKey("fiscal", &cfg); err != nil {
		return nil, err
	}
	if err := validateFiscalConfig(cfg); err != nil {
		return nil, err
	}

	holder := &FiscalConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FiscalConfig
		if err := v.UnmarshalKey("fiscal", &updated); err != nil {
			log.Printf("[fiscal-config] reload failed: %v", err)
			return
		}
		if err := validateFiscalConfig(updated); err != nil {
			log.Printf("[fiscal-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[fiscal-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *FiscalConfigHolder) Get() FiscalConfig {
	return h.current.Load().(FiscalConfig)
}

func validateFiscalConfig(cfg FiscalConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Policy)) {
	case "extraction", "addition":
	default:
		return fmt.Errorf("fiscal.policy must be extraction or addition, got %q", cfg.Policy)
	}
	if cfg.AdditionWithholdingRate < 0 || cfg.AdditionWithholdingRate >= 1 {
		return errors.New("fiscal.additionWithholdingRate must be in [0, 1)")
	}
	return nil
}
