package di

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/mikey/bayes-spam-filter/internal/config"
)

// FlagBinding ties a command line flag to a configuration key
type FlagBinding struct {
	Key  string
	Flag string
}

// LoadCLIConfig reads the configuration file (an empty path searches the
// default locations) and layers the bound command line flags over it. Flags
// only override when set explicitly.
func LoadCLIConfig(configFile string, flags *pflag.FlagSet, bindings []FlagBinding) (*config.Config, error) {
	cfg, err := config.New(configFile)
	if err != nil {
		return nil, err
	}

	v := cfg.GetViper()
	for _, b := range bindings {
		flag := flags.Lookup(b.Flag)
		if flag == nil {
			return nil, fmt.Errorf("unknown flag %q for key %s", b.Flag, b.Key)
		}
		if err := v.BindPFlag(b.Key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", b.Flag, err)
		}
	}

	return cfg, nil
}
