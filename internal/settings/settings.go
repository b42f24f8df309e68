// Package settings loads the small set of environment-driven knobs the
// CLI accepts, built on viper's setDefaults + Unmarshal idiom, reading
// directly from environment variables rather than a config file.
package settings

import (
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the process-wide ambient knobs: the directory-scan
// timeout, the executor's parallelism ceiling, and whether CLI output
// should be colorized.
type Settings struct {
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`
	MaxParallel int           `mapstructure:"max_parallel"`
	NoColor     bool          `mapstructure:"no_color"`
}

// Load reads RUSK_SCAN_TIMEOUT, RUSK_MAX_PARALLEL, and RUSK_NO_COLOR
// from the environment, falling back to defaults scaled to the host
// (MaxParallel defaults to runtime.NumCPU()) when unset.
func Load() (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("rusk")
	v.AutomaticEnv()
	for _, key := range []string{"scan_timeout", "max_parallel", "no_color"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan_timeout", 500*time.Millisecond)
	v.SetDefault("max_parallel", runtime.NumCPU())
	v.SetDefault("no_color", false)
}
