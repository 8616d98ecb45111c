package config

import (
	"encoding/json"
	"os"

	"github.com/optitask/backend/internal/flagx"
	"github.com/optitask/backend/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which accepts both string
// values such as "5m" and integer nanoseconds. Fields are pointers so a
// partial file only overlays the keys it actually contains; absent keys
// keep their defaults.
type JsonConfig struct {
	DatabaseDSN    *string         `json:"database_dsn"`
	MigrateTimeout *timex.Duration `json:"migrate_timeout"`
	Debug          *bool           `json:"debug"`
}

// parseJson loads configuration values from the JSON file given via the
// -c or -config flags into the provided Config. With neither flag set,
// nothing is loaded. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.MigrateTimeout != nil {
		config.MigrateTimeout = c.MigrateTimeout.Duration
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}
