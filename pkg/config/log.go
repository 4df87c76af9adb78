package config

// LogConfig selects the slog level; unknown values fall back to info in
// pkg/bootstrap, so there is nothing to validate.
type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) Validate() error {
	return nil
}
