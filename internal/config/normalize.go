// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Device.Host = strings.TrimSpace(cfg.Device.Host)
	cfg.Bus.Host = strings.TrimSpace(cfg.Bus.Host)
	cfg.Bus.Subject = strings.TrimSpace(cfg.Bus.Subject)

	// Field names, profile and log settings are case-insensitive.
	sel := cfg.FieldSelection()
	cfg.Fields.Profile = sel.Profile
	cfg.Fields.Include = sel.Include
	cfg.Fields.Exclude = sel.Exclude

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Log.Output = strings.ToLower(strings.TrimSpace(cfg.Log.Output))

	// No other normalization is performed here.
	// Building the field set and dialing belong to later stages.
}
