package bff

// extractConfig holds extraction settings.
type extractConfig struct {
	permissions bool
	owners      bool
	timestamps  bool
	filter      func(*Record) bool
	globs       []string
}

// defaultExtractConfig restores timestamps only, leaving ownership and
// permission bits to the process defaults.
func defaultExtractConfig() extractConfig {
	return extractConfig{timestamps: true}
}

// ExtractOption configures an extraction.
type ExtractOption func(*extractConfig)

// ExtractWithPermissions controls whether recorded permission bits
// (including setuid, setgid, and sticky) are restored. Off by default.
func ExtractWithPermissions(enabled bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.permissions = enabled
	}
}

// ExtractWithOwners controls whether recorded UID and GID are restored.
// Off by default; requires sufficient privileges.
func ExtractWithOwners(enabled bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.owners = enabled
	}
}

// ExtractWithTimestamps controls whether recorded access and modification
// times are restored. On by default.
func ExtractWithTimestamps(enabled bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.timestamps = enabled
	}
}

// ExtractWithFilter limits extraction to records the predicate accepts.
func ExtractWithFilter(filter func(*Record) bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.filter = filter
	}
}

// ExtractWithGlob limits extraction to records whose cleaned path matches
// the doublestar pattern. Repeating the option widens the selection.
func ExtractWithGlob(pattern string) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.globs = append(cfg.globs, pattern)
	}
}
