package trino

// Params holds Trino-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Source is reported to the coordinator as the client source.
	Source string `mapstructure:"source"`

	// Verify enables TLS certificate verification for https.
	Verify bool `mapstructure:"verify"`

	// HTTPScheme is "https" (default) or "http".
	HTTPScheme string `mapstructure:"http_scheme"`

	// SessionProperties are sent with every query (e.g. query_max_run_time).
	SessionProperties map[string]string `mapstructure:"session_properties"`
}

func defaultParams() Params {
	return Params{
		Source:     "dami",
		HTTPScheme: "https",
	}
}
