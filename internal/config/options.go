package config

// DefaultURL is the sample document pre-filled in the URL input.
const DefaultURL = "https://github.com/scarletstudio/scarletstudio.github.io/blob/main/_blog/mentors.md"

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "default_url", Default: DefaultURL, Comment: "GitHub blob URL pre-filled in the URL input"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for the web viewer"},

		{Key: "github.api_url", Default: "https://api.github.com", Comment: "GitHub REST API base URL (commit history)"},
		{Key: "github.raw_url", Default: "https://raw.githubusercontent.com", Comment: "GitHub raw-content base URL (file bodies)"},
		{Key: "github.timeout", Default: "0s", Comment: "Per-request timeout; 0s waits indefinitely"},

		{Key: "http.max_sessions", Default: 256, Comment: "Browser sessions kept in memory by the web viewer (least recently used evicted)"},

		{Key: "tls.domain", Default: "", Comment: "Serve HTTPS for this domain with automatic certificates (empty disables TLS)"},
		{Key: "tls.email", Default: "", Comment: "ACME account email for certificate issuance"},
		{Key: "tls.storage_dir", Default: "", Comment: "Certificate storage; defaults to $XDG_CACHE_HOME/mdhistory/certmagic"},

		{Key: "render.style", Default: "dracula", Comment: "glamour style for terminal rendering (dracula, dark, light, notty, ...)"},
		{Key: "render.word_wrap", Default: 80, Comment: "Word wrap width for terminal rendering"},
		{Key: "render.sanitize", Default: true, Comment: "Sanitize rendered HTML with a user-generated-content policy"},

		{Key: "log.level", Default: "info", Comment: "Log level: debug, info, warn, error"},
		{Key: "log.file", Default: "", Comment: "Log file; empty logs to stderr (the TUI defaults to $XDG_STATE_HOME/mdhistory/tui.log)"},
	}
}
