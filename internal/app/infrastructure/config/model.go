package config

type Config struct {
	App     App     `json:"app"`
	Twitch  Twitch  `json:"twitch"`
	Fetcher Fetcher `json:"fetcher"`
	Limiter Limiter `json:"limiter"`
}

type App struct {
	LogLevel     string `json:"log_level"`
	GinMode      string `json:"gin_mode"`
	ListenAddr   string `json:"listen_addr"`
	AuthToken    string `json:"auth_token"`
	DatabasePath string `json:"database_path"`
}

type Twitch struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type Fetcher struct {
	IntervalSeconds   int      `json:"fetch_interval_seconds"`
	MaxStreamsPerGame int      `json:"max_streams_per_game"`
	Languages         []string `json:"languages"`
}

// Limiter bounds /api requests per client address.
type Limiter struct {
	RPS   float64 `json:"rps"`
	Burst int     `json:"burst"`
}
