package config

func (m *Manager) GetDefault() *Config {
	return &Config{
		App: App{
			LogLevel:     "info",
			GinMode:      "release",
			ListenAddr:   ":5000",
			DatabasePath: "data/streamboard.sqlite3",
		},
		Fetcher: Fetcher{
			IntervalSeconds:   300,
			MaxStreamsPerGame: 200,
			Languages:         []string{},
		},
		Limiter: Limiter{
			RPS:   10,
			Burst: 30,
		},
	}
}
