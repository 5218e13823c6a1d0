package main

import (
	"flag"
	stdlog "log"

	"streamboard/internal/pkg/board"
)

func main() {
	server := flag.String("server", "http://localhost:5000", "streamboard server base URL")
	prefsPath := flag.String("prefs", "board_prefs.json", "preference store path")
	link := flag.String("link", "", "share link overriding stored games/ignored")
	logPath := flag.String("log", "logs/board.log", "log file path")
	flag.Parse()

	if err := board.New(board.Options{
		ServerURL: *server,
		PrefsPath: *prefsPath,
		ShareLink: *link,
		LogPath:   *logPath,
	}); err != nil {
		stdlog.Fatalf("fatal: %v", err)
	}
}
