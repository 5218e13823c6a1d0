package board

import (
	"fmt"
	"net/url"

	"streamboard/internal/board/api"
	"streamboard/internal/board/prefs"
	"streamboard/internal/board/sched"
	"streamboard/internal/board/term"
	"streamboard/internal/board/view"
	"streamboard/pkg/logger"
)

type Options struct {
	ServerURL string
	PrefsPath string
	// ShareLink is an optional link whose games/ignored parameters
	// override the stored preferences.
	ShareLink string
	LogPath   string
}

// New wires the terminal board and blocks until the user quits.
func New(opts Options) error {
	log := logger.NewFile(opts.LogPath)

	client, err := api.NewClient(opts.ServerURL)
	if err != nil {
		return err
	}
	base, err := url.Parse(opts.ServerURL)
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}

	store := prefs.NewStore(opts.PrefsPath)

	var link *url.URL
	if opts.ShareLink != "" {
		link, err = url.Parse(opts.ShareLink)
		if err != nil {
			return fmt.Errorf("parse share link: %w", err)
		}
	}
	followed, ignored, filters := store.Boot(link)

	loop := sched.NewLoop()
	defer loop.Stop()

	t := term.New(logger.NewPrefixedLogger(log, "term"), loop)

	ctrl := view.NewController(view.ControllerConfig{
		Log:       log,
		Loop:      loop,
		Store:     store,
		Client:    client,
		Renderer:  t,
		Surface:   t,
		ShareBase: base,
		Clipboard: t.Clipboard,
		CardWidth: term.CardWidth,
		CardGap:   term.CardGap,
		Initial: view.State{
			Followed: followed,
			Ignored:  ignored,
			Filters:  filters,
		},
	})
	t.SetOnResize(ctrl.OnResize)

	log.Info("board started", "server", opts.ServerURL, "followed", len(followed))

	ctrl.Start()
	go t.RunInput(ctrl)
	t.Run()

	ctrl.Close()
	return nil
}
