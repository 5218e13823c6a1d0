package push

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"streamboard/pkg/logger"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Subscriber owns at most one live SSE subscription, keyed by the
// followed-game set. Changing the set tears the old subscription down
// and opens a new one; an empty set opens none. Reconnection is a
// bounded exponential backoff, reset once a healthy event arrives.
type Subscriber struct {
	log      logger.Logger
	client   *http.Client
	pushURL  func(gameIDs []string) string
	onUpdate func()

	cancel context.CancelFunc
}

func NewSubscriber(log logger.Logger, pushURL func(gameIDs []string) string, onUpdate func()) *Subscriber {
	return &Subscriber{
		log:      log,
		client:   &http.Client{}, // no timeout: the event stream is endless
		pushURL:  pushURL,
		onUpdate: onUpdate,
	}
}

// SetGames replaces the subscription. Must be called from the view
// loop; the previous connection is canceled before a new one opens so
// two subscriptions never coexist.
func (s *Subscriber) SetGames(gameIDs []string) {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if len(gameIDs) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx, s.pushURL(gameIDs))
}

func (s *Subscriber) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Subscriber) run(ctx context.Context, url string) {
	backoff := initialBackoff
	for {
		err := s.consume(ctx, url, &backoff)
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("Push channel lost, reconnecting",
			slog.String("error", err.Error()), slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (s *Subscriber) consume(ctx context.Context, url string, backoff *time.Duration) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push channel: status %d", resp.StatusCode)
	}

	// Minimal SSE line protocol: "event:"/"data:" fields terminated by
	// a blank line. Payloads are ignored, notifications trigger a
	// re-fetch.
	scanner := bufio.NewScanner(resp.Body)
	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case line == "":
			if event != "" {
				*backoff = initialBackoff
				if event == "game_updated" {
					s.onUpdate()
				}
			}
			event = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("push channel: stream closed")
}
