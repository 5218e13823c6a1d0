package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"streamboard/internal/app/infrastructure/config"
	"streamboard/pkg/logger"
)

const (
	defaultHelixBase = "https://api.twitch.tv/helix"
	defaultTokenURL  = "https://id.twitch.tv/oauth2/token"
	maxRetries       = 5
	baseBackoff      = time.Second
	maxBackoff       = 30 * time.Second
	lowWatermark     = 5
)

type Twitch struct {
	log    logger.Logger
	cfg    *config.Config
	client *http.Client

	helixBase string
	tokenURL  string

	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time

	limiter *rate.Limiter

	rlMu        sync.Mutex
	rlRemaining int
	rlHasInfo   bool
	rlResetAt   time.Time
}

func NewTwitch(log logger.Logger, manager *config.Manager, client *http.Client) *Twitch {
	return &Twitch{
		log:       log,
		cfg:       manager.Get(),
		client:    client,
		helixBase: defaultHelixBase,
		tokenURL:  defaultTokenURL,
		limiter:   rate.NewLimiter(rate.Limit(10), 20),
	}
}

type twitchAPIError struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// statusError carries the HTTP status of a failed helix call so
// callers can treat access-denied endpoints specially.
type statusError struct {
	status  int
	url     string
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("helix %s: status %d: %s", e.url, e.status, e.message)
	}
	return fmt.Sprintf("helix %s: status %d", e.url, e.status)
}

func (t *Twitch) getToken() (string, error) {
	t.tokenMu.Lock()
	defer t.tokenMu.Unlock()

	if t.token != "" && time.Until(t.tokenExp) > 30*time.Second {
		return t.token, nil
	}

	params := url.Values{}
	params.Set("client_id", t.cfg.Twitch.ClientID)
	params.Set("client_secret", t.cfg.Twitch.ClientSecret)
	params.Set("grant_type", "client_credentials")

	resp, err := t.client.Post(t.tokenURL+"?"+params.Encode(), "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request: status %d: %s", resp.StatusCode, string(raw))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.ExpiresIn == 0 {
		body.ExpiresIn = 3600
	}

	t.token = body.AccessToken
	t.tokenExp = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	t.log.Debug("Refreshed Twitch app token", slog.Time("expires_at", t.tokenExp))
	return t.token, nil
}

func (t *Twitch) invalidateToken() {
	t.tokenMu.Lock()
	t.token = ""
	t.tokenMu.Unlock()
}

func (t *Twitch) updateRateLimit(resp *http.Response) {
	t.rlMu.Lock()
	defer t.rlMu.Unlock()

	if v := resp.Header.Get("Ratelimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			t.rlRemaining = n
			t.rlHasInfo = true
		}
	}
	if v := resp.Header.Get("Ratelimit-Reset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			t.rlResetAt = time.Unix(n, 0)
		}
	}
}

// waitIfRateLimited defers while the helix bucket runs low, until the
// advertised reset time.
func (t *Twitch) waitIfRateLimited() {
	for {
		t.rlMu.Lock()
		hasInfo, remaining, resetAt := t.rlHasInfo, t.rlRemaining, t.rlResetAt
		t.rlMu.Unlock()

		if !hasInfo || remaining > lowWatermark {
			return
		}
		wait := time.Until(resetAt)
		if wait <= 0 {
			return
		}
		if wait > time.Minute {
			wait = time.Minute
		}
		t.log.Info("Twitch rate limit low, deferring",
			slog.Int("remaining", remaining), slog.Duration("wait", wait))
		time.Sleep(wait)
	}
}

func (t *Twitch) doHelixRequest(method, rawURL string, target any) error {
	backoff := baseBackoff
	for attempt := 1; attempt <= maxRetries; attempt++ {
		t.waitIfRateLimited()
		if err := t.limiter.Wait(context.Background()); err != nil {
			return err
		}

		token, err := t.getToken()
		if err != nil {
			return err
		}

		req, err := http.NewRequest(method, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Client-Id", t.cfg.Twitch.ClientID)

		t.log.Trace("Sending Twitch request", slog.Int("attempt", attempt), slog.String("url", rawURL))
		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("helix request: %w", err)
		}

		raw, err := io.ReadAll(resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			t.log.Error("Failed to close response body", cerr)
		}
		if err != nil {
			return fmt.Errorf("read helix response: %w", err)
		}
		t.updateRateLimit(resp)

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
			if target == nil {
				return nil
			}
			if err := json.Unmarshal(raw, target); err != nil {
				return fmt.Errorf("decode helix response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized && attempt == 1:
			// Token may have expired early; refresh and retry once.
			t.invalidateToken()
			continue

		case resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries:
			wait := backoff
			if v := resp.Header.Get("Ratelimit-Reset"); v != "" {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					if until := time.Until(time.Unix(n, 0)); until > 0 {
						wait = until
					}
				}
			}
			backoff = min(backoff*2, maxBackoff)
			t.log.Warn("Twitch rate limited, retrying",
				slog.Duration("wait", wait), slog.Int("attempt", attempt))
			time.Sleep(wait)
			continue

		default:
			var apiErr twitchAPIError
			_ = json.Unmarshal(raw, &apiErr)
			return &statusError{status: resp.StatusCode, url: rawURL, message: apiErr.Message}
		}
	}
	return fmt.Errorf("helix %s: retries exhausted", rawURL)
}
