package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const facebookAPIBase = "https://graph.facebook.com/v19.0"

// FacebookConfig configures the Conversions API destination.
type FacebookConfig struct {
	PixelID       string `toml:"pixel_id"`
	AccessToken   string `toml:"access_token"`
	TestEventCode string `toml:"test_event_code"`

	// BaseURL overrides the Graph API endpoint; used by tests.
	BaseURL string `toml:"-"`
}

// FacebookClient sends events to the Facebook Conversions API.
type FacebookClient struct {
	cfg    FacebookConfig
	client *http.Client
	log    zerolog.Logger
}

// NewFacebookClient returns a client for cfg.
func NewFacebookClient(cfg FacebookConfig, log zerolog.Logger) *FacebookClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = facebookAPIBase
	}
	return &FacebookClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Configured reports whether both pixel ID and access token are present.
func (c *FacebookClient) Configured() bool {
	return c.cfg.PixelID != "" && c.cfg.AccessToken != ""
}

// Send posts one event to the pixel's /events edge.
func (c *FacebookClient) Send(ctx context.Context, ev Event) error {
	payload := map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"event_name":       ev.Name,
				"event_time":       time.Now().Unix(),
				"event_id":         ev.ID,
				"action_source":    "website",
				"event_source_url": ev.SourceURL,
				"user_data":        facebookUserData(ev),
				"custom_data":      facebookCustomData(ev.Custom),
			},
		},
	}
	if c.cfg.TestEventCode != "" {
		payload["test_event_code"] = c.cfg.TestEventCode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s", c.cfg.BaseURL, c.cfg.PixelID, c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("conversions api status %s: %s", resp.Status, detail)
	}
	c.log.Debug().Str("event", ev.Name).Str("event_id", ev.ID).Msg("facebook conversion sent")
	return nil
}

// facebookUserData builds the hashed user_data block. Field keys follow the
// Conversions API parameter names (em, ph, fn, ln).
func facebookUserData(ev Event) map[string]string {
	out := make(map[string]string)
	u := ev.User
	if h := hashField(u.Email); h != "" {
		out["em"] = h
	}
	if p := normalizePhone(u.Phone); p != "" {
		out["ph"] = hashField(p)
	}
	if h := hashField(u.FirstName); h != "" {
		out["fn"] = h
	}
	if h := hashField(u.LastName); h != "" {
		out["ln"] = h
	}
	if h := hashField(u.ExternalID); h != "" {
		out["external_id"] = h
	}
	if ev.ClientIP != "" {
		out["client_ip_address"] = ev.ClientIP
	}
	if ev.ClientUA != "" {
		out["client_user_agent"] = ev.ClientUA
	}
	// Browser/click IDs go through unhashed; hashing them destroys match quality.
	if u.FBP != "" {
		out["fbp"] = u.FBP
	}
	if u.FBC != "" {
		out["fbc"] = u.FBC
	}
	return out
}

func facebookCustomData(c CustomData) map[string]interface{} {
	out := map[string]interface{}{
		"currency": normalizeCurrency(c.Currency),
	}
	if c.Value != 0 {
		out["value"] = c.Value
	}
	if len(c.ContentIDs) > 0 {
		out["content_ids"] = c.ContentIDs
	}
	if c.ContentName != "" {
		out["content_name"] = c.ContentName
	}
	if c.ContentType != "" {
		out["content_type"] = c.ContentType
	}
	if c.ContentCategory != "" {
		out["content_category"] = c.ContentCategory
	}
	if c.NumItems > 0 {
		out["num_items"] = c.NumItems
	}
	return out
}
