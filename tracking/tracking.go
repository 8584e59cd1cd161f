// Package tracking forwards conversion events server-side to the Facebook
// Conversions API and the TikTok Events API. Delivery is best-effort:
// failures are logged, never surfaced to the page that triggered the event.
package tracking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserData identifies the visitor. PII fields are hashed before leaving the
// server; IP, user agent, and the fbp/fbc click identifiers are sent as-is.
type UserData struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ExternalID string `json:"external_id"`
	FBP        string `json:"fbp"`
	FBC        string `json:"fbc"`
}

// CustomData carries commerce attributes of the event.
type CustomData struct {
	Value           float64  `json:"value"`
	Currency        string   `json:"currency"`
	ContentIDs      []string `json:"content_ids"`
	ContentName     string   `json:"content_name"`
	ContentType     string   `json:"content_type"`
	ContentCategory string   `json:"content_category"`
	NumItems        int      `json:"num_items"`
}

// Event is one conversion event as received from the site.
type Event struct {
	Name      string     `json:"event_name"`
	ID        string     `json:"event_id"`
	SourceURL string     `json:"source_url"`
	User      UserData   `json:"user"`
	Custom    CustomData `json:"custom"`

	// Filled in by the server from the request, never by the client.
	ClientIP string `json:"-"`
	ClientUA string `json:"-"`
}

// Dispatcher fans an event out to every configured destination.
type Dispatcher struct {
	facebook *FacebookClient
	tiktok   *TikTokClient
	log      zerolog.Logger
}

// NewDispatcher wires up the configured destinations. Unconfigured services
// (missing pixel ID or access token) are skipped.
func NewDispatcher(fb FacebookConfig, tt TikTokConfig, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		facebook: NewFacebookClient(fb, log),
		tiktok:   NewTikTokClient(tt, log),
		log:      log,
	}
}

// Track delivers ev to every configured destination. A missing event ID gets
// a UUID so both destinations can deduplicate against the browser pixel.
// Track never returns an error: tracking must not break the page.
func (d *Dispatcher) Track(ctx context.Context, ev Event) {
	if ev.Name == "" {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if d.facebook.Configured() {
		if err := d.facebook.Send(ctx, ev); err != nil {
			d.log.Error().Err(err).Str("event", ev.Name).Msg("facebook conversion delivery failed")
		}
	}
	if d.tiktok.Configured() {
		if err := d.tiktok.Send(ctx, ev); err != nil {
			d.log.Error().Err(err).Str("event", ev.Name).Msg("tiktok event delivery failed")
		}
	}
}

// hashField returns the SHA-256 hex of the lowercased, trimmed value, or ""
// for an empty input. This is the normalization both APIs require for PII.
func hashField(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

// normalizePhone strips everything but digits and prefixes the Georgian
// country code onto bare nine-digit local numbers.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) == 9 {
		return "995" + digits
	}
	return digits
}

// normalizeCurrency maps loose currency labels onto ISO codes, defaulting to GEL.
func normalizeCurrency(currency string) string {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "USD":
		return "USD"
	case "EUR":
		return "EUR"
	case "GBP":
		return "GBP"
	default:
		return "GEL"
	}
}
