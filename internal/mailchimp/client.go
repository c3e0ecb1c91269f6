package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appErrors "github.com/unclebandit/purchase-mailchimp-sync/internal/errors"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/metrics"
)

const (
	DefaultTimeout = 15 * time.Second
	basicAuthUser  = "anystring"
)

// Settings are the per-call credentials, read from the module config.
type Settings struct {
	APIKey          string
	AudienceID      string
	CreateIfMissing bool
}

// Member is one contact upsert plus the tags to apply.
type Member struct {
	Email     string
	FirstName string
	LastName  string
	Tags      []string
}

type memberBody struct {
	EmailAddress string      `json:"email_address"`
	StatusIfNew  string      `json:"status_if_new"`
	MergeFields  mergeFields `json:"merge_fields"`
}

type mergeFields struct {
	FNAME string `json:"FNAME"`
	LNAME string `json:"LNAME"`
}

type tagsBody struct {
	Tags []tag `json:"tags"`
}

type tag struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
	Log     *zap.Logger

	// BaseURL replaces https://{dc}.api.mailchimp.com/3.0 when set.
	BaseURL string
}

// NewClient builds a client. ratePerSec <= 0 disables client-side limiting.
func NewClient(timeout time.Duration, ratePerSec float64, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: limiter,
		Log:     log,
	}
}

// MemberID is Mailchimp's subscriber hash: hex md5 of the lowercased email.
func MemberID(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// DataCenter returns the suffix after the last "-" of the API key.
func DataCenter(apiKey string) (string, bool) {
	i := strings.LastIndex(apiKey, "-")
	if i < 0 || i == len(apiKey)-1 {
		return "", false
	}
	return apiKey[i+1:], true
}

// Subscribe upserts the member and, when tags are present, activates them.
// Response bodies are not inspected; only transport failures are errors.
func (c *Client) Subscribe(ctx context.Context, s Settings, m Member) error {
	apiKey := strings.TrimSpace(s.APIKey)
	audience := strings.TrimSpace(s.AudienceID)
	dc, ok := DataCenter(apiKey)
	if apiKey == "" || audience == "" || !ok {
		c.Log.Warn("mailchimp config invalid",
			zap.Bool("has_api_key", apiKey != ""),
			zap.Bool("has_audience", audience != ""),
		)
		return appErrors.ErrInvalidConfig
	}

	base := c.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc)
	}
	memberURL := fmt.Sprintf("%s/lists/%s/members/%s", strings.TrimRight(base, "/"), audience, MemberID(m.Email))

	status := "pending"
	if s.CreateIfMissing {
		status = "subscribed"
	}
	body := memberBody{
		EmailAddress: m.Email,
		StatusIfNew:  status,
		MergeFields:  mergeFields{FNAME: m.FirstName, LNAME: m.LastName},
	}
	if err := c.send(ctx, "member", http.MethodPut, memberURL, apiKey, body); err != nil {
		return err
	}

	if len(m.Tags) == 0 {
		return nil
	}
	tags := tagsBody{Tags: make([]tag, 0, len(m.Tags))}
	for _, name := range m.Tags {
		tags.Tags = append(tags.Tags, tag{Name: name, Status: "active"})
	}
	return c.send(ctx, "tags", http.MethodPost, memberURL+"/tags", apiKey, tags)
}

func (c *Client) send(ctx context.Context, endpoint, method, url, apiKey string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", appErrors.ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.SetBasicAuth(basicAuthUser, apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.MailchimpRequests.WithLabelValues(endpoint, "error").Inc()
		c.Log.Error("mailchimp request failed",
			zap.String("endpoint", endpoint),
			zap.String("method", method),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", appErrors.ErrTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	metrics.MailchimpRequests.WithLabelValues(endpoint, "ok").Inc()
	c.Log.Debug("mailchimp request done",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
