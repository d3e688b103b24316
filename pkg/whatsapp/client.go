package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	pkgerrors "github.com/vigneshnair/bazaarly-backend/pkg/errors"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
)

const (
	channelPrefix = "whatsapp:"
	apiVersion    = "2010-04-01"
)

var (
	errAccountSIDRequired = errors.New("whatsapp account sid is required")
	errAuthTokenRequired  = errors.New("whatsapp auth token is required")
	errFromRequired       = errors.New("whatsapp from number is required")
)

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// Client posts messages through a Twilio-compatible messaging API.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	logg       *logger.Logger
}

// NewClient validates the messaging credentials and builds the HTTP client.
func NewClient(cfg config.WhatsAppConfig, logg *logger.Logger) (*Client, error) {
	accountSID := strings.TrimSpace(cfg.AccountSID)
	if accountSID == "" {
		return nil, errAccountSIDRequired
	}
	authToken := strings.TrimSpace(cfg.AuthToken)
	if authToken == "" {
		return nil, errAuthTokenRequired
	}
	from := strings.TrimSpace(cfg.FromNumber)
	if from == "" {
		return nil, errFromRequired
	}

	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{Timeout: timeout},
		logg:       logg,
	}, nil
}

// Send posts one message and returns the provider message id.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "recipient number is required")
	}
	if strings.TrimSpace(body) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}

	form := url.Values{}
	form.Set("From", channelAddress(c.from))
	form.Set("To", channelAddress(to))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/%s/Accounts/%s/Messages.json", c.baseURL, apiVersion, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "building message request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "posting message")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading message response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", c.mapProviderError(resp.StatusCode, payload)
	}

	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding message response")
	}
	return parsed.SID, nil
}

func (c *Client) mapProviderError(status int, payload []byte) error {
	var parsed struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(payload, &parsed)

	message := strings.TrimSpace(parsed.Message)
	if message == "" {
		message = fmt.Sprintf("messaging provider returned status %d", status)
	}

	err := pkgerrors.New(domainCodeForStatus(status), message)
	if parsed.Code != 0 {
		err = err.WithDetails(map[string]any{"provider_code": parsed.Code})
	}
	if c.logg != nil {
		c.logg.Warn(context.Background(), fmt.Sprintf("message send rejected: status=%d message=%s", status, message))
	}
	return err
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
}

func channelAddress(number string) string {
	if strings.HasPrefix(number, channelPrefix) {
		return number
	}
	return channelPrefix + number
}
