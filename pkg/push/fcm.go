package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	fcmScope          = "https://www.googleapis.com/auth/firebase.messaging"
	defaultFCMBaseURL = "https://fcm.googleapis.com"
)

// FCMConfig configures the Firebase Cloud Messaging HTTP v1 gateway
type FCMConfig struct {
	ProjectID string
	// BaseURL overrides the FCM endpoint host; empty uses the public one
	BaseURL string
	Timeout time.Duration
}

// FCMGateway sends through the FCM HTTP v1 API
type FCMGateway struct {
	endpoint   string
	httpClient *http.Client
}

// NewFCMGateway creates a gateway that authorises requests with ts
func NewFCMGateway(cfg FCMConfig, ts oauth2.TokenSource) *FCMGateway {
	base := cfg.BaseURL
	if base == "" {
		base = defaultFCMBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := oauth2.NewClient(context.Background(), ts)
	client.Timeout = timeout
	return &FCMGateway{
		endpoint:   fmt.Sprintf("%s/v1/projects/%s/messages:send", strings.TrimRight(base, "/"), cfg.ProjectID),
		httpClient: client,
	}
}

// NewFCMGatewayFromFile loads service account credentials from path.
// The project id falls back to the one in the credentials file.
func NewFCMGatewayFromFile(ctx context.Context, cfg FCMConfig, path string) (*FCMGateway, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("parse fcm credentials: %w", err)
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = creds.ProjectID
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("fcm project id is not configured")
	}
	return NewFCMGateway(cfg, creds.TokenSource), nil
}

// Name returns the provider name
func (g *FCMGateway) Name() string {
	return "fcm"
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Name string `json:"name"`
}

type fcmErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

// Send delivers one message
func (g *FCMGateway) Send(ctx context.Context, token string, msg Message) (string, error) {
	payload, err := json.Marshal(fcmRequest{Message: fcmMessage{
		Token:        token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	}})
	if err != nil {
		return "", fmt.Errorf("marshal fcm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read fcm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fcmError(resp.StatusCode, body)
	}

	var out fcmResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode fcm response: %w", err)
	}
	return out.Name, nil
}

func fcmError(status int, body []byte) error {
	var er fcmErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return fmt.Errorf("fcm returned status %d", status)
	}
	for _, d := range er.Error.Details {
		if d.ErrorCode == "UNREGISTERED" {
			return fmt.Errorf("fcm: %s: %w", er.Error.Message, ErrUnregistered)
		}
	}
	return fmt.Errorf("fcm returned status %d (%s): %s", status, er.Error.Status, er.Error.Message)
}
