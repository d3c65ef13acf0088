package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultTwilioBaseURL = "https://api.twilio.com"

// TwilioClient talks to the Twilio Messages REST resource.
type TwilioClient struct {
	baseURL    string
	accountSID string
	authToken  string
	client     *http.Client
}

func NewTwilioClient(baseURL, accountSID, authToken string, timeout time.Duration) *TwilioClient {
	if baseURL == "" {
		baseURL = DefaultTwilioBaseURL
	}
	return &TwilioClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type errorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// Send asks Twilio to deliver body from the sender number to the recipient.
// It returns the message SID on acceptance.
func (c *TwilioClient) Send(ctx context.Context, from, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		var er errorResponse
		if err := json.Unmarshal(raw, &er); err == nil && er.Message != "" {
			return "", fmt.Errorf("HTTP %d error: unable to create record: %s (code %d)", resp.StatusCode, er.Message, er.Code)
		}
		return "", fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(raw))
	}

	var sr sendResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return "", fmt.Errorf("failed to decode json: %w body=%q", err, string(raw))
	}
	if sr.SID == "" {
		return "", fmt.Errorf("missing sid in response body=%q", string(raw))
	}

	return sr.SID, nil
}
