package whapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"broker-notify/internal/config"
)

const DefaultBaseURL = "https://gate.whapi.cloud"

type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	baseURL := cfg.WhapiBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Token:      cfg.WhapiToken,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
	}
}

// --- Message Structures ---

type TextMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type ImageMessage struct {
	To      string `json:"to"`
	Media   string `json:"media"`
	Caption string `json:"caption,omitempty"`
}

type DocumentMessage struct {
	To       string `json:"to"`
	Media    string `json:"media"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type InteractiveMessage struct {
	To     string     `json:"to"`
	Type   string     `json:"type"`
	Body   BodyObj    `json:"body"`
	Footer *FooterObj `json:"footer,omitempty"`
	Action ActionObj  `json:"action"`
}

type BodyObj struct {
	Text string `json:"text"`
}

type FooterObj struct {
	Text string `json:"text"`
}

type ActionObj struct {
	Buttons []ButtonObj `json:"buttons"`
}

type ButtonObj struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	ID    string `json:"id"`
	URL   string `json:"url,omitempty"`
}

// SendResponse is the gateway's reply shape for every /messages endpoint.
type SendResponse struct {
	Sent    bool `json:"sent"`
	Message *struct {
		ID string `json:"id"`
	} `json:"message,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// MessageID returns the gateway id of the sent message, if any.
func (r *SendResponse) MessageID() string {
	if r == nil || r.Message == nil {
		return ""
	}
	return r.Message.ID
}

// ErrorMessage returns the gateway error text, if any.
func (r *SendResponse) ErrorMessage() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return r.Error.Message
}

// --- Helper Functions ---

func (c *Client) sendRequest(path string, body interface{}) (*SendResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var sendResp SendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("gateway error: %s - %s", resp.Status, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return &sendResp, fmt.Errorf("gateway error: %s - %s", resp.Status, sendResp.ErrorMessage())
	}

	return &sendResp, nil
}

// --- Messaging Methods ---

func (c *Client) SendTextMessage(to, body string) (*SendResponse, error) {
	return c.sendRequest("/messages/text", TextMessage{
		To:   to,
		Body: body,
	})
}

func (c *Client) SendImageMessage(to, mediaURL, caption string) (*SendResponse, error) {
	return c.sendRequest("/messages/image", ImageMessage{
		To:      to,
		Media:   mediaURL,
		Caption: caption,
	})
}

func (c *Client) SendDocumentMessage(to, mediaURL, filename, caption string) (*SendResponse, error) {
	return c.sendRequest("/messages/document", DocumentMessage{
		To:       to,
		Media:    mediaURL,
		Filename: filename,
		Caption:  caption,
	})
}

func (c *Client) SendInteractiveMessage(to, bodyText, footerText, buttonTitle, buttonID, buttonURL string) (*SendResponse, error) {
	msg := InteractiveMessage{
		To:   to,
		Type: "button",
		Body: BodyObj{Text: bodyText},
		Action: ActionObj{
			Buttons: []ButtonObj{
				{
					Type:  "url",
					Title: buttonTitle,
					ID:    buttonID,
					URL:   buttonURL,
				},
			},
		},
	}
	if footerText != "" {
		msg.Footer = &FooterObj{Text: footerText}
	}
	return c.sendRequest("/messages/interactive", msg)
}
