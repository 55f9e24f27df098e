// Package chatclient - Go-клиент чата для ботов и интеграций.
// Работает поверх обычного HTTP-поллинга, без WebSocket.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Message - сообщение в том виде, в каком его отдает API
type Message struct {
	ID         string             `json:"id"`
	ThreadID   string             `json:"thread_id"`
	SenderID   string             `json:"sender_id"`
	SenderRole string             `json:"sender_role"`
	Kind       string             `json:"kind"`
	Content    string             `json:"content"`
	Delivery   string             `json:"delivery_status"`
	Interview  *InterviewProposal `json:"interview,omitempty"`
	Attachment *AttachmentMeta    `json:"attachment,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

type InterviewProposal struct {
	ProposedAt   time.Time `json:"proposed_datetime"`
	LocationMode string    `json:"location_mode"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
}

type AttachmentMeta struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size_bytes"`
	MimeType string `json:"mime_type"`
}

// ThreadSummary - элемент списка тредов
type ThreadSummary struct {
	ID                 string    `json:"id"`
	ApplicationID      string    `json:"application_id"`
	ApplicantID        string    `json:"applicant_id"`
	RecruiterID        string    `json:"recruiter_id"`
	LastMessagePreview *string   `json:"last_message_preview,omitempty"`
	LastActivityAt     time.Time `json:"last_activity_at"`
}

// ThreadDetail - тред вместе с историей сообщений
type ThreadDetail struct {
	ThreadSummary
	Messages []Message `json:"messages"`
}

// APIError - ошибка, которую вернул сервер
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Domain     string `json:"domain"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

type Option func(*Client)

// WithHTTPClient подменяет транспорт - в тестах сюда уходит httptest
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient создает клиента API. baseURL - без завершающего слэша,
// token - JWT пользователя.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListThreads возвращает треды пользователя
func (c *Client) ListThreads(ctx context.Context) ([]ThreadSummary, error) {
	var payload struct {
		Chats []ThreadSummary `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/chat/chats", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Chats, nil
}

// GetThread возвращает тред с полной историей сообщений
func (c *Client) GetThread(ctx context.Context, threadID string) (*ThreadDetail, error) {
	var detail ThreadDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/chat/chats/"+url.PathEscape(threadID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// SendMessage отправляет TEXT или INTERVIEW_REQUEST сообщение
func (c *Client) SendMessage(ctx context.Context, threadID, message, messageType string) (*Message, error) {
	body := map[string]string{
		"message":     message,
		"messageType": messageType,
	}
	var created Message
	path := "/api/v1/chat/chats/" + url.PathEscape(threadID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateMessage меняет статус сообщения: DELIVERED/READ - доставка,
// ACCEPTED/DECLINED - решение по приглашению на интервью
func (c *Client) UpdateMessage(ctx context.Context, threadID, messageID, status string) (*Message, error) {
	body := map[string]string{"status": status}
	var updated Message
	path := "/api/v1/chat/chats/" + url.PathEscape(threadID) + "/messages/" + url.PathEscape(messageID)
	if err := c.do(ctx, http.MethodPatch, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AttachmentURL строит прямую ссылку на скачивание вложения.
// Токен уходит query-параметром: ссылка работает из <img src> и
// браузерного скачивания, где заголовок Authorization недоступен.
func (c *Client) AttachmentURL(attachmentID, filename string) string {
	return c.baseURL + "/api/v1/chat/attachments/" +
		url.PathEscape(attachmentID) + "/" + url.PathEscape(filename) +
		"?token=" + url.QueryEscape(c.token)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Error) > 0 {
		_ = json.Unmarshal(envelope.Error, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
