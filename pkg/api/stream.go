package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/logger"
)

// StreamRequest is one user submission
type StreamRequest struct {
	Text    string
	History []chat.HistoryEntry
	Image   *chat.Image
}

// Reply is the body of a non-streaming answer
type Reply struct {
	Text  string `json:"text"`
	Agent string `json:"agent,omitempty"`
}

// OpenStream posts the submission to the streaming endpoint and returns the
// response body for the caller to read and close. Non-2xx responses become a
// *StatusError.
func (c *Client) OpenStream(ctx context.Context, sr StreamRequest) (io.ReadCloser, error) {
	req, err := c.newMultipartRequest(ctx, StreamPath, sr, true)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	if err := c.authorize(req); err != nil {
		return nil, err
	}

	logger.Debug("Opening stream %s (history=%d, image=%t)", req.URL.Redacted(), len(sr.History), sr.Image != nil)
	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// SendMessage posts the submission to the non-streaming endpoint
func (c *Client) SendMessage(ctx context.Context, sr StreamRequest) (*Reply, error) {
	req, err := c.newMultipartRequest(ctx, ChatPath, sr, len(sr.History) > 0)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var reply Reply
	if err := c.do(req, &reply); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &reply, nil
}

func (c *Client) newMultipartRequest(ctx context.Context, path string, sr StreamRequest, withHistory bool) (*http.Request, error) {
	body, contentType, err := encodeSubmission(sr, withHistory)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

func encodeSubmission(sr StreamRequest, withHistory bool) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("text", sr.Text); err != nil {
		return nil, "", fmt.Errorf("failed to write text field: %w", err)
	}

	if withHistory {
		history := sr.History
		if history == nil {
			history = []chat.HistoryEntry{}
		}
		encoded, err := json.Marshal(history)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode history: %w", err)
		}
		if err := w.WriteField("history", string(encoded)); err != nil {
			return nil, "", fmt.Errorf("failed to write history field: %w", err)
		}
	}

	if sr.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, imageName(sr.Image)))
		h.Set("Content-Type", sr.Image.ContentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(sr.Image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func imageName(img *chat.Image) string {
	if img.Name != "" {
		return img.Name
	}
	return "image"
}
