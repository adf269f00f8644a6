package chat

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a turn
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrorTurnText replaces an agent reply that could not be obtained
const ErrorTurnText = "Error: Could not get response from the agent."

// Image is an attachment on a user turn
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Turn is one entry in the conversation transcript
type Turn struct {
	ID        string
	Sender    Sender
	Text      string
	Image     *Image
	Streaming bool
	AgentName string
	Timestamp time.Time
	Failed    bool
}

func newID() string {
	return uuid.NewString()
}

func NewUserTurn(text string, image *Image) Turn {
	return Turn{
		ID:        newID(),
		Sender:    SenderUser,
		Text:      strings.TrimSpace(text),
		Image:     image,
		Timestamp: time.Now(),
	}
}

// NewAgentPlaceholder is the empty streaming turn that deltas are applied to
func NewAgentPlaceholder() Turn {
	return Turn{
		ID:        newID(),
		Sender:    SenderAgent,
		Streaming: true,
		Timestamp: time.Now(),
	}
}

func NewAgentTurn(text, agentName string) Turn {
	return Turn{
		ID:        newID(),
		Sender:    SenderAgent,
		Text:      text,
		AgentName: agentName,
		Timestamp: time.Now(),
	}
}

func NewErrorTurn() Turn {
	return Turn{
		ID:        newID(),
		Sender:    SenderAgent,
		Text:      ErrorTurnText,
		Timestamp: time.Now(),
		Failed:    true,
	}
}

func (t Turn) IsUser() bool {
	return t.Sender == SenderUser
}

func (t Turn) IsAgent() bool {
	return t.Sender == SenderAgent
}

func (t Turn) IsEmpty() bool {
	return strings.TrimSpace(t.Text) == ""
}

func (t Turn) HasImage() bool {
	return t.Image != nil && len(t.Image.Data) > 0
}

// Role maps the sender onto the backend's history vocabulary
func (t Turn) Role() string {
	if t.IsUser() {
		return RoleUser
	}
	return RoleAssistant
}

// NewImage wraps raw bytes, sniffing the content type when none is given
func NewImage(name, contentType string, data []byte) *Image {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &Image{Name: name, ContentType: contentType, Data: data}
}

// LoadImage reads an image attachment from disk
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	img := NewImage(filepath.Base(path), "", data)
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, fmt.Errorf("%s is not an image (detected %s)", path, img.ContentType)
	}
	return img, nil
}
