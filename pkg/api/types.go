package api

import (
	"encoding/json"
	"time"
)

// User is the account nested inside a client record
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Customer is a buyer or tenant the agent works with
type Customer struct {
	ID          int    `json:"id,omitempty"`
	User        *User  `json:"user,omitempty"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Preferences string `json:"preferences,omitempty"`
}

type Property struct {
	ID            int         `json:"id"`
	Address       string      `json:"address"`
	Description   string      `json:"description"`
	Price         json.Number `json:"price"`
	Bedrooms      int         `json:"bedrooms"`
	Bathrooms     int         `json:"bathrooms"`
	SquareFootage int         `json:"square_footage"`
	Amenities     string      `json:"amenities"`
}

type Appointment struct {
	ID            int       `json:"id,omitempty"`
	PropertyName  string    `json:"property_name"`
	Client        int       `json:"client"`
	Agent         int       `json:"agent"`
	DateTime      time.Time `json:"date_time"`
	Notes         string    `json:"notes"`
	ClientName    string    `json:"client_name,omitempty"`
	AgentUsername string    `json:"agent_username,omitempty"`
	DateTimeLocal string    `json:"date_time_local,omitempty"`
}

// Chat is a single agent/client message
type Chat struct {
	ID                int        `json:"id,omitempty"`
	Sender            int        `json:"sender"`
	Recipient         int        `json:"recipient"`
	Message           string     `json:"message"`
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	SenderName        string     `json:"sender_name,omitempty"`
	RecipientName     string     `json:"recipient_name,omitempty"`
	TranslatedMessage string     `json:"translated_message,omitempty"`
}

// ChatMessage belongs to a chat session
type ChatMessage struct {
	ID        int        `json:"id,omitempty"`
	Content   string     `json:"content"`
	Sender    string     `json:"sender"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Session is a named chat session
type Session struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// ChatHistory is the combined agent/client history with extracted details
type ChatHistory struct {
	ChatHistory  []Chat           `json:"chat_history"`
	BuyerInfo    map[string]any   `json:"buyer_info"`
	KeyPoints    []string         `json:"key_points"`
	Offers       []map[string]any `json:"offers,omitempty"`
	Appointments []map[string]any `json:"appointments,omitempty"`
}
