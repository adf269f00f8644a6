package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.getJSON(ctx, "chat/", nil, &sessions); err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	return sessions, nil
}

func (c *Client) CreateSession(ctx context.Context, name string) (*Session, error) {
	var created Session
	if err := c.postJSON(ctx, "chat/", Session{Name: name}, &created); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return &created, nil
}

func (c *Client) ListChatMessages(ctx context.Context, sessionID int) ([]ChatMessage, error) {
	var messages []ChatMessage
	if err := c.getJSON(ctx, fmt.Sprintf("chat/%d/messages/", sessionID), nil, &messages); err != nil {
		return nil, fmt.Errorf("failed to list messages for chat %d: %w", sessionID, err)
	}
	return messages, nil
}

func (c *Client) CreateChatMessage(ctx context.Context, sessionID int, msg ChatMessage) (*ChatMessage, error) {
	var created ChatMessage
	if err := c.postJSON(ctx, fmt.Sprintf("chat/%d/messages/", sessionID), msg, &created); err != nil {
		return nil, fmt.Errorf("failed to post message to chat %d: %w", sessionID, err)
	}
	return &created, nil
}

// ListChats returns agent/client messages
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	if err := c.getJSON(ctx, "chats/", nil, &chats); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// CreateChat sends a message from an agent to a client
func (c *Client) CreateChat(ctx context.Context, chat Chat) (*Chat, error) {
	var created Chat
	if err := c.postJSON(ctx, "chats/", chat, &created); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return &created, nil
}

// ChatHistory fetches the conversation with a client, translated into
// language when one is given
func (c *Client) ChatHistory(ctx context.Context, clientID int, language string) (*ChatHistory, error) {
	query := url.Values{}
	query.Set("client_id", strconv.Itoa(clientID))
	if language != "" {
		query.Set("language", language)
	}

	var history ChatHistory
	if err := c.getJSON(ctx, "agent-client-chat-history/", query, &history); err != nil {
		return nil, fmt.Errorf("failed to fetch chat history for client %d: %w", clientID, err)
	}
	return &history, nil
}

func (c *Client) ListClients(ctx context.Context) ([]Customer, error) {
	var clients []Customer
	if err := c.getJSON(ctx, "clients/", nil, &clients); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (c *Client) CreateClient(ctx context.Context, client Customer) (*Customer, error) {
	var created Customer
	if err := c.postJSON(ctx, "clients/", client, &created); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &created, nil
}

// ListProperties returns a random selection of listed properties
func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	var properties []Property
	if err := c.getJSON(ctx, "random-properties/", nil, &properties); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	var appointments []Appointment
	if err := c.getJSON(ctx, "appointments/", nil, &appointments); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (c *Client) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	var created Appointment
	if err := c.postJSON(ctx, "appointments/", appt, &created); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return &created, nil
}
