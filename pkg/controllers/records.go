package controllers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/killallgit/realty/pkg/api"
	"github.com/killallgit/realty/pkg/logger"
)

// BackendClient is the REST surface of the backend used by the CLI
type BackendClient interface {
	ListClients(ctx context.Context) ([]api.Customer, error)
	CreateClient(ctx context.Context, client api.Customer) (*api.Customer, error)
	ListProperties(ctx context.Context) ([]api.Property, error)
	ListAppointments(ctx context.Context) ([]api.Appointment, error)
	CreateAppointment(ctx context.Context, appt api.Appointment) (*api.Appointment, error)
	ListChats(ctx context.Context) ([]api.Chat, error)
	ListSessions(ctx context.Context) ([]api.Session, error)
	CreateSession(ctx context.Context, name string) (*api.Session, error)
	ListChatMessages(ctx context.Context, sessionID int) ([]api.ChatMessage, error)
	ChatHistory(ctx context.Context, clientID int, language string) (*api.ChatHistory, error)
}

// RecordsController lists and creates the backend's real estate records
type RecordsController struct {
	client BackendClient
	log    *logger.ComponentLogger
}

func NewRecordsController(client BackendClient) *RecordsController {
	return &RecordsController{
		client: client,
		log:    logger.WithComponent("records_controller"),
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// truncate keeps table cells on one line
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (rc *RecordsController) ListClients(ctx context.Context, writer io.Writer) error {
	clients, err := rc.client.ListClients(ctx)
	if err != nil {
		rc.log.Error("list clients failed", "error", err)
		return fmt.Errorf("failed to list clients: %w", err)
	}
	rc.log.Debug("listed clients", "count", len(clients))

	if len(clients) == 0 {
		fmt.Fprintln(writer, "No clients found")
		return nil
	}

	w := newTable(writer)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tPREFERENCES")
	for _, c := range clients {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.PhoneNumber, truncate(c.Preferences, 40))
	}
	return w.Flush()
}

func (rc *RecordsController) ListProperties(ctx context.Context, writer io.Writer) error {
	properties, err := rc.client.ListProperties(ctx)
	if err != nil {
		rc.log.Error("list properties failed", "error", err)
		return fmt.Errorf("failed to list properties: %w", err)
	}
	rc.log.Debug("listed properties", "count", len(properties))

	if len(properties) == 0 {
		fmt.Fprintln(writer, "No properties found")
		return nil
	}

	w := newTable(writer)
	fmt.Fprintln(w, "ID\tADDRESS\tPRICE\tBEDS\tBATHS\tSQFT")
	for _, p := range properties {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n", p.ID, truncate(p.Address, 40), p.Price, p.Bedrooms, p.Bathrooms, p.SquareFootage)
	}
	return w.Flush()
}

func (rc *RecordsController) ListAppointments(ctx context.Context, writer io.Writer) error {
	appointments, err := rc.client.ListAppointments(ctx)
	if err != nil {
		rc.log.Error("list appointments failed", "error", err)
		return fmt.Errorf("failed to list appointments: %w", err)
	}
	rc.log.Debug("listed appointments", "count", len(appointments))

	if len(appointments) == 0 {
		fmt.Fprintln(writer, "No appointments found")
		return nil
	}

	w := newTable(writer)
	fmt.Fprintln(w, "ID\tWHEN\tPROPERTY\tCLIENT\tAGENT\tNOTES")
	for _, a := range appointments {
		client := a.ClientName
		if client == "" {
			client = fmt.Sprintf("#%d", a.Client)
		}
		agent := a.AgentUsername
		if agent == "" {
			agent = fmt.Sprintf("#%d", a.Agent)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", a.ID, formatTime(&a.DateTime), truncate(a.PropertyName, 30), client, agent, truncate(a.Notes, 30))
	}
	return w.Flush()
}

func (rc *RecordsController) ListChats(ctx context.Context, writer io.Writer) error {
	chats, err := rc.client.ListChats(ctx)
	if err != nil {
		rc.log.Error("list chats failed", "error", err)
		return fmt.Errorf("failed to list chats: %w", err)
	}
	rc.log.Debug("listed chats", "count", len(chats))

	if len(chats) == 0 {
		fmt.Fprintln(writer, "No chats found")
		return nil
	}

	w := newTable(writer)
	fmt.Fprintln(w, "ID\tWHEN\tFROM\tTO\tMESSAGE")
	for _, c := range chats {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, formatTime(c.Timestamp), c.SenderName, c.RecipientName, truncate(c.Message, 50))
	}
	return w.Flush()
}

func (rc *RecordsController) ListSessions(ctx context.Context, writer io.Writer) error {
	sessions, err := rc.client.ListSessions(ctx)
	if err != nil {
		rc.log.Error("list sessions failed", "error", err)
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(writer, "No sessions found")
		return nil
	}

	w := newTable(writer)
	fmt.Fprintln(w, "ID\tNAME")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\n", s.ID, s.Name)
	}
	return w.Flush()
}

func (rc *RecordsController) CreateSession(ctx context.Context, writer io.Writer, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("session name is required")
	}

	created, err := rc.client.CreateSession(ctx, name)
	if err != nil {
		rc.log.Error("create session failed", "name", name, "error", err)
		return fmt.Errorf("failed to create session: %w", err)
	}

	fmt.Fprintf(writer, "Created session %d (%s)\n", created.ID, created.Name)
	return nil
}

func (rc *RecordsController) ListSessionMessages(ctx context.Context, writer io.Writer, sessionID int) error {
	messages, err := rc.client.ListChatMessages(ctx, sessionID)
	if err != nil {
		rc.log.Error("list session messages failed", "session", sessionID, "error", err)
		return fmt.Errorf("failed to list messages for session %d: %w", sessionID, err)
	}

	if len(messages) == 0 {
		fmt.Fprintln(writer, "No messages found")
		return nil
	}

	w := newTable(writer)
	fmt.Fprintln(w, "WHEN\tSENDER\tCONTENT")
	for _, m := range messages {
		fmt.Fprintf(w, "%s\t%s\t%s\n", formatTime(m.Timestamp), m.Sender, truncate(m.Content, 60))
	}
	return w.Flush()
}

// ShowChatHistory prints a client's conversation followed by what the
// backend extracted from it
func (rc *RecordsController) ShowChatHistory(ctx context.Context, writer io.Writer, clientID int, language string) error {
	history, err := rc.client.ChatHistory(ctx, clientID, language)
	if err != nil {
		rc.log.Error("chat history failed", "client", clientID, "error", err)
		return fmt.Errorf("failed to load chat history for client %d: %w", clientID, err)
	}

	if len(history.ChatHistory) == 0 {
		fmt.Fprintln(writer, "No messages found")
	} else {
		w := newTable(writer)
		for _, c := range history.ChatHistory {
			message := c.Message
			if c.TranslatedMessage != "" {
				message = c.TranslatedMessage
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", formatTime(c.Timestamp), c.SenderName, message)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(history.KeyPoints) > 0 {
		fmt.Fprintln(writer, "\nKey points:")
		for _, point := range history.KeyPoints {
			fmt.Fprintf(writer, "  - %s\n", point)
		}
	}
	return nil
}

func (rc *RecordsController) CreateClient(ctx context.Context, client api.Customer) (*api.Customer, error) {
	if strings.TrimSpace(client.Name) == "" {
		return nil, fmt.Errorf("client name is required")
	}

	created, err := rc.client.CreateClient(ctx, client)
	if err != nil {
		rc.log.Error("create client failed", "error", err)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	rc.log.Info("created client", "id", created.ID)
	return created, nil
}

func (rc *RecordsController) CreateAppointment(ctx context.Context, appt api.Appointment) (*api.Appointment, error) {
	switch {
	case strings.TrimSpace(appt.PropertyName) == "":
		return nil, fmt.Errorf("property name is required")
	case appt.Client <= 0:
		return nil, fmt.Errorf("client id is required")
	case appt.DateTime.IsZero():
		return nil, fmt.Errorf("appointment time is required")
	}

	created, err := rc.client.CreateAppointment(ctx, appt)
	if err != nil {
		rc.log.Error("create appointment failed", "error", err)
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	rc.log.Info("created appointment", "id", created.ID)
	return created, nil
}
