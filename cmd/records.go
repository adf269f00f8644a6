package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/killallgit/realty/pkg/api"
	"github.com/spf13/cobra"
)

const appointmentTimeLayout = "2006-01-02 15:04"

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRecordsController().ListClients(cmd.Context(), cmd.OutOrStdout())
	},
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		email, _ := flags.GetString("email")
		phone, _ := flags.GetString("phone")
		preferences, _ := flags.GetString("preferences")

		created, err := newRecordsController().CreateClient(cmd.Context(), api.Customer{
			Name:        name,
			Email:       email,
			PhoneNumber: phone,
			Preferences: preferences,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created client %d (%s)\n", created.ID, created.Name)
		return nil
	},
}

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List a random selection of properties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRecordsController().ListProperties(cmd.Context(), cmd.OutOrStdout())
	},
}

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "List appointments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRecordsController().ListAppointments(cmd.Context(), cmd.OutOrStdout())
	},
}

var appointmentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a viewing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		property, _ := flags.GetString("property")
		client, _ := flags.GetInt("client")
		agent, _ := flags.GetInt("agent")
		at, _ := flags.GetString("at")
		notes, _ := flags.GetString("notes")

		when, err := parseAppointmentTime(at)
		if err != nil {
			return err
		}

		created, err := newRecordsController().CreateAppointment(cmd.Context(), api.Appointment{
			PropertyName: property,
			Client:       client,
			Agent:        agent,
			DateTime:     when,
			Notes:        notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Booked appointment %d for %s\n", created.ID, when.Local().Format(appointmentTimeLayout))
		return nil
	},
}

// parseAppointmentTime accepts RFC 3339 or a local "2006-01-02 15:04"
func parseAppointmentTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(appointmentTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: use %q or RFC 3339", s, appointmentTimeLayout)
	}
	return t, nil
}

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List agent/client messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRecordsController().ListChats(cmd.Context(), cmd.OutOrStdout())
	},
}

var chatsHistoryCmd = &cobra.Command{
	Use:   "history <client-id>",
	Short: "Show a client's conversation and its key points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid client id %q", args[0])
		}
		language, _ := cmd.Flags().GetString("language")
		return newRecordsController().ShowChatHistory(cmd.Context(), cmd.OutOrStdout(), clientID, language)
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List chat sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRecordsController().ListSessions(cmd.Context(), cmd.OutOrStdout())
	},
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Start a new chat session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRecordsController().CreateSession(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var sessionsMessagesCmd = &cobra.Command{
	Use:   "messages <session-id>",
	Short: "List the messages of a chat session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}
		return newRecordsController().ListSessionMessages(cmd.Context(), cmd.OutOrStdout(), sessionID)
	},
}

func init() {
	clientsCreateCmd.Flags().String("name", "", "client name")
	clientsCreateCmd.Flags().String("email", "", "email address")
	clientsCreateCmd.Flags().String("phone", "", "phone number")
	clientsCreateCmd.Flags().String("preferences", "", "what the client is looking for")
	clientsCmd.AddCommand(clientsCreateCmd)

	appointmentsCreateCmd.Flags().String("property", "", "property name or address")
	appointmentsCreateCmd.Flags().Int("client", 0, "client id")
	appointmentsCreateCmd.Flags().Int("agent", 0, "agent user id")
	appointmentsCreateCmd.Flags().String("at", "", "appointment time, \"2006-01-02 15:04\" or RFC 3339")
	appointmentsCreateCmd.Flags().String("notes", "", "notes for the viewing")
	appointmentsCmd.AddCommand(appointmentsCreateCmd)

	chatsHistoryCmd.Flags().String("language", "en", "language to translate messages into")
	chatsCmd.AddCommand(chatsHistoryCmd)

	sessionsCmd.AddCommand(sessionsCreateCmd, sessionsMessagesCmd)

	rootCmd.AddCommand(clientsCmd, propertiesCmd, appointmentsCmd, chatsCmd, sessionsCmd)
}
