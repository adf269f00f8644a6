package controllers_test

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/killallgit/realty/pkg/api"
	"github.com/killallgit/realty/pkg/controllers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

var (
	_ controllers.BackendClient = (*api.Client)(nil)
	_ controllers.Transport     = (*api.Client)(nil)
)

type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) ListClients(ctx context.Context) ([]api.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]api.Customer), args.Error(1)
}

func (m *MockBackendClient) CreateClient(ctx context.Context, client api.Customer) (*api.Customer, error) {
	args := m.Called(ctx, client)
	created, _ := args.Get(0).(*api.Customer)
	return created, args.Error(1)
}

func (m *MockBackendClient) ListProperties(ctx context.Context) ([]api.Property, error) {
	args := m.Called(ctx)
	return args.Get(0).([]api.Property), args.Error(1)
}

func (m *MockBackendClient) ListAppointments(ctx context.Context) ([]api.Appointment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]api.Appointment), args.Error(1)
}

func (m *MockBackendClient) CreateAppointment(ctx context.Context, appt api.Appointment) (*api.Appointment, error) {
	args := m.Called(ctx, appt)
	created, _ := args.Get(0).(*api.Appointment)
	return created, args.Error(1)
}

func (m *MockBackendClient) ListChats(ctx context.Context) ([]api.Chat, error) {
	args := m.Called(ctx)
	return args.Get(0).([]api.Chat), args.Error(1)
}

func (m *MockBackendClient) ListSessions(ctx context.Context) ([]api.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).([]api.Session), args.Error(1)
}

func (m *MockBackendClient) CreateSession(ctx context.Context, name string) (*api.Session, error) {
	args := m.Called(ctx, name)
	created, _ := args.Get(0).(*api.Session)
	return created, args.Error(1)
}

func (m *MockBackendClient) ListChatMessages(ctx context.Context, sessionID int) ([]api.ChatMessage, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]api.ChatMessage), args.Error(1)
}

func (m *MockBackendClient) ChatHistory(ctx context.Context, clientID int, language string) (*api.ChatHistory, error) {
	args := m.Called(ctx, clientID, language)
	history, _ := args.Get(0).(*api.ChatHistory)
	return history, args.Error(1)
}

var _ = Describe("RecordsController", func() {
	var (
		ctx        context.Context
		mockClient *MockBackendClient
		controller *controllers.RecordsController
		buffer     *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockClient = &MockBackendClient{}
		controller = controllers.NewRecordsController(mockClient)
		buffer = &bytes.Buffer{}
	})

	AfterEach(func() {
		mockClient.AssertExpectations(GinkgoT())
	})

	Describe("ListClients", func() {
		It("should print a table", func() {
			mockClient.On("ListClients", ctx).Return([]api.Customer{
				{ID: 1, Name: "Ada Byron", Email: "ada@example.com", PhoneNumber: "555-0100", Preferences: "2 bed\nnear a park"},
			}, nil)

			Expect(controller.ListClients(ctx, buffer)).To(Succeed())

			output := buffer.String()
			Expect(output).To(ContainSubstring("NAME"))
			Expect(output).To(ContainSubstring("Ada Byron"))
			Expect(output).To(ContainSubstring("2 bed near a park"))
		})

		It("should say when there are none", func() {
			mockClient.On("ListClients", ctx).Return([]api.Customer{}, nil)

			Expect(controller.ListClients(ctx, buffer)).To(Succeed())
			Expect(buffer.String()).To(Equal("No clients found\n"))
		})

		It("should wrap backend errors", func() {
			mockClient.On("ListClients", ctx).Return([]api.Customer(nil), &api.StatusError{Status: 401})

			err := controller.ListClients(ctx, buffer)
			var statusErr *api.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Status).To(Equal(401))
		})
	})

	Describe("ListProperties", func() {
		It("should print prices as sent", func() {
			mockClient.On("ListProperties", ctx).Return([]api.Property{
				{ID: 7, Address: "12 Elm Street", Price: "350000.00", Bedrooms: 3, Bathrooms: 2, SquareFootage: 1400},
			}, nil)

			Expect(controller.ListProperties(ctx, buffer)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("350000.00"))
			Expect(buffer.String()).To(ContainSubstring("12 Elm Street"))
		})
	})

	Describe("ListAppointments", func() {
		It("should fall back to ids when names are missing", func() {
			mockClient.On("ListAppointments", ctx).Return([]api.Appointment{
				{ID: 3, PropertyName: "12 Elm Street", Client: 4, Agent: 2, DateTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
			}, nil)

			Expect(controller.ListAppointments(ctx, buffer)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("#4"))
			Expect(buffer.String()).To(ContainSubstring("#2"))
		})
	})

	Describe("ListChats", func() {
		It("should truncate long messages", func() {
			long := "I would like to know whether the deposit is refundable if the inspection finds damp in the basement"
			mockClient.On("ListChats", ctx).Return([]api.Chat{
				{ID: 1, SenderName: "ada", RecipientName: "agent", Message: long},
			}, nil)

			Expect(controller.ListChats(ctx, buffer)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("…"))
			Expect(buffer.String()).NotTo(ContainSubstring("basement"))
		})
	})

	Describe("ListSessionMessages", func() {
		It("should list a session's messages", func() {
			mockClient.On("ListChatMessages", ctx, 5).Return([]api.ChatMessage{
				{Content: "hello", Sender: "user"},
			}, nil)

			Expect(controller.ListSessionMessages(ctx, buffer, 5)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("hello"))
		})
	})

	Describe("CreateSession", func() {
		It("should reject a blank name", func() {
			Expect(controller.CreateSession(ctx, buffer, "  ")).To(MatchError(ContainSubstring("session name is required")))
			mockClient.AssertNotCalled(GinkgoT(), "CreateSession", mock.Anything, mock.Anything)
		})

		It("should report the created session", func() {
			mockClient.On("CreateSession", ctx, "Viewing follow-up").Return(&api.Session{ID: 3, Name: "Viewing follow-up"}, nil)

			Expect(controller.CreateSession(ctx, buffer, " Viewing follow-up ")).To(Succeed())
			Expect(buffer.String()).To(Equal("Created session 3 (Viewing follow-up)\n"))
		})
	})

	Describe("ShowChatHistory", func() {
		It("should prefer translated messages and print key points", func() {
			mockClient.On("ChatHistory", ctx, 4, "en").Return(&api.ChatHistory{
				ChatHistory: []api.Chat{{SenderName: "ada", Message: "hola", TranslatedMessage: "hello"}},
				KeyPoints:   []string{"Budget 350k"},
			}, nil)

			Expect(controller.ShowChatHistory(ctx, buffer, 4, "en")).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("hello"))
			Expect(buffer.String()).NotTo(ContainSubstring("hola"))
			Expect(buffer.String()).To(ContainSubstring("Budget 350k"))
		})
	})

	Describe("CreateAppointment", func() {
		It("should validate before calling the backend", func() {
			_, err := controller.CreateAppointment(ctx, api.Appointment{PropertyName: "12 Elm Street"})
			Expect(err).To(MatchError(ContainSubstring("client id is required")))
			mockClient.AssertNotCalled(GinkgoT(), "CreateAppointment", mock.Anything, mock.Anything)
		})

		It("should return the created appointment", func() {
			appt := api.Appointment{PropertyName: "12 Elm Street", Client: 4, Agent: 2, DateTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
			mockClient.On("CreateAppointment", ctx, appt).Return(&api.Appointment{ID: 9}, nil)

			created, err := controller.CreateAppointment(ctx, appt)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal(9))
		})
	})

	Describe("CreateClient", func() {
		It("should require a name", func() {
			_, err := controller.CreateClient(ctx, api.Customer{Email: "x@example.com"})
			Expect(err).To(HaveOccurred())
		})

		It("should wrap backend errors", func() {
			client := api.Customer{Name: "Ada Byron"}
			mockClient.On("CreateClient", ctx, client).Return(nil, errors.New("boom"))

			_, err := controller.CreateClient(ctx, client)
			Expect(err).To(MatchError(ContainSubstring("failed to create client")))
		})
	})
})
