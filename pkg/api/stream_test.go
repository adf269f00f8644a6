package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/killallgit/realty/pkg/api"
	"github.com/killallgit/realty/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Streaming endpoint", func() {
	var (
		server  *httptest.Server
		client  *api.Client
		handler http.HandlerFunc
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		client = api.NewClient(server.URL + "/api")
	})

	AfterEach(func() {
		server.Close()
	})

	It("should post a multipart submission and return the body", func() {
		var (
			gotText    string
			gotHistory []chat.HistoryEntry
			gotImage   []byte
			gotType    string
			gotAccept  string
			gotAuth    string
		)
		handler = func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/api/multiagent/stream/"))
			Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())

			gotText = r.FormValue("text")
			Expect(json.Unmarshal([]byte(r.FormValue("history")), &gotHistory)).To(Succeed())
			gotAccept = r.Header.Get("Accept")
			gotAuth = r.Header.Get("Authorization")

			file, header, err := r.FormFile("image")
			Expect(err).NotTo(HaveOccurred())
			gotType = header.Header.Get("Content-Type")
			gotImage, _ = io.ReadAll(file)

			w.Header().Set("Content-Type", "text/event-stream")
			w.Write([]byte("data: {\"delta\":\"hi\"}\n\nevent: end\ndata: {}\n\n"))
		}

		body, err := client.OpenStream(ctx, api.StreamRequest{
			Text:    "what is this stain?",
			History: []chat.HistoryEntry{{Role: "user", Content: "hello"}, {Role: "assistant", Content: "hi"}},
			Image:   chat.NewImage("stain.png", "image/png", []byte("png-bytes")),
		})
		Expect(err).NotTo(HaveOccurred())
		defer body.Close()

		data, err := io.ReadAll(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("event: end"))

		Expect(gotText).To(Equal("what is this stain?"))
		Expect(gotHistory).To(HaveLen(2))
		Expect(gotHistory[1].Role).To(Equal("assistant"))
		Expect(gotImage).To(Equal([]byte("png-bytes")))
		Expect(gotType).To(Equal("image/png"))
		Expect(gotAccept).To(Equal("text/event-stream"))
		Expect(gotAuth).To(BeEmpty())
	})

	It("should always send a history field on the stream", func() {
		var history string
		handler = func(w http.ResponseWriter, r *http.Request) {
			history = r.FormValue("history")
		}

		body, err := client.OpenStream(ctx, api.StreamRequest{Text: "hi"})
		Expect(err).NotTo(HaveOccurred())
		body.Close()
		Expect(history).To(Equal("[]"))
	})

	It("should attach the bearer token when one is available", func() {
		client = api.NewClient(server.URL+"/api/", api.WithTokenSource(api.StaticToken("abc123")))

		var auth string
		handler = func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
		}

		body, err := client.OpenStream(ctx, api.StreamRequest{Text: "hi"})
		Expect(err).NotTo(HaveOccurred())
		body.Close()
		Expect(auth).To(Equal("Bearer abc123"))
	})

	It("should return a StatusError for non-2xx responses", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "agent crashed", http.StatusInternalServerError)
		}

		body, err := client.OpenStream(ctx, api.StreamRequest{Text: "hi"})
		Expect(body).To(BeNil())

		var statusErr *api.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.Status).To(Equal(http.StatusInternalServerError))
		Expect(statusErr.Body).To(Equal("agent crashed"))
	})

	It("should fail when the backend is unreachable", func() {
		server.Close()

		_, err := client.OpenStream(ctx, api.StreamRequest{Text: "hi"})
		Expect(err).To(HaveOccurred())
	})

	It("should not apply the request timeout to streams", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("data: {\"delta\":\"a\"}\n\n"))
			w.(http.Flusher).Flush()
			time.Sleep(150 * time.Millisecond)
			w.Write([]byte("data: {\"delta\":\"b\"}\n\n"))
		}
		client = api.NewClient(server.URL+"/api/", api.WithTimeout(50*time.Millisecond))

		body, err := client.OpenStream(ctx, api.StreamRequest{Text: "hi"})
		Expect(err).NotTo(HaveOccurred())
		defer body.Close()

		data, err := io.ReadAll(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("\"b\""))
	})

	It("should stop reading when the context is cancelled", func() {
		release := make(chan struct{})
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("data: {\"delta\":\"a\"}\n\n"))
			w.(http.Flusher).Flush()
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}
		defer close(release)

		cctx, cancel := context.WithCancel(ctx)
		body, err := client.OpenStream(cctx, api.StreamRequest{Text: "hi"})
		Expect(err).NotTo(HaveOccurred())
		defer body.Close()

		cancel()
		_, err = io.ReadAll(body)
		Expect(err).To(HaveOccurred())
	})

	Describe("SendMessage", func() {
		It("should post to the non-streaming endpoint and decode the reply", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/multiagent/chat/"))
				Expect(r.FormValue("text")).To(Equal("hello"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"text":"**Query Clarification Agent:** Hello!"}`))
			}

			reply, err := client.SendMessage(ctx, api.StreamRequest{Text: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal("**Query Clarification Agent:** Hello!"))
		})

		It("should wrap status errors", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}

			_, err := client.SendMessage(ctx, api.StreamRequest{Text: "hello"})
			var statusErr *api.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Status).To(Equal(http.StatusBadGateway))
		})
	})
})
