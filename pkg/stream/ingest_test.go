package stream_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkReader hands out one chunk per Read, then err (io.EOF by default)
type chunkReader struct {
	chunks []string
	err    error
	reads  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	r.reads++
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// countingSink wraps the store and counts streaming-flag updates
type countingSink struct {
	*chat.Store
	mu             sync.Mutex
	streamingFlips int
}

func (s *countingSink) UpdateByID(id string, u chat.Update) bool {
	if u.Streaming != nil {
		s.mu.Lock()
		s.streamingFlips++
		s.mu.Unlock()
	}
	return s.Store.UpdateByID(id, u)
}

var _ = Describe("Ingestor", func() {
	var (
		ctx         context.Context
		store       *chat.Store
		sink        *countingSink
		placeholder chat.Turn
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = chat.NewStore()
		sink = &countingSink{Store: store}
		placeholder = chat.NewAgentPlaceholder()
		store.Append(placeholder)
	})

	turn := func() chat.Turn {
		t, ok := store.Get(placeholder.ID)
		Expect(ok).To(BeTrue())
		return t
	}

	It("should apply deltas and clear streaming once at EOF", func() {
		body := &chunkReader{chunks: []string{
			"data: {\"agent\":\"Tenancy Agreement Expert\",\"delta\":\"Your deposit \"}\n\n",
			"data: {\"delta\":\"must be protected.\"}",
		}}

		res, err := stream.NewIngestor().Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ended).To(BeFalse())
		Expect(res.Text).To(Equal("Your deposit must be protected."))

		t := turn()
		Expect(t.Text).To(Equal("Your deposit must be protected."))
		Expect(t.AgentName).To(Equal("Tenancy Agreement Expert"))
		Expect(t.Streaming).To(BeFalse())
		Expect(sink.streamingFlips).To(Equal(1))
	})

	It("should stop at an end frame and clear streaming once", func() {
		body := &chunkReader{chunks: []string{
			"data: {\"delta\":\"A\"}\n\nevent: end\ndata: {}\n\ndata: {\"delta\":\"B\"}\n\n",
			"data: {\"delta\":\"C\"}\n\n",
		}}

		res, err := stream.NewIngestor().Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ended).To(BeTrue())
		Expect(turn().Text).To(Equal("A"))
		Expect(turn().Streaming).To(BeFalse())
		Expect(sink.streamingFlips).To(Equal(1))
		Expect(body.reads).To(Equal(1), "no reads after the end frame")
	})

	It("should survive a malformed frame between deltas", func() {
		body := strings.NewReader("data: {\"delta\":\"A\"}\n\ndata: {not valid json\n\ndata: {\"delta\":\"B\"}\n\n")

		res, err := stream.NewIngestor().Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Skipped).To(Equal(1))
		Expect(turn().Text).To(Equal("AB"))
	})

	It("should re-render on every delta", func() {
		var texts []string
		store.Subscribe(func(t chat.Turn) {
			texts = append(texts, t.Text)
		})

		body := strings.NewReader("data: {\"delta\":\"A\"}\n\ndata: {\"delta\":\"B\"}\n\n")
		_, err := stream.NewIngestor(stream.WithReadBuffer(3)).Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).NotTo(HaveOccurred())

		Expect(texts).To(Equal([]string{"A", "AB", "AB"}))
	})

	It("should produce the same turn for any read buffer size", func() {
		for size := 1; size <= len(conversation)+1; size++ {
			s := chat.NewStore()
			p := chat.NewAgentPlaceholder()
			s.Append(p)

			_, err := stream.NewIngestor(stream.WithReadBuffer(size)).Ingest(ctx, strings.NewReader(conversation), s, p.ID)
			Expect(err).NotTo(HaveOccurred())

			t, _ := s.Get(p.ID)
			Expect(t.Text).To(Equal("Damp is usually caused by condensation. Ventilate the room été and check gutters – café ☕"), "buffer %d", size)
			Expect(t.AgentName).To(Equal("Property Issue Detector"), "buffer %d", size)
		}
	})

	It("should report the active agent once", func() {
		var agents []string
		in := stream.NewIngestor(stream.WithAgentCallback(func(name string) {
			agents = append(agents, name)
		}))

		body := strings.NewReader("data: {\"agent\":\"X\"}\n\ndata: {\"agent\":\"Y\"}\n\n")
		_, err := in.Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(agents).To(Equal([]string{"X"}))
		Expect(turn().AgentName).To(Equal("X"))
	})

	It("should mark the turn failed on a backend error frame", func() {
		body := strings.NewReader("data: {\"delta\":\"Checking\"}\n\ndata: {\"error\":\"model overloaded\"}\n\nevent: end\ndata: {}\n\n")

		res, err := stream.NewIngestor().Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Failed).To(BeTrue())

		t := turn()
		Expect(t.Failed).To(BeTrue())
		Expect(t.Streaming).To(BeFalse())
		Expect(t.Text).To(Equal("Checking" + stream.FailureNotice("model overloaded")))
	})

	It("should return a ReadError and leave the turn streaming on a read failure", func() {
		boom := errors.New("connection reset by peer")
		body := &chunkReader{chunks: []string{"data: {\"delta\":\"par\"}\n\n"}, err: boom}

		res, err := stream.NewIngestor().Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).To(HaveOccurred())

		var readErr *stream.ReadError
		Expect(errors.As(err, &readErr)).To(BeTrue())
		Expect(readErr.Partial).To(Equal("par"))
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(res.Text).To(Equal("par"))

		Expect(turn().Streaming).To(BeTrue())
		Expect(sink.streamingFlips).To(BeZero())
	})

	It("should stop when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		body := strings.NewReader("data: {\"delta\":\"A\"}\n\n")
		_, err := stream.NewIngestor().Ingest(cctx, body, sink, placeholder.ID)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(turn().Text).To(BeEmpty())
	})

	It("should be a no-op once the turn has been removed", func() {
		store.Remove(placeholder.ID)

		body := strings.NewReader("data: {\"delta\":\"late\"}\n\n")
		_, err := stream.NewIngestor().Ingest(ctx, body, sink, placeholder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Len()).To(BeZero())
	})
})
