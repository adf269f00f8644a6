package chat_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/killallgit/realty/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// smallest valid PNG header, enough for content sniffing
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

var _ = Describe("Turns", func() {
	Describe("NewUserTurn", func() {
		It("should trim the text and stamp the time", func() {
			t := chat.NewUserTurn("  where is my lease?  ", nil)

			Expect(t.IsUser()).To(BeTrue())
			Expect(t.Text).To(Equal("where is my lease?"))
			Expect(t.ID).NotTo(BeEmpty())
			Expect(t.Timestamp).To(BeTemporally("~", time.Now(), time.Second))
			Expect(t.Role()).To(Equal(chat.RoleUser))
		})

		It("should never reuse ids", func() {
			seen := map[string]bool{}
			for i := 0; i < 100; i++ {
				id := chat.NewUserTurn("x", nil).ID
				Expect(seen).NotTo(HaveKey(id))
				seen[id] = true
			}
		})
	})

	Describe("NewAgentPlaceholder", func() {
		It("should start empty, streaming and unattributed", func() {
			t := chat.NewAgentPlaceholder()

			Expect(t.IsAgent()).To(BeTrue())
			Expect(t.Streaming).To(BeTrue())
			Expect(t.AgentName).To(BeEmpty())
			Expect(t.IsEmpty()).To(BeTrue())
			Expect(t.Role()).To(Equal(chat.RoleAssistant))
		})
	})

	Describe("NewErrorTurn", func() {
		It("should carry the fixed error text", func() {
			t := chat.NewErrorTurn()

			Expect(t.Text).To(Equal("Error: Could not get response from the agent."))
			Expect(t.Failed).To(BeTrue())
			Expect(t.Streaming).To(BeFalse())
		})
	})

	Describe("Images", func() {
		It("should sniff the content type when none is given", func() {
			img := chat.NewImage("damp.png", "", pngBytes)
			Expect(img.ContentType).To(Equal("image/png"))
		})

		It("should keep an explicit content type", func() {
			img := chat.NewImage("damp.jpg", "image/jpeg", []byte("whatever"))
			Expect(img.ContentType).To(Equal("image/jpeg"))
		})

		It("should load an image from disk", func() {
			path := filepath.Join(GinkgoT().TempDir(), "mould.png")
			Expect(os.WriteFile(path, pngBytes, 0644)).To(Succeed())

			img, err := chat.LoadImage(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Name).To(Equal("mould.png"))
			Expect(img.ContentType).To(Equal("image/png"))

			t := chat.NewUserTurn("", img)
			Expect(t.HasImage()).To(BeTrue())
		})

		It("should reject files that are not images", func() {
			path := filepath.Join(GinkgoT().TempDir(), "notes.txt")
			Expect(os.WriteFile(path, []byte("plain text"), 0644)).To(Succeed())

			_, err := chat.LoadImage(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
