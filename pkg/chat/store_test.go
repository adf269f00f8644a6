package chat_test

import (
	"sync"

	"github.com/killallgit/realty/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var store *chat.Store

	BeforeEach(func() {
		store = chat.NewStore()
	})

	It("should keep turns in append order", func() {
		u := chat.NewUserTurn("hello", nil)
		a := chat.NewAgentTurn("hi", "Property Issue Detector")
		store.Append(u)
		store.Append(a)

		all := store.All()
		Expect(all).To(HaveLen(2))
		Expect(all[0].ID).To(Equal(u.ID))
		Expect(all[1].ID).To(Equal(a.ID))
		Expect(store.Len()).To(Equal(2))
	})

	It("should return a copy from All", func() {
		store.Append(chat.NewUserTurn("hello", nil))
		all := store.All()
		all[0].Text = "mutated"

		Expect(store.All()[0].Text).To(Equal("hello"))
	})

	Describe("UpdateByID", func() {
		var placeholder chat.Turn

		BeforeEach(func() {
			placeholder = chat.NewAgentPlaceholder()
			store.Append(placeholder)
		})

		It("should concatenate deltas in order", func() {
			Expect(store.UpdateByID(placeholder.ID, chat.Update{AppendText: "A"})).To(BeTrue())
			Expect(store.UpdateByID(placeholder.ID, chat.Update{AppendText: "B"})).To(BeTrue())

			t, ok := store.Get(placeholder.ID)
			Expect(ok).To(BeTrue())
			Expect(t.Text).To(Equal("AB"))
		})

		It("should keep the first agent name", func() {
			store.UpdateByID(placeholder.ID, chat.Update{AgentName: "Property Issue Detector"})
			store.UpdateByID(placeholder.ID, chat.Update{AgentName: "Tenancy Agreement Expert"})

			t, _ := store.Get(placeholder.ID)
			Expect(t.AgentName).To(Equal("Property Issue Detector"))
		})

		It("should leave the text of a finished turn alone", func() {
			store.UpdateByID(placeholder.ID, chat.Update{AppendText: "done", Streaming: chat.Bool(false)})
			Expect(store.UpdateByID(placeholder.ID, chat.Update{AppendText: " late"})).To(BeTrue())

			t, _ := store.Get(placeholder.ID)
			Expect(t.Text).To(Equal("done"))
			Expect(t.Streaming).To(BeFalse())
		})

		It("should never append to a user turn", func() {
			user := chat.NewUserTurn("hello", nil)
			store.Append(user)
			store.UpdateByID(user.ID, chat.Update{AppendText: "!"})

			t, _ := store.Get(user.ID)
			Expect(t.Text).To(Equal("hello"))
		})

		It("should toggle streaming and failure flags", func() {
			store.UpdateByID(placeholder.ID, chat.Update{Streaming: chat.Bool(false), Failed: chat.Bool(true)})

			t, _ := store.Get(placeholder.ID)
			Expect(t.Streaming).To(BeFalse())
			Expect(t.Failed).To(BeTrue())
		})

		It("should be a no-op for unknown ids", func() {
			before := store.All()
			Expect(store.UpdateByID("missing", chat.Update{AppendText: "x"})).To(BeFalse())
			Expect(store.All()).To(Equal(before))
		})
	})

	Describe("Remove", func() {
		It("should remove a turn and keep the rest addressable", func() {
			a := chat.NewUserTurn("one", nil)
			b := chat.NewAgentPlaceholder()
			c := chat.NewUserTurn("three", nil)
			store.Append(a)
			store.Append(b)
			store.Append(c)

			Expect(store.Remove(b.ID)).To(BeTrue())
			Expect(store.Len()).To(Equal(2))
			_, ok := store.Get(b.ID)
			Expect(ok).To(BeFalse())

			Expect(store.UpdateByID(c.ID, chat.Update{Failed: chat.Bool(true)})).To(BeTrue())
			t, _ := store.Get(c.ID)
			Expect(t.Text).To(Equal("three"))
			Expect(t.Failed).To(BeTrue())
		})

		It("should report false for unknown ids", func() {
			Expect(store.Remove("missing")).To(BeFalse())
		})
	})

	Describe("Streaming", func() {
		It("should find the streaming turn", func() {
			_, ok := store.Streaming()
			Expect(ok).To(BeFalse())

			p := chat.NewAgentPlaceholder()
			store.Append(chat.NewUserTurn("q", nil))
			store.Append(p)

			t, ok := store.Streaming()
			Expect(ok).To(BeTrue())
			Expect(t.ID).To(Equal(p.ID))

			store.UpdateByID(p.ID, chat.Update{Streaming: chat.Bool(false)})
			_, ok = store.Streaming()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Subscribe", func() {
		It("should notify listeners after every mutation", func() {
			var mu sync.Mutex
			var seen []string
			store.Subscribe(func(t chat.Turn) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, t.Text)
			})

			p := chat.NewAgentPlaceholder()
			store.Append(p)
			store.UpdateByID(p.ID, chat.Update{AppendText: "A"})
			store.UpdateByID(p.ID, chat.Update{AppendText: "B"})
			store.Remove(p.ID)

			mu.Lock()
			defer mu.Unlock()
			Expect(seen).To(Equal([]string{"", "A", "AB", "AB"}))
		})

		It("should allow listeners to read the store", func() {
			var length int
			store.Subscribe(func(chat.Turn) {
				length = store.Len()
			})

			store.Append(chat.NewUserTurn("q", nil))
			Expect(length).To(Equal(1))
		})
	})

	It("should tolerate concurrent readers while a stream writes", func() {
		p := chat.NewAgentPlaceholder()
		store.Append(p)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				store.UpdateByID(p.ID, chat.Update{AppendText: "x"})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = store.All()
				_, _ = store.Streaming()
			}
		}()
		wg.Wait()

		t, _ := store.Get(p.ID)
		Expect(t.Text).To(HaveLen(200))
	})

	It("should clear everything on Reset", func() {
		store.Append(chat.NewUserTurn("q", nil))
		store.Reset()
		Expect(store.Len()).To(BeZero())
	})
})
