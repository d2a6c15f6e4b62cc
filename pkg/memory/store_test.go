package memory_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hearthchat/hearth/pkg/memory"
)

var _ = Describe("Store", func() {
	var ctx context.Context
	var embedder *stubEmbedder
	var store *memory.Store

	BeforeEach(func() {
		ctx = context.Background()
		embedder = newStubEmbedder()
		store = memory.NewStore(memory.Config{
			SessionID: "test_session",
			Enabled:   true,
		}, embedder, nil, nil)
	})

	Describe("Add", func() {
		It("records messages with embeddings", func() {
			Expect(store.Add(ctx, memory.RoleUser, "hello")).To(Succeed())
			Expect(store.Add(ctx, memory.RoleAssistant, "hi there")).To(Succeed())

			history := store.History()
			Expect(history).To(HaveLen(2))
			Expect(history[0].Role).To(Equal(memory.RoleUser))
			Expect(history[0].Content).To(Equal("hello"))
			Expect(history[0].Embedding).NotTo(BeNil())
			Expect(history[1].Role).To(Equal(memory.RoleAssistant))
		})

		It("stores the message without an embedding when embedding fails", func() {
			embedder.failAll = true

			Expect(store.Add(ctx, memory.RoleUser, "hello")).To(Succeed())

			history := store.History()
			Expect(history).To(HaveLen(1))
			Expect(history[0].Embedding).To(BeNil())

			stats := store.Stats()
			Expect(stats.TotalMessages).To(Equal(1))
			Expect(stats.EmbeddedMessages).To(Equal(0))
		})

		It("is a no-op when memory is disabled", func() {
			disabled := memory.NewStore(memory.Config{Enabled: false}, embedder, nil, nil)

			Expect(disabled.Add(ctx, memory.RoleUser, "hello")).To(Succeed())
			Expect(disabled.Len()).To(Equal(0))
			Expect(embedder.calls).To(Equal(0))
		})
	})

	Describe("pending assistant turns", func() {
		It("keeps a pending turn out of history until finalized", func() {
			Expect(store.Add(ctx, memory.RoleUser, "question")).To(Succeed())

			turn := store.BeginAssistantTurn()
			Expect(store.Len()).To(Equal(1))
			Expect(store.Stats().AssistantMessages).To(Equal(0))

			Expect(turn.Finalize(ctx, "answer")).To(Succeed())
			history := store.History()
			Expect(history).To(HaveLen(2))
			Expect(history[1].Role).To(Equal(memory.RoleAssistant))
			Expect(history[1].Content).To(Equal("answer"))
		})

		It("records nothing for a discarded turn", func() {
			turn := store.BeginAssistantTurn()
			Expect(turn.Discard()).To(Succeed())
			Expect(store.Len()).To(Equal(0))
		})

		It("rejects finalizing a turn twice", func() {
			turn := store.BeginAssistantTurn()
			Expect(turn.Finalize(ctx, "answer")).To(Succeed())
			Expect(turn.Finalize(ctx, "again")).To(MatchError(memory.ErrTurnFinalized))
			Expect(store.Len()).To(Equal(1))
		})

		It("rejects finalizing a discarded turn", func() {
			turn := store.BeginAssistantTurn()
			Expect(turn.Discard()).To(Succeed())
			Expect(turn.Finalize(ctx, "late")).To(MatchError(memory.ErrTurnFinalized))
		})
	})

	Describe("SaveFile and LoadFile", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "chat", "chat.json")
		})

		It("round-trips a conversation", func() {
			Expect(store.Add(ctx, memory.RoleUser, "my name is Robin")).To(Succeed())
			Expect(store.Add(ctx, memory.RoleAssistant, "nice to meet you")).To(Succeed())
			Expect(store.SaveFile(path)).To(Succeed())

			reloaded := memory.NewStore(memory.Config{Enabled: true}, embedder, nil, nil)
			loaded, err := reloaded.LoadFile(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeTrue())

			history := reloaded.History()
			Expect(history).To(HaveLen(2))
			Expect(history[0].Content).To(Equal("my name is Robin"))
			Expect(history[0].Embedding).To(Equal(embedder.fallback))
			Expect(history[1].Role).To(Equal(memory.RoleAssistant))
		})

		It("returns false without error for a missing file", func() {
			loaded, err := store.LoadFile(ctx, filepath.Join(GinkgoT().TempDir(), "nope.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeFalse())
		})

		It("errors on a file that is not valid JSON", func() {
			bad := filepath.Join(GinkgoT().TempDir(), "bad.json")
			Expect(os.WriteFile(bad, []byte("{not json"), 0o644)).To(Succeed())

			_, err := store.LoadFile(ctx, bad)
			Expect(err).To(HaveOccurred())
		})

		It("loads the legacy bare-array format and normalizes senders", func() {
			legacy := filepath.Join(GinkgoT().TempDir(), "legacy.json")
			payload := `[
				{"sender": "You", "content": "hello from the past"},
				{"sender": "Assistant", "content": "greetings"}
			]`
			Expect(os.WriteFile(legacy, []byte(payload), 0o644)).To(Succeed())

			loaded, err := store.LoadFile(ctx, legacy)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeTrue())

			history := store.History()
			Expect(history).To(HaveLen(2))
			Expect(history[0].Role).To(Equal(memory.RoleUser))
			Expect(history[1].Role).To(Equal(memory.RoleAssistant))
			Expect(history[0].Timestamp).NotTo(BeEmpty())
		})

		It("prefers role over sender when both are present", func() {
			mixed := filepath.Join(GinkgoT().TempDir(), "mixed.json")
			payload := `{"messages": [{"role": "user", "sender": "Assistant", "content": "x"}]}`
			Expect(os.WriteFile(mixed, []byte(payload), 0o644)).To(Succeed())

			loaded, err := store.LoadFile(ctx, mixed)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeTrue())
			Expect(store.History()[0].Role).To(Equal(memory.RoleUser))
		})

		It("replaces prior contents on load", func() {
			Expect(store.Add(ctx, memory.RoleUser, "old state")).To(Succeed())
			Expect(store.SaveFile(path)).To(Succeed())

			Expect(store.Add(ctx, memory.RoleUser, "unsaved")).To(Succeed())
			loaded, err := store.LoadFile(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeTrue())
			Expect(store.Len()).To(Equal(1))
			Expect(store.History()[0].Content).To(Equal("old state"))
		})
	})

	Describe("Clear", func() {
		It("empties the conversation and the search index", func() {
			embedder.vectors["findable"] = []float32{1, 0, 0}
			Expect(store.Add(ctx, memory.RoleUser, "findable")).To(Succeed())
			Expect(store.Clear(ctx)).To(Succeed())

			Expect(store.Len()).To(Equal(0))
			embedder.vectors["findable?"] = []float32{1, 0, 0}
			Expect(store.Search(ctx, "findable?", 5)).To(BeEmpty())
		})
	})

	Describe("Stats", func() {
		It("counts messages by role and embedding presence", func() {
			Expect(store.Add(ctx, memory.RoleUser, "one")).To(Succeed())
			Expect(store.Add(ctx, memory.RoleAssistant, "two")).To(Succeed())
			embedder.failAll = true
			Expect(store.Add(ctx, memory.RoleUser, "three")).To(Succeed())

			stats := store.Stats()
			Expect(stats.TotalMessages).To(Equal(3))
			Expect(stats.UserMessages).To(Equal(2))
			Expect(stats.AssistantMessages).To(Equal(1))
			Expect(stats.EmbeddedMessages).To(Equal(2))
			Expect(stats.SessionID).To(Equal("test_session"))
			Expect(stats.MemoryEnabled).To(BeTrue())
		})
	})
})
