package memory_test

import (
	"context"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hearthchat/hearth/pkg/memory"
)

var _ = Describe("Search", func() {
	var ctx context.Context
	var embedder *stubEmbedder
	var store *memory.Store

	BeforeEach(func() {
		ctx = context.Background()
		embedder = newStubEmbedder()
		store = memory.NewStore(memory.Config{Enabled: true}, embedder, nil, nil)
	})

	It("ranks embedded messages by similarity, skipping unembedded ones", func() {
		embedder.vectors["about dogs"] = []float32{1, 0, 0}
		embedder.vectors["about cats"] = []float32{0, 1, 0}
		Expect(store.Add(ctx, memory.RoleUser, "about dogs")).To(Succeed())
		Expect(store.Add(ctx, memory.RoleUser, "about cats")).To(Succeed())

		embedder.failAll = true
		Expect(store.Add(ctx, memory.RoleUser, "never embedded")).To(Succeed())
		embedder.failAll = false

		embedder.vectors["dog question"] = []float32{1, 0, 0}
		results := store.Search(ctx, "dog question", 5)
		Expect(results).To(HaveLen(2))
		Expect(results[0].Message.Content).To(Equal("about dogs"))
		Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-6))
		Expect(results[1].Message.Content).To(Equal("about cats"))
	})

	It("breaks equal scores by insertion order", func() {
		embedder.vectors["first"] = []float32{2, 0, 0}
		embedder.vectors["second"] = []float32{3, 0, 0}
		Expect(store.Add(ctx, memory.RoleUser, "first")).To(Succeed())
		Expect(store.Add(ctx, memory.RoleUser, "second")).To(Succeed())

		embedder.vectors["q"] = []float32{1, 0, 0}
		results := store.Search(ctx, "q", 2)
		Expect(results).To(HaveLen(2))
		Expect(results[0].Message.Content).To(Equal("first"))
		Expect(results[1].Message.Content).To(Equal("second"))
	})

	It("returns nothing when the query cannot be embedded", func() {
		Expect(store.Add(ctx, memory.RoleUser, "hello")).To(Succeed())

		embedder.failAll = true
		Expect(store.Search(ctx, "hello", 5)).To(BeEmpty())
	})

	It("returns nothing without an embedder", func() {
		plain := memory.NewStore(memory.Config{Enabled: true}, nil, nil, nil)
		Expect(plain.Add(ctx, memory.RoleUser, "hello")).To(Succeed())
		Expect(plain.Search(ctx, "hello", 5)).To(BeEmpty())
	})
})

var _ = Describe("ContextForPrompt", func() {
	var ctx context.Context
	var embedder *stubEmbedder

	BeforeEach(func() {
		ctx = context.Background()
		embedder = newStubEmbedder()
	})

	It("returns empty for a disabled or empty store", func() {
		disabled := memory.NewStore(memory.Config{Enabled: false}, embedder, nil, nil)
		Expect(disabled.ContextForPrompt(ctx, "q")).To(Equal(""))

		empty := memory.NewStore(memory.Config{Enabled: true}, embedder, nil, nil)
		Expect(empty.ContextForPrompt(ctx, "q")).To(Equal(""))
	})

	It("renders recent messages under the context header", func() {
		store := memory.NewStore(memory.Config{Enabled: true}, nil, nil, nil)
		Expect(store.Add(ctx, memory.RoleUser, "hello")).To(Succeed())
		Expect(store.Add(ctx, memory.RoleAssistant, "hi")).To(Succeed())

		out := store.ContextForPrompt(ctx, "anything")
		Expect(out).To(Equal("## Conversation Context:\nUser: hello\nAssistant: hi"))
	})

	It("appends semantic hits outside the recency slice without duplicates", func() {
		store := memory.NewStore(memory.Config{
			Enabled:             true,
			MaxContextMessages:  2,
			SemanticSearchLimit: 2,
		}, embedder, nil, nil)

		embedder.vectors["my dog is named Biscuit"] = []float32{1, 0, 0}
		Expect(store.Add(ctx, memory.RoleUser, "my dog is named Biscuit")).To(Succeed())
		for i := 0; i < 4; i++ {
			Expect(store.Add(ctx, memory.RoleUser, fmt.Sprintf("filler %d", i))).To(Succeed())
		}

		embedder.vectors["what is my dog called?"] = []float32{1, 0, 0}
		out := store.ContextForPrompt(ctx, "what is my dog called?")

		lines := strings.Split(out, "\n")
		Expect(lines[0]).To(Equal("## Conversation Context:"))
		Expect(lines[1]).To(Equal("User: filler 2"))
		Expect(lines[2]).To(Equal("User: filler 3"))
		Expect(lines).To(ContainElement("User: my dog is named Biscuit"))
		Expect(strings.Count(out, "my dog is named Biscuit")).To(Equal(1))
	})

	It("is deterministic for a fixed history and query", func() {
		store := memory.NewStore(memory.Config{Enabled: true}, embedder, nil, nil)
		embedder.vectors["a"] = []float32{1, 0, 0}
		embedder.vectors["b"] = []float32{0, 1, 0}
		Expect(store.Add(ctx, memory.RoleUser, "a")).To(Succeed())
		Expect(store.Add(ctx, memory.RoleAssistant, "b")).To(Succeed())

		first := store.ContextForPrompt(ctx, "a")
		for i := 0; i < 5; i++ {
			Expect(store.ContextForPrompt(ctx, "a")).To(Equal(first))
		}
	})
})
