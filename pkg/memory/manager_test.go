package memory_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hearthchat/hearth/pkg/memory"
)

var _ = Describe("Manager", func() {
	var ctx context.Context
	var dataDir string
	var mgr *memory.Manager

	BeforeEach(func() {
		ctx = context.Background()
		dataDir = GinkgoT().TempDir()
		mgr = memory.NewManager(memory.ManagerConfig{
			Enabled:          true,
			FactCacheEnabled: true,
			DataDir:          dataDir,
		}, nil)
	})

	AfterEach(func() {
		Expect(mgr.Close()).To(Succeed())
	})

	Describe("Session", func() {
		It("rejects unknown backends", func() {
			_, err := mgr.Session("mystery")
			Expect(err).To(MatchError(memory.ErrUnknownBackend))
		})

		It("creates one session per backend and reuses it", func() {
			first, err := mgr.Session(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			again, err := mgr.Session(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(BeIdenticalTo(first))

			other, err := mgr.Session(memory.BackendLlamaServer)
			Expect(err).NotTo(HaveOccurred())
			Expect(other).NotTo(BeIdenticalTo(first))
		})

		It("keeps backend histories independent", func() {
			Expect(mgr.AddMessage(ctx, memory.BackendOllama, memory.RoleUser, "ollama side")).To(Succeed())
			Expect(mgr.AddMessage(ctx, memory.BackendLlamaServer, memory.RoleUser, "llama side")).To(Succeed())

			ollamaStats, err := mgr.Stats(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(ollamaStats.TotalMessages).To(Equal(1))

			llamaStats, err := mgr.Stats(memory.BackendLlamaServer)
			Expect(err).NotTo(HaveOccurred())
			Expect(llamaStats.TotalMessages).To(Equal(1))
		})
	})

	Describe("SwitchChat", func() {
		It("starts empty when the chat has no saved conversation", func() {
			Expect(mgr.AddMessage(ctx, memory.BackendOllama, memory.RoleUser, "unsaved")).To(Succeed())
			Expect(mgr.SwitchChat(ctx, memory.BackendOllama, "fresh")).To(Succeed())

			stats, err := mgr.Stats(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalMessages).To(Equal(0))

			sess, err := mgr.Session(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Chat()).To(Equal("fresh"))
		})

		It("reloads a previously saved chat", func() {
			Expect(mgr.SwitchChat(ctx, memory.BackendOllama, "groceries")).To(Succeed())
			Expect(mgr.AddMessage(ctx, memory.BackendOllama, memory.RoleUser, "buy flour")).To(Succeed())
			Expect(mgr.Save(memory.BackendOllama)).To(Succeed())

			Expect(mgr.SwitchChat(ctx, memory.BackendOllama, "other")).To(Succeed())
			Expect(mgr.SwitchChat(ctx, memory.BackendOllama, "groceries")).To(Succeed())

			stats, err := mgr.Stats(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalMessages).To(Equal(1))
		})

		It("resets the session and reports an unreadable conversation file", func() {
			sess, err := mgr.Session(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			path, err := sess.Chats().ConversationFile("broken")
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(path, []byte("{oops"), 0o644)).To(Succeed())

			Expect(mgr.SwitchChat(ctx, memory.BackendOllama, "broken")).To(HaveOccurred())

			stats, err := mgr.Stats(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalMessages).To(Equal(0))
		})
	})

	Describe("Save", func() {
		It("writes the chat file into the chat's folder", func() {
			Expect(mgr.SwitchChat(ctx, memory.BackendOllama, "diary")).To(Succeed())
			Expect(mgr.AddMessage(ctx, memory.BackendOllama, memory.RoleUser, "dear diary")).To(Succeed())
			Expect(mgr.Save(memory.BackendOllama)).To(Succeed())

			path := filepath.Join(dataDir, "chats", "ollama", "diary", "diary.json")
			Expect(path).To(BeAnExistingFile())
		})
	})

	Describe("PersonalFacts", func() {
		It("extracts facts and maintains the sidecar cache", func() {
			Expect(mgr.SwitchChat(ctx, memory.BackendOllama, "personal")).To(Succeed())
			Expect(mgr.AddMessage(ctx, memory.BackendOllama, memory.RoleUser, "my name is Robin")).To(Succeed())

			out, err := mgr.PersonalFacts(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("my name is Robin"))

			sidecar := filepath.Join(dataDir, "chats", "ollama", "personal", "facts.json")
			Expect(sidecar).To(BeAnExistingFile())

			// Second call is served from the cache.
			cached, err := mgr.PersonalFacts(memory.BackendOllama)
			Expect(err).NotTo(HaveOccurred())
			Expect(cached).To(Equal("name: my name is Robin"))
		})
	})

	Describe("Clear and Context", func() {
		It("clears in-memory state and context goes empty", func() {
			Expect(mgr.AddMessage(ctx, memory.BackendOllama, memory.RoleUser, "hello")).To(Succeed())

			out, err := mgr.Context(ctx, memory.BackendOllama, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("## Conversation Context:"))

			Expect(mgr.Clear(ctx, memory.BackendOllama)).To(Succeed())
			out, err = mgr.Context(ctx, memory.BackendOllama, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(""))
		})
	})
})
