package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hearthchat/hearth/pkg/dotdir"
)

var _ = Describe("Chats", func() {
	var tmpDir string
	var chats *dotdir.Chats

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		m := dotdir.NewManager()
		chats, err = m.NewChats("ollama", tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Ensure", func() {
		It("creates the chat folder with audio and images subfolders", func() {
			dir, err := chats.Ensure("default")
			Expect(err).NotTo(HaveOccurred())

			for _, sub := range []string{"", "audio", "images"} {
				info, err := os.Stat(filepath.Join(dir, sub))
				Expect(err).NotTo(HaveOccurred())
				Expect(info.IsDir()).To(BeTrue())
			}
		})
	})

	Describe("ConversationFile", func() {
		It("names the conversation file after the chat", func() {
			path, err := chats.ConversationFile("holidays")
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(path)).To(Equal("holidays.json"))
		})
	})

	Describe("FactsFile", func() {
		It("places the sidecar beside the conversation file", func() {
			conv, err := chats.ConversationFile("holidays")
			Expect(err).NotTo(HaveOccurred())
			facts, err := chats.FactsFile("holidays")
			Expect(err).NotTo(HaveOccurred())

			Expect(filepath.Dir(facts)).To(Equal(filepath.Dir(conv)))
			Expect(filepath.Base(facts)).To(Equal("facts.json"))
		})
	})

	Describe("List", func() {
		It("returns chat names sorted", func() {
			_, err := chats.Ensure("zeta")
			Expect(err).NotTo(HaveOccurred())
			_, err = chats.Ensure("alpha")
			Expect(err).NotTo(HaveOccurred())

			names, err := chats.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"alpha", "zeta"}))
		})

		It("does not mix chats across backends", func() {
			_, err := chats.Ensure("only-ollama")
			Expect(err).NotTo(HaveOccurred())

			llama, err := dotdir.NewManager().NewChats("llama-server", tmpDir)
			Expect(err).NotTo(HaveOccurred())

			names, err := llama.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(BeEmpty())
		})
	})

	Describe("Rename", func() {
		It("moves the folder and the conversation file", func() {
			path, err := chats.ConversationFile("before")
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(path, []byte("[]"), 0o644)).To(Succeed())

			Expect(chats.Rename("before", "after")).To(Succeed())

			names, err := chats.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"after"}))

			renamed, err := chats.ConversationFile("after")
			Expect(err).NotTo(HaveOccurred())
			data, err := os.ReadFile(renamed)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("[]"))
		})

		It("refuses to clobber an existing chat", func() {
			_, err := chats.Ensure("one")
			Expect(err).NotTo(HaveOccurred())
			_, err = chats.Ensure("two")
			Expect(err).NotTo(HaveOccurred())

			err = chats.Rename("one", "two")
			Expect(err).To(MatchError(dotdir.ErrChatExists))
		})
	})

	Describe("New", func() {
		It("removes any existing conversation file", func() {
			path, err := chats.ConversationFile("scratch")
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(path, []byte(`{"messages":[]}`), 0o644)).To(Succeed())

			_, err = chats.New("scratch")
			Expect(err).NotTo(HaveOccurred())

			_, err = os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("ConversationSize", func() {
		It("returns zero for a missing file", func() {
			Expect(chats.ConversationSize("nothing")).To(BeZero())
		})

		It("returns the conversation file size only", func() {
			path, err := chats.ConversationFile("sized")
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(path, []byte("12345"), 0o644)).To(Succeed())

			Expect(chats.ConversationSize("sized")).To(Equal(int64(5)))
		})
	})

	Describe("FormatSize", func() {
		It("formats bytes and kilobytes", func() {
			Expect(dotdir.FormatSize(512)).To(Equal("512 B"))
			Expect(dotdir.FormatSize(2048)).To(Equal("2.0 KB"))
		})
	})
})
