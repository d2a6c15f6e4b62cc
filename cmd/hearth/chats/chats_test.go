package chatscmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	chatscmder "github.com/hearthchat/hearth/cmd/hearth/chats"
)

var _ = Describe("NewChatsCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := chatscmder.NewChatsCmd()
		Expect(cmd.Use).To(Equal("chats"))
	})

	It("has list, new, and rename subcommands", func() {
		cmd := chatscmder.NewChatsCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("list", "new", "rename"))
	})
})

var _ = Describe("Chats command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "hearth-chats-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .hearth dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".hearth"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("list subcommand", func() {
		It("runs without error when no chats exist", func() {
			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"list"})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects any arguments", func() {
			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"list", "extra"})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("new subcommand", func() {
		It("creates the chat folder structure", func() {
			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"new", "diary"})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			dir := filepath.Join(tmpDir, ".hearth", "chats", "ollama", "diary")
			Expect(dir).To(BeADirectory())
			Expect(filepath.Join(dir, "audio")).To(BeADirectory())
			Expect(filepath.Join(dir, "images")).To(BeADirectory())
		})

		It("honors the backend flag", func() {
			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"new", "diary", "--backend", "llama-server"})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			Expect(filepath.Join(tmpDir, ".hearth", "chats", "llama-server", "diary")).To(BeADirectory())
		})

		It("requires a chat name", func() {
			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"new"})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("rename subcommand", func() {
		It("moves the chat folder", func() {
			newCmd := chatscmder.NewChatsCmd()
			newCmd.SetArgs([]string{"new", "diary"})
			Expect(newCmd.Execute()).To(Succeed())

			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"rename", "diary", "journal"})
			err := cmd.Execute()
			Expect(err).NotTo(HaveOccurred())

			root := filepath.Join(tmpDir, ".hearth", "chats", "ollama")
			Expect(filepath.Join(root, "journal")).To(BeADirectory())
			Expect(filepath.Join(root, "diary")).NotTo(BeADirectory())
		})

		It("refuses to overwrite an existing chat", func() {
			for _, name := range []string{"diary", "journal"} {
				cmd := chatscmder.NewChatsCmd()
				cmd.SetArgs([]string{"new", name})
				Expect(cmd.Execute()).To(Succeed())
			}

			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"rename", "diary", "journal"})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			cmd := chatscmder.NewChatsCmd()
			cmd.SetArgs([]string{"rename", "diary"})
			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
		})
	})
})
