package memory_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hearthchat/hearth/pkg/memory"
)

var _ = Describe("FactsRecord", func() {
	It("round-trips entries in order with metadata", func() {
		record := &memory.FactsRecord{
			Entries: []memory.FactEntry{
				{Category: "name", Value: "my name is Robin"},
				{Category: "pet", Value: "my dog is named North"},
			},
			LastUpdated:             "2026-08-25T10:00:00Z",
			LastScannedMessageIndex: 7,
		}

		data, err := json.Marshal(record)
		Expect(err).NotTo(HaveOccurred())

		var reloaded memory.FactsRecord
		Expect(json.Unmarshal(data, &reloaded)).To(Succeed())
		Expect(reloaded.Entries).To(Equal(record.Entries))
		Expect(reloaded.LastUpdated).To(Equal("2026-08-25T10:00:00Z"))
		Expect(reloaded.LastScannedMessageIndex).To(Equal(7))
	})

	It("formats entries as pipe-separated category pairs", func() {
		record := &memory.FactsRecord{
			Entries: []memory.FactEntry{
				{Category: "name", Value: "my name is Robin"},
				{Category: "job", Value: ""},
				{Category: "pet", Value: "my dog is named North"},
			},
		}
		Expect(record.Format()).To(Equal("name: my name is Robin | pet: my dog is named North"))
	})

	Describe("Fresh", func() {
		It("is fresh only while the watermark covers the message count", func() {
			record := &memory.FactsRecord{LastScannedMessageIndex: 4}
			Expect(record.Fresh(4)).To(BeTrue())
			Expect(record.Fresh(3)).To(BeTrue())
			Expect(record.Fresh(5)).To(BeFalse())
		})
	})
})

var _ = Describe("LoadFactsRecord", func() {
	It("misses on an absent file", func() {
		_, ok := memory.LoadFactsRecord(filepath.Join(GinkgoT().TempDir(), "facts.json"))
		Expect(ok).To(BeFalse())
	})

	It("misses on a corrupt file instead of failing", func() {
		path := filepath.Join(GinkgoT().TempDir(), "facts.json")
		Expect(os.WriteFile(path, []byte("{broken"), 0o644)).To(Succeed())

		_, ok := memory.LoadFactsRecord(path)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("PersonalFactsWithCache", func() {
	var ctx context.Context
	var store *memory.Store
	var cachePath string

	addUser := func(content string) {
		Expect(store.Add(ctx, memory.RoleUser, content)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.NewStore(memory.Config{Enabled: true}, nil, nil, nil)
		cachePath = filepath.Join(GinkgoT().TempDir(), "facts.json")
	})

	It("extracts and writes the sidecar on a cold cache", func() {
		addUser("my name is Robin")
		addUser("i work as a baker")

		out := store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})
		Expect(out).To(ContainSubstring("my name is Robin"))

		record, ok := memory.LoadFactsRecord(cachePath)
		Expect(ok).To(BeTrue())
		Expect(record.LastScannedMessageIndex).To(Equal(2))
		Expect(record.Entries).To(ContainElement(memory.FactEntry{Category: "name", Value: "my name is Robin"}))
		Expect(record.LastUpdated).NotTo(BeEmpty())
	})

	It("serves a fresh cache without re-saving", func() {
		addUser("my name is Robin")
		_ = store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})

		before, err := os.Stat(cachePath)
		Expect(err).NotTo(HaveOccurred())

		out := store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})
		Expect(out).To(Equal("name: my name is Robin"))

		after, err := os.Stat(cachePath)
		Expect(err).NotTo(HaveOccurred())
		Expect(after.ModTime()).To(Equal(before.ModTime()))
	})

	It("is idempotent on repeated calls with a valid cache", func() {
		addUser("my dog is named North")

		first := store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})
		Expect(first).NotTo(BeEmpty())
		second := store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})
		Expect(store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})).To(Equal(second))
	})

	It("re-extracts once a new message arrives", func() {
		addUser("my name is Robin")
		_ = store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})

		addUser("i work as a baker")
		out := store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})
		Expect(out).To(ContainSubstring("i work as a baker"))

		record, ok := memory.LoadFactsRecord(cachePath)
		Expect(ok).To(BeTrue())
		Expect(record.LastScannedMessageIndex).To(Equal(2))
		Expect(record.Entries).To(ContainElement(memory.FactEntry{Category: "job", Value: "i work as a baker"}))
	})

	It("treats a corrupt sidecar as a miss and rewrites it", func() {
		addUser("my name is Robin")
		Expect(os.WriteFile(cachePath, []byte("not json"), 0o644)).To(Succeed())

		out := store.PersonalFactsWithCache(cachePath, 0, memory.FactOptions{})
		Expect(out).To(ContainSubstring("my name is Robin"))

		_, ok := memory.LoadFactsRecord(cachePath)
		Expect(ok).To(BeTrue())
	})

	It("limits the scan window to the newest messages", func() {
		addUser("my name is Robin")
		for i := 0; i < 3; i++ {
			addUser("nothing personal here")
		}

		out := store.PersonalFactsWithCache(cachePath, 2, memory.FactOptions{})
		Expect(out).To(Equal(""))
	})

	It("works without a cache path", func() {
		addUser("my name is Robin")
		out := store.PersonalFactsWithCache("", 0, memory.FactOptions{})
		Expect(out).To(ContainSubstring("my name is Robin"))
	})
})
