package sqlitevec_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/vector"
	"github.com/hearthchat/hearth/pkg/vector/sqlitevec"
)

var _ = Describe("Index", func() {
	var logger *zap.Logger
	var ctx context.Context

	BeforeEach(func() {
		logger = zap.NewNop()
		ctx = context.Background()
	})

	Describe("NewIndex", func() {
		It("returns an error when DBPath is empty", func() {
			_, err := sqlitevec.NewIndex(sqlitevec.Config{DBPath: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("creates an index with an in-memory database", func() {
			idx, err := sqlitevec.NewIndex(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(idx).NotTo(BeNil())
			Expect(idx.Close()).To(Succeed())
		})

		It("errors when dimensions are not specified", func() {
			_, err := sqlitevec.NewIndex(sqlitevec.Config{DBPath: ":memory:"}, logger)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("interface compliance", func() {
		It("implements vector.Index", func() {
			var _ vector.Index = (*sqlitevec.Index)(nil)
		})
	})

	Describe("Add and Query", func() {
		var idx *sqlitevec.Index

		BeforeEach(func() {
			var err error
			idx, err = sqlitevec.NewIndex(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(idx.Close()).To(Succeed())
		})

		It("does nothing when given no entries", func() {
			Expect(idx.Add(ctx, []vector.Entry{})).To(Succeed())
		})

		It("rejects embeddings with the wrong dimensionality", func() {
			err := idx.Add(ctx, []vector.Entry{
				{ID: "bad", Embedding: []float32{1, 2}},
			})
			Expect(err).To(MatchError(vector.ErrDimensions))
		})

		It("ranks nearest entries first", func() {
			err := idx.Add(ctx, []vector.Entry{
				{ID: "m-0", Seq: 0, Embedding: []float32{1, 0, 0, 0}},
				{ID: "m-1", Seq: 1, Embedding: []float32{0, 1, 0, 0}},
				{ID: "m-2", Seq: 2, Embedding: []float32{0.9, 0.1, 0, 0}},
			})
			Expect(err).NotTo(HaveOccurred())

			results, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("m-0"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-5))
			Expect(results[1].ID).To(Equal("m-2"))
		})

		It("updates an existing entry in place", func() {
			Expect(idx.Add(ctx, []vector.Entry{
				{ID: "m-0", Seq: 0, Embedding: []float32{0, 1, 0, 0}},
			})).To(Succeed())
			Expect(idx.Add(ctx, []vector.Entry{
				{ID: "m-0", Seq: 0, Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())

			results, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-5))
		})
	})

	Describe("Clear", func() {
		It("removes all entries", func() {
			idx, err := sqlitevec.NewIndex(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			defer idx.Close()

			Expect(idx.Add(ctx, []vector.Entry{
				{ID: "m-0", Seq: 0, Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())
			Expect(idx.Clear(ctx)).To(Succeed())

			results, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})
	})
})
