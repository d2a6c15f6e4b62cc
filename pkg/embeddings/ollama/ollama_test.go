package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hearthchat/hearth/pkg/embeddings/ollama"
	"github.com/hearthchat/hearth/pkg/vector"
)

var _ = Describe("Embedder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("posts to /api/embed and returns the first embedding", func() {
		var gotPath string
		var gotBody map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())

			resp := map[string]any{"embeddings": [][]float32{{0.1, 0.2, 0.3, 0.4}}}
			Expect(json.NewEncoder(w).Encode(resp)).To(Succeed())
		}))
		defer server.Close()

		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL, Model: "all-minilm"})
		Expect(err).NotTo(HaveOccurred())

		vec, err := e.Embed(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3, 0.4}))
		Expect(gotPath).To(Equal("/api/embed"))
		Expect(gotBody["model"]).To(Equal("all-minilm"))
		Expect(gotBody["input"]).To(Equal("hello world"))
	})

	It("wraps non-200 responses in ErrEmbedding", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(ctx, "hello")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("wraps malformed response bodies in ErrEmbedding", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(ctx, "hello")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("errors when the server returns zero embeddings", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"embeddings":[]}`))
		}))
		defer server.Close()

		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(ctx, "hello")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("defaults the base URL and model", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(e).NotTo(BeNil())
		Expect(e.Close()).To(Succeed())
	})
})
