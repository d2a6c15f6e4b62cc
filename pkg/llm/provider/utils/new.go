// Package providerutils is the chat provider utility package
package providerutils

import (
	"fmt"
	"time"

	"github.com/hearthchat/hearth/pkg/llm/provider"
	"github.com/hearthchat/hearth/pkg/llm/provider/llamaserver"
	"github.com/hearthchat/hearth/pkg/llm/provider/ollama"
)

type NewProviderOpts struct {
	Backend   string
	TargetURL string
	Timeout   time.Duration
}

func NewProvider(o *NewProviderOpts) (provider.Provider, error) {
	switch o.Backend {
	case "ollama":
		return ollama.NewClient(ollama.Config{
			BaseURL: o.TargetURL,
			Timeout: o.Timeout,
		})
	case "llama-server":
		return llamaserver.NewClient(llamaserver.Config{
			BaseURL: o.TargetURL,
			Timeout: o.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported chat backend: %s", o.Backend)
	}
}
