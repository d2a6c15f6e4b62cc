// Package chatcmder provides the chat command for interactive LLM chat
// with conversation memory.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/config"
	"github.com/hearthchat/hearth/pkg/dotdir"
	"github.com/hearthchat/hearth/pkg/events"
	"github.com/hearthchat/hearth/pkg/llm"
	"github.com/hearthchat/hearth/pkg/llm/provider"
	providerutils "github.com/hearthchat/hearth/pkg/llm/provider/utils"
	"github.com/hearthchat/hearth/pkg/logger"
	"github.com/hearthchat/hearth/pkg/memory"
	memoryutils "github.com/hearthchat/hearth/pkg/memory/utils"
	"github.com/hearthchat/hearth/pkg/settings"
	"github.com/hearthchat/hearth/pkg/worker"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// settingsFile holds runtime preferences (last model per backend) next to
// config.toml in the .hearth/ directory.
const settingsFile = "settings.json"

const chatLongDesc string = `Start an interactive chat session with conversation memory.

Messages are recorded in the active chat's conversation file, and each
prompt is enriched with recent history, semantically similar past
messages, and personal facts extracted from the conversation.

Ctrl+C interrupts a streaming response; the partial response is discarded.
Slash commands inside the session:
  /stats    Show message counts
  /facts    Show extracted personal facts
  /clear    Empty the in-memory conversation
  /exit     Quit

Examples:
  hearth chat --model gemma3:latest
  hearth chat --backend llama-server --chat diary`

const chatShortDesc string = "Interactive LLM chat with conversation memory"

type chatCommander struct {
	backend   string
	chatName  string
	model     string
	target    string
	configDir string
	debug     bool

	logger *zap.Logger
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagBackend, config.FlagChat, config.FlagModel,
				config.FlagContextWindow, config.FlagSearchLimit,
				config.FlagEmbeddingTgt, config.FlagEmbeddingModel,
				config.FlagVectorStoreProv, config.FlagVectorStoreTgt,
			})

			cmder.backend = v.GetString("client.backend")
			cmder.chatName = v.GetString("client.chat")

			cmder.model = v.GetString("ollama.model")
			cmder.target = v.GetString("ollama.target")
			if cmder.backend == memory.BackendLlamaServer {
				if !cmd.Flags().Changed(config.Flags[config.FlagModel].Name) {
					cmder.model = v.GetString("llama_server.model")
				}
				cmder.target = v.GetString("llama_server.target")
			}

			return cmder.run(cmd.Context(), v)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagChat, &cmder.chatName)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)

	var contextMessages, searchLimit int
	config.AddIntFlag(cmd, config.Flags, config.FlagContextWindow, &contextMessages)
	config.AddIntFlag(cmd, config.Flags, config.FlagSearchLimit, &searchLimit)

	var embeddingTarget, embeddingModel, vectorProvider, vectorTarget string
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &embeddingModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &vectorProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &vectorTarget)

	return cmd
}

func (c *chatCommander) run(ctx context.Context, v *viper.Viper) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	slogger := logger.Nop()
	if c.debug {
		slogger = logger.New(logger.WithDebug(true), logger.WithPretty(true))
	}

	dotdirTarget, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving hearth directory: %w", err)
	}

	repo := settings.NewRepository(filepath.Join(dotdirTarget, settingsFile), slogger)
	defer repo.Close()

	if c.model == "" {
		c.model = repo.GetString("last_model."+c.backend, "")
	}
	if c.model == "" {
		return fmt.Errorf("no model configured for backend %q: pass --model or set it with hearth config", c.backend)
	}

	mgr := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		Viper:       v,
		DataDir:     c.configDir,
		Logger:      slogger,
		IndexLogger: c.logger,
	})
	defer mgr.Close()

	if err := mgr.SwitchChat(ctx, c.backend, c.chatName); err != nil {
		// A corrupt conversation file resets the session; continue empty.
		fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
	}

	sess, err := mgr.Session(c.backend)
	if err != nil {
		return err
	}

	prov, err := providerutils.NewProvider(&providerutils.NewProviderOpts{
		Backend:   c.backend,
		TargetURL: c.target,
		// LLM responses can be slow
		Timeout: 5 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("creating chat provider: %w", err)
	}
	defer prov.Close()

	// The pool's per-turn logging would interleave with streamed output, so
	// it only logs in debug mode.
	poolLogger := zap.NewNop()
	if c.debug {
		poolLogger = c.logger
	}

	pool, err := worker.NewPool(&worker.Config{
		Manager: mgr,
		Logger:  poolLogger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	queue := events.NewQueue(0)
	defer queue.Close()

	turnDone := make(chan struct{})
	go consumeEvents(queue, turnDone)

	_ = repo.Set("last_model."+c.backend, c.model)
	_ = repo.Set("last_chat."+c.backend, c.chatName)

	fmt.Println()
	fmt.Printf("  Backend: %s   Model: %s\n", c.backend, c.model)
	fmt.Printf("  Chat: %s %s\n", sess.Chat(),
		dimStyle.Render(fmt.Sprintf("(%d messages)", sess.Store().Len())))
	fmt.Printf("  %s\n\n", dimStyle.Render("Type a message and press Enter. /exit to quit, Ctrl+C interrupts a response."))

	scanner := bufio.NewScanner(os.Stdin)

loop:
	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/exit", "/quit":
			break loop
		case "/stats":
			c.printStats(mgr)
			continue
		case "/facts":
			c.printFacts(mgr)
			continue
		case "/clear":
			if err := mgr.Clear(ctx, c.backend); err != nil {
				fmt.Fprintf(os.Stderr, "  %v\n", err)
			} else {
				fmt.Printf("  %s\n\n", dimStyle.Render("Conversation cleared."))
			}
			continue
		}

		if err := c.exchange(ctx, mgr, sess, prov, pool, queue, turnDone, input); err != nil {
			fmt.Fprintf(os.Stderr, "  %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// exchange runs one user turn: assemble the prompt, stream the response
// through the event queue, and record both sides in the session.
func (c *chatCommander) exchange(
	ctx context.Context,
	mgr *memory.Manager,
	sess *memory.Session,
	prov provider.Provider,
	pool *worker.Pool,
	queue *events.Queue,
	turnDone <-chan struct{},
	input string,
) error {
	// Prompt context is assembled before the new message is recorded so the
	// recency slice does not include the input itself.
	promptCtx, err := mgr.Context(ctx, c.backend, input)
	if err != nil {
		return err
	}

	facts, err := mgr.PersonalFacts(c.backend)
	if err != nil {
		return err
	}

	var msgs []llm.Message
	if system := joinSections(promptCtx, facts); system != "" {
		msgs = append(msgs, llm.NewMessage(llm.RoleSystem, system))
	}
	msgs = append(msgs, llm.NewMessage(llm.RoleUser, input))

	if err := sess.Store().Add(ctx, memory.RoleUser, input); err != nil {
		return fmt.Errorf("recording user message: %w", err)
	}

	turn := sess.Store().BeginAssistantTurn()

	// Ctrl+C aborts the stream without killing the session.
	streamCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_ = queue.Publish(ctx, events.StreamStart(turn.ID()))

	resp, err := prov.ChatStream(streamCtx, &llm.ChatRequest{
		Model:    c.model,
		Messages: msgs,
	}, func(chunk llm.StreamChunk) error {
		if chunk.Delta == "" {
			return nil
		}
		return queue.Publish(ctx, events.StreamChunk(turn.ID(), chunk.Delta))
	})
	stop()

	if err != nil {
		_ = turn.Discard()
		if errors.Is(err, provider.ErrStreamInterrupted) || streamCtx.Err() != nil {
			_ = queue.Publish(ctx, events.StreamInterrupted(turn.ID()))
		} else {
			_ = queue.Publish(ctx, events.Error(err))
		}
		<-turnDone
		return nil
	}

	_ = queue.Publish(ctx, events.StreamEnd(turn.ID(), resp))
	<-turnDone

	if err := turn.Finalize(ctx, resp.Message.Content); err != nil {
		return fmt.Errorf("recording assistant turn: %w", err)
	}

	// Persisting to disk happens off the chat loop.
	pool.Enqueue(worker.Job{Backend: c.backend, Persist: true})

	return nil
}

// consumeEvents renders tagged stream events and signals the REPL when a
// turn reaches a terminal event.
func consumeEvents(queue *events.Queue, turnDone chan<- struct{}) {
	for ev := range queue.C() {
		switch ev.Kind {
		case events.KindStreamStart:
			fmt.Print(assistantPrompt)
		case events.KindStreamChunk:
			fmt.Print(ev.Delta)
		case events.KindStreamEnd:
			fmt.Print("\n\n")
			turnDone <- struct{}{}
		case events.KindStreamInterrupted:
			fmt.Printf("\n  %s\n\n", dimStyle.Render("[interrupted]"))
			turnDone <- struct{}{}
		case events.KindError:
			fmt.Fprintf(os.Stderr, "\n  error: %v\n\n", ev.Err)
			turnDone <- struct{}{}
		}
	}
}

func (c *chatCommander) printStats(mgr *memory.Manager) {
	stats, err := mgr.Stats(c.backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return
	}
	fmt.Printf("  %d messages (%d user / %d assistant), %d embedded\n\n",
		stats.TotalMessages, stats.UserMessages, stats.AssistantMessages, stats.EmbeddedMessages)
}

func (c *chatCommander) printFacts(mgr *memory.Manager) {
	facts, err := mgr.PersonalFacts(c.backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return
	}
	if facts == "" {
		fmt.Printf("  %s\n\n", dimStyle.Render("No personal facts extracted yet."))
		return
	}
	fmt.Printf("  %s\n\n", strings.ReplaceAll(facts, "\n", "\n  "))
}

// joinSections concatenates non-empty prompt sections with a blank line.
func joinSections(sections ...string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
