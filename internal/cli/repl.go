// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/gptwrap/internal/config"
	"github.com/jeranaias/gptwrap/internal/conversation"
	"github.com/jeranaias/gptwrap/internal/model"
	"github.com/jeranaias/gptwrap/internal/settings"
	"github.com/jeranaias/gptwrap/internal/ui/styles"
	"github.com/jeranaias/gptwrap/internal/util"
)

const (
	replPrompt  = "you> "
	replLoading = "Loading..."
	historyFile = "chat_history"
)

var (
	replTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	replLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Purple)
	replInfoStyle  = lipgloss.NewStyle().Foreground(styles.TextMuted)
	replErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
)

const replHelp = `Commands:
  /help             Show this help
  /new              Start a new conversation
  /key              Set the API key (input is hidden)
  /model [id]       Show or set the model
  /system [text]    Set the system message; no text clears it
  /temp <value>     Set the temperature
  /tokens <n>       Set the max output tokens
  /top_p <value>    Set top_p
  /settings         Show the current settings
  /quit             Exit (Ctrl+D also exits)

Ctrl+C cancels a request that is waiting for a reply.`

func newChatCommand(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat in line mode",
		Long:  "Chat in line mode with input history and slash commands. Type /help once started.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), rt.cfg)
		},
	}
}

// =============================================================================
// REPL
// =============================================================================

// repl handles one line of input at a time. It is separate from the line
// editor so it can be driven without a terminal.
type repl struct {
	ctrl   *conversation.Controller
	out    io.Writer
	render func(string) string

	// readSecret prompts without echo
	readSecret func(prompt string) (string, error)
}

// handle runs a slash command or sends input. It returns true when the
// session should end. Messages are sent exactly as typed; only commands are
// trimmed.
func (r *repl) handle(ctx context.Context, input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	if !strings.HasPrefix(trimmed, "/") {
		r.send(ctx, input)
		return false
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/help", "/h":
		r.println(replHelp)
	case "/quit", "/q", "/exit":
		return true
	case "/new":
		if r.ctrl.NewConversation() {
			r.info("Started a new conversation.")
		}
	case "/key":
		r.setKey()
	case "/model":
		r.setModel(arg)
	case "/system":
		r.update(func(s *settings.Settings) error {
			s.SystemInstruction = arg
			return nil
		}, "System message updated.")
	case "/temp":
		r.update(func(s *settings.Settings) error {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return errors.Errorf("invalid temperature %q", arg)
			}
			s.Temperature = v
			return nil
		}, "Temperature updated.")
	case "/tokens":
		r.update(func(s *settings.Settings) error {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return errors.Errorf("invalid token count %q", arg)
			}
			s.MaxOutputTokens = v
			return nil
		}, "Max tokens updated.")
	case "/top_p":
		r.update(func(s *settings.Settings) error {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return errors.Errorf("invalid top_p %q", arg)
			}
			s.TopP = v
			return nil
		}, "Top P updated.")
	case "/settings":
		r.printSettings()
	default:
		r.errorf("Unknown command %s. Type /help for commands.", name)
	}
	return false
}

func (r *repl) send(ctx context.Context, input string) {
	r.info(replLoading)
	sent, err := r.ctrl.Send(ctx, input)
	if !sent {
		return
	}
	if err != nil {
		r.errorf("Error: %s", r.ctrl.LastError())
		return
	}
	reply, _ := r.ctrl.LastReply()
	r.println(replLabelStyle.Render("Assistant"))
	r.println(r.render(reply))
}

// update edits a copy of the settings and saves it with the controller's
// save semantics.
func (r *repl) update(edit func(*settings.Settings) error, ok string) {
	s := r.ctrl.Settings()
	if err := edit(&s); err != nil {
		r.errorf("%v", err)
		return
	}
	if err := r.ctrl.SaveSettings(s); err != nil {
		r.errorf("Error: %s", r.ctrl.LastError())
		return
	}
	r.info(ok)
}

func (r *repl) setKey() {
	if r.readSecret == nil {
		r.errorf("Cannot read a hidden value here.")
		return
	}
	key, err := r.readSecret("API key: ")
	if err != nil {
		r.errorf("Key not changed: %v", err)
		return
	}
	r.update(func(s *settings.Settings) error {
		s.Credential = strings.TrimSpace(key)
		return nil
	}, "API key updated.")
}

func (r *repl) setModel(id string) {
	if id == "" {
		current := r.ctrl.Settings().Model
		r.println("Current model: " + model.GetModelInfo(current).Label())
		for _, m := range model.Models {
			r.println(replInfoStyle.Render("  " + util.PadRight(m.ID, 16) + " " + m.Description))
		}
		return
	}
	r.update(func(s *settings.Settings) error {
		s.Model = id
		return nil
	}, "Model set to "+model.GetModelInfo(id).Label()+".")
}

func (r *repl) printSettings() {
	s := r.ctrl.Settings()
	key := "not set"
	if s.HasCredential() {
		key = "set (fingerprint " + s.CredentialFingerprint() + ")"
	}
	rows := [][2]string{
		{"API key", key},
		{"Model", model.GetModelInfo(s.Model).Label()},
		{"Response format", s.ResponseFormat.String()},
		{"Temperature", strconv.FormatFloat(s.Temperature, 'f', -1, 64)},
		{"Max tokens", strconv.Itoa(s.MaxOutputTokens)},
		{"Top P", strconv.FormatFloat(s.TopP, 'f', -1, 64)},
		{"Store", strconv.FormatBool(s.PersistOnServer)},
		{"Variables", s.Variables},
		{"Tools", s.Tools},
		{"System message", s.SystemInstruction},
	}

	width := 0
	for _, row := range rows {
		width = max(width, util.StringWidth(row[0]))
	}
	for _, row := range rows {
		r.println(util.PadRight(row[0]+":", width+2) + row[1])
	}
}

func (r *repl) println(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *repl) info(s string) {
	fmt.Fprintln(r.out, replInfoStyle.Render(s))
}

func (r *repl) errorf(format string, args ...interface{}) {
	fmt.Fprintln(r.out, replErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// =============================================================================
// LINE MODE SESSION
// =============================================================================

// runChat reads lines until /quit, Ctrl+C at the prompt, or EOF.
func runChat(ctx context.Context, cfg *config.Config) error {
	a := newApp(cfg)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := chatHistoryPath()
	loadHistory(line, histPath)
	defer saveHistory(line, histPath)

	r := &repl{
		ctrl:       a.ctrl,
		out:        os.Stdout,
		render:     markdownRenderer(cfg, isTerminal(os.Stdout)),
		readSecret: line.PasswordPrompt,
	}

	r.println(replTitleStyle.Render("GPT Wrapper") + replInfoStyle.Render(" "+model.GetModelInfo(a.ctrl.Settings().Model).Label()))
	if !a.ctrl.Settings().HasCredential() {
		r.info("No API key configured. Use /key to set one.")
	}
	r.info("Type /help for commands.")

	for {
		input, err := line.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				r.println("")
				return nil
			}
			return errors.Wrap(err, "failed to read input")
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		if !strings.HasPrefix(strings.TrimSpace(input), "/key") {
			line.AppendHistory(input)
		}

		sendCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		quit := r.handle(sendCtx, input)
		stop()
		if quit {
			return nil
		}
	}
}

// markdownRenderer renders replies with glamour on a terminal and returns
// them unchanged otherwise.
func markdownRenderer(cfg *config.Config, tty bool) func(string) string {
	plain := func(s string) string { return s }
	if !tty {
		return plain
	}

	width := cfg.UI.WordWrap
	if width <= 0 {
		width = terminalWidth() - 4
	}
	theme := styles.NewTheme(cfg.UI.Theme)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.MarkdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer unavailable")
		return plain
	}
	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func chatHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, historyFile)
}

func loadHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("failed to read chat history")
	}
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("failed to write chat history")
	}
}
