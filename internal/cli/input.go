// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feldtn/wikitalk/pkg/autocomplete"
)

// InputHandler processes user input from stdin, routing each line to the
// matching trigger channel and printing the suggestions.
type InputHandler struct {
	engine          *autocomplete.Engine
	defaultTrigger  string
	minPrefixLength int
	maxPrefixLength int
	requestCount    int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine *autocomplete.Engine, defaultTrigger string, minLength, maxLength int) *InputHandler {
	return &InputHandler{
		engine:          engine,
		defaultTrigger:  defaultTrigger,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin, and passes
// the trimmed input to handleInput() for processing. A line may start
// with "trigger:" to pick a channel; otherwise the default channel is
// used. Loop terminates if an error occurs while reading from stdin.
func (h *InputHandler) Start() error {
	log.Print("wikitalk suggest CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a prefix (optionally 'mention:Ja', 'template:cite') and press Enter (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput processes a single query. It validates the prefix length,
// runs the local pass, and waits briefly for a remote pass before
// printing whichever delivery arrived last.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	trigger := h.defaultTrigger
	prefix := line
	if i := strings.Index(line, ":"); i > 0 {
		if _, ok := h.engine.Trigger(line[:i]); ok {
			trigger = line[:i]
			prefix = line[i+1:]
		}
	}

	if len(prefix) < h.minPrefixLength {
		log.Errorf("Prefix too short: %s", prefix)
		return
	}
	if len(prefix) > h.maxPrefixLength {
		log.Errorf("Prefix too long: %s", prefix)
		return
	}

	start := time.Now()
	log.Debug("Processing request for", "trigger", trigger, "prefix", prefix)

	type delivery struct {
		items []string
		final bool
	}
	results := make(chan delivery, 2)
	h.engine.Query(context.Background(), trigger, prefix, func(items []string, final bool) {
		results <- delivery{items, final}
	})

	var suggestions []string
	select {
	case d := <-results:
		suggestions = d.items
		if !d.final {
			// give the remote pass a moment to land
			select {
			case d = <-results:
				suggestions = d.items
			case <-time.After(400 * time.Millisecond):
			}
		}
	default:
	}

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	log.Printf("Found %d suggestions for '%s:%s':", len(suggestions), trigger, prefix)
	for i, s := range suggestions {
		snippet, _ := h.engine.Insertable(trigger, s)
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", s)
		log.Printf("%2d. %-40s -> %s", i+1, clWord, snippet)
	}
}
