/*
Package main implements the wikitalk IPC server and CLI application.

Wikitalk reconstructs discussion structure from talk-page wikitext and
computes safe page-code mutations for new comments, alongside a per-trigger
autocomplete engine for mentions, wikilinks, templates and tags.

# Usage

Start the msgpack IPC server with default settings:

	wikitalk

Run the interactive suggest CLI against roster files:

	wikitalk -c -rosters /path/to/rosters

Analyze where new topics go on a saved talk page:

	wikitalk -analyze Talk_page.wiki -title "Talk:Example"

Insert a rendered comment into a saved page and print the new code:

	wikitalk -analyze Talk_page.wiki -insert comment.wiki

# Configuration

Runtime configuration is a TOML file holding server limits, the wiki API
endpoint, per-site placement overrides, signature timestamp layouts, and
the per-trigger autocomplete thresholds:

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60

	[autocomplete.mention]
	marker = "@"
	max_spaces = 5
	char_blacklist = "#<>[]|{}/@:"

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. A suggest
request may yield two responses for one id: the synchronous local pass and
a later remote pass, the second marked final. Placement and insert
requests operate on client-supplied wikitext and answer once.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/feldtn/wikitalk/internal/cli"
	"github.com/feldtn/wikitalk/internal/logger"
	"github.com/feldtn/wikitalk/internal/utils"
	"github.com/feldtn/wikitalk/pkg/autocomplete"
	"github.com/feldtn/wikitalk/pkg/config"
	"github.com/feldtn/wikitalk/pkg/mwapi"
	"github.com/feldtn/wikitalk/pkg/page"
	"github.com/feldtn/wikitalk/pkg/roster"
	"github.com/feldtn/wikitalk/pkg/server"
	"github.com/feldtn/wikitalk/pkg/timestamp"
)

const (
	Version = "0.4.0"
	AppName = "wikitalk"
	gh      = "https://github.com/feldtn/wikitalk"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to a config.toml (default: ~/.config/wikitalk)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run suggest CLI -- useful for testing and debugging")
	rosterDir := flag.String("rosters", "", "Directory of candidate-name rosters (.txt or .bin)")
	remote := flag.Bool("remote", false, "Enable remote lookups against the configured wiki API")
	defaultTrigger := flag.String("trigger", "mention", "Default trigger channel for CLI queries")
	analyzeFile := flag.String("analyze", "", "Analyze topic placement of a wikitext file")
	insertFile := flag.String("insert", "", "Insert this comment file into the analyzed page, print new code")
	title := flag.String("title", "Talk:Example", "Page title used for namespace and overrides")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetDefault(logger.NewWithConfig(AppName, log.DebugLevel, false, true, log.TextFormatter))
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", activePath)

	parser, err := timestamp.NewParser(cfg.Timestamps.Layouts)
	if err != nil {
		log.Fatalf("Failed to build timestamp parser: %v", err)
	}

	if *analyzeFile != "" {
		runAnalyze(cfg, parser, *analyzeFile, *insertFile, *title)
		return
	}

	engine := autocomplete.NewEngine(cfg.Triggers)

	if *rosterDir != "" {
		rosters, err := roster.LoadDir(*rosterDir)
		if err != nil {
			log.Fatalf("Failed to load rosters: %v", err)
		}
		for trigger, names := range rosters {
			engine.Seed(trigger, names)
		}
	}

	if *remote {
		client := mwapi.NewClient(cfg.API)
		engine.SetLookup("mention", client.LookupUserNames)
		engine.SetLookup("wikilink", client.LookupPageTitles)
		engine.SetLookup("template", client.LookupTemplateTitles)
		log.Debugf("Remote lookups enabled against %s", cfg.API.URL)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(engine, *defaultTrigger, cfg.Server.MinPrefix, cfg.Server.MaxPrefix)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, parser, cfg)
	showStartupInfo(activePath)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runAnalyze reports placement for a saved page, optionally inserting a
// comment file and printing the mutated code to stdout.
func runAnalyze(cfg *config.Config, parser *timestamp.Parser, pagePath, commentPath, title string) {
	code, err := os.ReadFile(pagePath)
	if err != nil {
		log.Fatalf("Failed to read page file: %v", err)
	}

	pc, err := page.New(title)
	if err != nil {
		log.Fatalf("Bad title %q: %v", title, err)
	}
	pc.SeedLocal(string(code))

	onTop, err := pc.AnalyzePlacement(parser, page.ConfigOverride(cfg.Placement))
	if err != nil {
		log.Fatalf("Placement analysis failed: %v", err)
	}
	log.Infof("%q: new topics on top = %v, first section at byte %d", title, onTop, pc.FirstSectionStart())

	if commentPath == "" {
		return
	}
	comment, err := os.ReadFile(commentPath)
	if err != nil {
		log.Fatalf("Failed to read comment file: %v", err)
	}
	m, err := pc.InsertComment(string(comment))
	if err != nil {
		log.Fatalf("Insert failed: %v", err)
	}
	if !page.VerifyInsertOnly(string(code), m.NewCode) {
		log.Fatalf("Refusing mutation: it would remove existing content")
	}
	stats := page.Stats(string(code), m.NewCode)
	log.Debugf("Mutation adds %d chars, keeps %d", stats.Inserted, stats.Unchanged)
	fmt.Print(m.NewCode)
}

func printVersion() {
	vlog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	vlog.SetStyles(styles)

	vlog.Print("")
	vlog.Print("[ wikitalk ] talk pages without the raw wikitext")
	vlog.Print("", "version", Version)
	vlog.Print("")
	vlog.Print("use -h or --help to see available options")
	vlog.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(configPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("==========")
	println(" wikitalk ")
	println("==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("config: ( %s )", utils.GetAbsolutePath(configPath))
	log.Info("status: ready")
	println("==========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
