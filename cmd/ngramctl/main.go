/*
Package main implements ngramctl, the CLI entry point and IPC server launcher
for the ngramkit engines.

ngramctl can train a string or token engine from a corpus file and either
answer a single query, run an interactive REPL for testing, or start a
MessagePack IPC server over stdin/stdout for editor/tool integration.

# Usage

Train a StringFuzzy engine and answer one query:

	ngramctl -mode fuzzy -alphabet string -train words.txt -query appl

Run an interactive REPL against a StringPredict engine:

	ngramctl -mode predict -alphabet string -train corpus.txt -c

Start the IPC server (default when neither -query nor -c is given, string
alphabet only; token alphabet has no IPC surface, see -c / -query):

	ngramctl -mode fuzzy -train words.txt
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ngramkit/ngramkit/internal/logger"
	"github.com/ngramkit/ngramkit/internal/utils"
	"github.com/ngramkit/ngramkit/pkg/config"
	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/ipcserver"
	"github.com/ngramkit/ngramkit/pkg/stringfuzzy"
	"github.com/ngramkit/ngramkit/pkg/stringpredict"
	"github.com/ngramkit/ngramkit/pkg/tokenfuzzy"
	"github.com/ngramkit/ngramkit/pkg/tokenpredict"
)

const (
	version = "0.1.0"
	repoURL = "https://github.com/ngramkit/ngramkit"
)

type tok = core.StringToken

func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	mode := flag.String("mode", "fuzzy", "Engine family: fuzzy or predict")
	alphabet := flag.String("alphabet", "string", "Alphabet: string or token")
	trainPath := flag.String("train", "", "Path to a training corpus file (one entry per line)")
	query := flag.String("query", "", "Run a single query/prefix and exit")
	cliMode := flag.Bool("c", false, "Run an interactive REPL instead of the IPC server")
	debugMode := flag.Bool("d", false, "Enable debug logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig := loadAppConfig()
	log.Debugf("loaded config: string_fuzzy=%+v string_predict=%+v", appConfig.StringFuzzy, appConfig.StringPredict)

	if *trainPath != "" {
		log.Debugf("training from %s", utils.GetAbsolutePath(*trainPath))
	}
	corpus, err := readLines(*trainPath)
	if err != nil {
		log.Fatalf("failed to read training corpus: %v", err)
		os.Exit(1)
	}

	switch *alphabet {
	case "string":
		runString(*mode, corpus, *query, *cliMode)
	case "token":
		runToken(*mode, corpus, *query, *cliMode)
	default:
		log.Fatalf("unknown alphabet: %s (want string or token)", *alphabet)
		os.Exit(1)
	}
}

// loadAppConfig resolves ngramctl's config path through the platform path
// resolver and loads (or creates) the TOML config, falling back to built-in
// defaults if either step fails.
func loadAppConfig() *config.Config {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("failed to initialize path resolver: %v. Using built-in defaults...", err)
		return config.DefaultConfig()
	}

	configPath, err := resolver.GetConfigPath("ngramctl.toml")
	if err != nil {
		log.Warnf("failed to resolve config path: %v. Using built-in defaults...", err)
		return config.DefaultConfig()
	}

	appConfig, err := config.InitConfig(configPath)
	if err != nil {
		log.Warnf("failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return config.DefaultConfig()
	}
	return appConfig
}

func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func runString(mode string, corpus []string, query string, cli bool) {
	switch mode {
	case "fuzzy":
		e := stringfuzzy.NewDefault()
		if len(corpus) > 0 {
			e.Train(corpus)
		}
		switch {
		case query != "":
			printStringResults(e.SearchPure(query).GetResultArray())
		case cli:
			runREPL("fuzzy", func(q string) { printStringResults(e.SearchPure(q).GetResultArray()) })
		default:
			startIPCServer(e, stringpredict.NewDefault())
		}
	case "predict":
		e := stringpredict.NewDefault()
		if len(corpus) > 0 {
			e.Train(corpus)
		}
		switch {
		case query != "":
			printStringResults(e.PredictPure(query).GetResultArray())
		case cli:
			runREPL("predict", func(q string) { printStringResults(e.PredictPure(q).GetResultArray()) })
		default:
			startIPCServer(stringfuzzy.NewDefault(), e)
		}
	default:
		log.Fatalf("unknown mode: %s (want fuzzy or predict)", mode)
		os.Exit(1)
	}
}

func runToken(mode string, corpus []string, query string, cli bool) {
	tokenize := func(line string) []tok {
		fields := strings.Fields(line)
		out := make([]tok, len(fields))
		for i, f := range fields {
			out[i] = tok(f)
		}
		return out
	}

	var sequences []tokenfuzzy.Sequence[tok]
	var plain [][]tok
	for _, line := range corpus {
		seq := tokenize(line)
		sequences = append(sequences, tokenfuzzy.Sequence[tok](seq))
		plain = append(plain, seq)
	}

	switch mode {
	case "fuzzy":
		e := tokenfuzzy.NewDefault[tok]()
		e.Train(sequences)
		switch {
		case query != "":
			printTokenFuzzyResults(e.SearchPure(tokenfuzzy.Sequence[tok](tokenize(query))).GetResultArray())
		case cli:
			runREPL("fuzzy", func(q string) {
				printTokenFuzzyResults(e.SearchPure(tokenfuzzy.Sequence[tok](tokenize(q))).GetResultArray())
			})
		default:
			log.Warn("token alphabet has no IPC server surface; use -query or -c")
		}
	case "predict":
		e := tokenpredict.NewDefault[tok]()
		e.Train(plain)
		switch {
		case query != "":
			printTokenPredictResults(e.PredictPure(tokenize(query)).GetResultArray())
		case cli:
			runREPL("predict", func(q string) {
				printTokenPredictResults(e.PredictPure(tokenize(q)).GetResultArray())
			})
		default:
			log.Warn("token alphabet has no IPC server surface; use -query or -c")
		}
	default:
		log.Fatalf("unknown mode: %s (want fuzzy or predict)", mode)
		os.Exit(1)
	}
}

func startIPCServer(fuzzy *stringfuzzy.Engine, predict *stringpredict.Engine) {
	log.Debug("spawning IPC server")
	srv := ipcserver.NewServer(fuzzy, predict, os.Stdin, os.Stdout, logger.Default("ipcserver"))
	showStartupInfo()
	if err := srv.Start(); err != nil {
		log.Fatalf("IPC server error: %v", err)
		os.Exit(1)
	}
}

func runREPL(label string, handle func(string)) {
	log.Print("ngramkit CLI [" + label + "]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type something and press Enter (Ctrl+C to exit):")
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		handle(line)
	}
}

func printStringResults(entries []core.Entry[string]) {
	for _, e := range entries {
		fmt.Printf("%-20s %.4f\n", e.Value, e.Score)
	}
}

func printTokenFuzzyResults(entries []core.Entry[tokenfuzzy.Sequence[tok]]) {
	for _, e := range entries {
		parts := make([]string, len(e.Value))
		for i, t := range e.Value {
			parts[i] = t.String()
		}
		fmt.Printf("%-40s %.4f\n", strings.Join(parts, " "), e.Score)
	}
}

func printTokenPredictResults(entries []core.Entry[tok]) {
	for _, e := range entries {
		fmt.Printf("%-20s %.4f\n", e.Value.String(), e.Score)
	}
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{ReportCaller: false, ReportTimestamp: false})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ ngramctl ] variable-order n-gram fuzzy match & prediction")
	l.Print("", "version", version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", repoURL)
}

func showStartupInfo() {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" ngramctl ")
	println("===========")
	log.Infof("Version: %s", version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
