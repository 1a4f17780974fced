// Command cli exercises the extraction pipeline offline: feed it a
// transcript and an assistant reply and it prints what the server
// would record, without touching any backing store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ntarasov/finchat/internal/category"
	"github.com/ntarasov/finchat/internal/chat"
	"github.com/ntarasov/finchat/internal/describe"
	"github.com/ntarasov/finchat/internal/domain"
	"github.com/ntarasov/finchat/internal/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(log)
	case "classify":
		runClassify(log)
	case "normalize":
		runNormalize(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finchat CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract    Run confirmation extraction over a transcript file")
	fmt.Println("  classify   Classify free text into a canonical category")
	fmt.Println("  normalize  Normalize a category-shaped value")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// transcriptFile is the JSON shape the extract command consumes.
type transcriptFile struct {
	Messages []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"messages"`
	AssistantReply string `json:"assistant_reply"`
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	file := fs.String("file", "", "Path to a transcript JSON file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transcript file")
	}

	var tf transcriptFile
	if err := json.Unmarshal(data, &tf); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse transcript file")
	}

	transcript := make(domain.Transcript, 0, len(tf.Messages))
	for _, m := range tf.Messages {
		transcript = append(transcript, domain.ConversationTurn{
			Role: domain.Role(m.Role),
			Text: m.Text,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	extractor := chat.NewExtractor(describe.NewComposer(nil))
	tx := extractor.Extract(ctx, transcript, tf.AssistantReply)
	if tx == nil {
		fmt.Println("No transaction confirmed by this reply.")
		return
	}

	out, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode transaction")
	}
	fmt.Println(string(out))
}

func runClassify(log zerolog.Logger) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	text := fs.String("text", "", "Free descriptive text")
	txType := fs.String("type", "expense", "Transaction type: income or expense")
	fs.Parse(os.Args[2:])

	if *text == "" {
		log.Fatal().Msg("Error: --text is required")
	}

	t := domain.TransactionType(*txType)
	if !t.Valid() {
		log.Fatal().Str("type", *txType).Msg("Type must be income or expense")
	}

	fmt.Println(category.Classify(*text, t))
}

func runNormalize(log zerolog.Logger) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	value := fs.String("value", "", "Category-shaped value to normalize")
	fs.Parse(os.Args[2:])

	if *value == "" {
		log.Fatal().Msg("Error: --value is required")
	}

	normalized, known := category.Resolve(*value)
	if known {
		fmt.Println(normalized)
	} else {
		fmt.Printf("%s (not in the canonical set)\n", normalized)
	}
}
