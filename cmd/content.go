package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s0up4200/snapctl/snapapi"
)

var (
	extractType      string
	extractSelector  string
	extractMaxLength int
	extractWaitFor   string
	extractJSON      bool

	analyzePrompt      string
	analyzeProvider    string
	analyzeModel       string
	analyzeProviderKey string
	analyzeSchemaFile  string
	analyzeJSON        bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract content from a page",
	Long: `Extract page content as markdown, text, html, article, links, images,
metadata or structured data.`,
	Example: `  snapctl extract https://example.com
  snapctl extract https://example.com --type links --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	fl := extractCmd.Flags()
	fl.StringVarP(&extractType, "type", "t", string(snapapi.DefaultExtractType), "content type to extract")
	fl.StringVar(&extractSelector, "selector", "", "limit extraction to an element")
	fl.IntVar(&extractMaxLength, "max-length", 0, "truncate content to this many characters")
	fl.StringVar(&extractWaitFor, "wait-for", "", "wait for a selector before extracting")
	fl.BoolVar(&extractJSON, "json", false, "print the full JSON response")
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts := snapapi.ExtractOptions{
		URL:      args[0],
		Type:     snapapi.ExtractType(extractType),
		Selector: extractSelector,
		WaitFor:  extractWaitFor,
	}
	if extractMaxLength > 0 {
		opts.MaxLength = snapapi.Int(extractMaxLength)
	}

	result, err := client.Extract(cmd.Context(), opts)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("type", string(result.Type)).
		Str("content_kind", result.Content.Kind().String()).
		Bool("cached", result.Cached).
		Msg("Extraction finished")

	if extractJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	return printPayload(cmd.OutOrStdout(), result.Content)
}

// printPayload prints text content verbatim and anything else as JSON
func printPayload(w io.Writer, p snapapi.Payload) error {
	if text, ok := p.Text(); ok {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	if p.IsZero() {
		return nil
	}
	return printJSON(w, p)
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Ask an AI provider about a page",
	Example: `  snapctl analyze https://example.com --prompt "Summarize this page" --provider openai --provider-key $OPENAI_API_KEY
  snapctl analyze https://shop.example --prompt "List the products" --schema products.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	fl := analyzeCmd.Flags()
	fl.StringVarP(&analyzePrompt, "prompt", "p", "", "question to ask about the page")
	fl.StringVar(&analyzeProvider, "provider", "", "openai or anthropic")
	fl.StringVar(&analyzeModel, "model", "", "provider model name")
	fl.StringVar(&analyzeProviderKey, "provider-key", "", "provider API key")
	fl.StringVar(&analyzeSchemaFile, "schema", "", "JSON schema file or s3://bucket/key for a structured answer")
	fl.BoolVar(&analyzeJSON, "json", false, "print the full JSON response")
	_ = analyzeCmd.MarkFlagRequired("prompt")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts := snapapi.AnalyzeOptions{
		URL:      args[0],
		Prompt:   analyzePrompt,
		Provider: snapapi.Provider(analyzeProvider),
		Model:    analyzeModel,
		APIKey:   analyzeProviderKey,
	}

	if analyzeSchemaFile != "" {
		raw, err := readInput(cmd.Context(), analyzeSchemaFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(raw), &opts.JSONSchema); err != nil {
			return fmt.Errorf("invalid JSON schema in %s: %w", analyzeSchemaFile, err)
		}
	}

	result, err := client.Analyze(cmd.Context(), opts)
	if err != nil {
		return err
	}

	event := logger.Debug().Str("model", result.Model)
	if result.TokensUsed != nil {
		event = event.Int("tokens", *result.TokensUsed)
	}
	event.Msg("Analysis finished")

	if analyzeJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	return printPayload(cmd.OutOrStdout(), result.Result)
}
