package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bot80-alt/certa/internal/adapters"
	"github.com/bot80-alt/certa/internal/model"
	"github.com/bot80-alt/certa/internal/pipeline"
	"github.com/bot80-alt/certa/internal/render"
)

var (
	outJSON      string
	outMD        string
	checkTimeout time.Duration
	noFooter     bool
	textFile     string
	textTitle    string
	mediaType    string
)

// checkCmd groups the single-input commands
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fact-check one article, text, or audio file",
	Long: `Check runs one input through the pipeline:
- normalize it to plain text (fetch and extract, pass through, or transcribe)
- search for evidence and score each claim with the LLM
- explain the findings and print a summary

Example:
  certa check url https://example.com/news/article
  certa check text "The Eiffel Tower was completed in 1889."
  certa check audio interview.mp3 --json report.json --md report.md`,
}

var checkURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Fact-check a web article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, adapters.Input{Modality: model.ModalityURL, URL: args[0]})
	},
}

var checkTextCmd = &cobra.Command{
	Use:   "text [text...]",
	Short: "Fact-check raw text (from args, --file, or stdin with -)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd.InOrStdin(), args, textFile)
		if err != nil {
			return err
		}
		return runCheck(cmd, adapters.Input{Modality: model.ModalityText, Text: text, Title: textTitle})
	},
}

var checkAudioCmd = &cobra.Command{
	Use:   "audio <file>",
	Short: "Transcribe and fact-check an audio recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
		mt := mediaType
		if mt == "" {
			mt = adapters.MediaTypeForFilename(path)
		}
		return runCheck(cmd, adapters.Input{
			Modality:  model.ModalityAudio,
			Audio:     data,
			MediaType: mt,
			Filename:  filepath.Base(path),
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkURLCmd, checkTextCmd, checkAudioCmd)

	flags := checkCmd.PersistentFlags()
	flags.StringVar(&outJSON, "json", "", "write the JSON envelope to this path")
	flags.StringVar(&outMD, "md", "", "write a Markdown report to this path")
	flags.DurationVar(&checkTimeout, "timeout", 3*time.Minute, "overall check timeout")
	flags.BoolVar(&noFooter, "no-footer", false, "omit the footer in Markdown reports")

	checkTextCmd.Flags().StringVarP(&textFile, "file", "f", "", "read text from a file")
	checkTextCmd.Flags().StringVar(&textTitle, "title", "", "title passed to the oracle as context")
	checkAudioCmd.Flags().StringVar(&mediaType, "media-type", "", "audio media type (default: from the file extension)")
}

func runCheck(cmd *cobra.Command, in adapters.Input) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	if verbose {
		fmt.Fprintf(stderr, "⚙️  Checking %s input with %s/%s\n", in.Modality, cfg.Oracle.LLM.Provider, cfg.Oracle.LLM.Model)
	}

	p, err := pipeline.NewFromConfig(ctx, cfg, logOutput(), nil)
	if err != nil {
		return err
	}

	result := p.Check(ctx, in)

	if verbose && result.OK() {
		fmt.Fprintf(stderr, "✓ %d claims checked\n", len(result.Report.Claims))
		if result.TranscribedText != "" {
			fmt.Fprintf(stderr, "✓ Transcribed %d characters\n", len(result.TranscribedText))
		}
		fmt.Fprintln(stderr)
	}

	renderer := render.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.WriteFiles(result, outJSON, outMD); err != nil {
		return err
	}
	if verbose {
		for _, path := range []string{outJSON, outMD} {
			if path != "" {
				fmt.Fprintf(stderr, "✓ Wrote %s\n", path)
			}
		}
	}
	renderer.RenderSummary(cmd.OutOrStdout(), result)

	if !result.OK() {
		return fmt.Errorf("check failed: %s", result.Message)
	}
	return nil
}

// readText takes text from a file, stdin ("-"), or the joined args
func readText(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", fmt.Errorf("no text given (pass it as arguments, --file, or - for stdin)")
	}
}
