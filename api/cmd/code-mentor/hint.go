package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"code-mentor/api/internal/hint"
	"code-mentor/api/internal/util"
)

var (
	hintFile        string
	hintLanguage    string
	hintLLM         string
	hintOutputFile  string
	hintCaptures    []string
	hintTimeout     time.Duration
	hintProblemName string
	hintDifficulty  string
	hintDescription string
	hintTopics      []string
)

var hintCmd = &cobra.Command{
	Use:   "hint",
	Short: "Ask for hints on a local solution file and print the JSON response",
	RunE:  runHint,
}

func init() {
	f := hintCmd.Flags()
	f.StringVarP(&hintFile, "file", "f", "", "Solution source file (required)")
	f.StringVarP(&hintLanguage, "language", "l", "", "Language (default: guessed from file extension)")
	f.StringVar(&hintLLM, "llm", "", "Engine: gemini or gpt (default: LLM_NAME)")
	f.StringVar(&hintOutputFile, "output-file", "", "File with the program output / error text")
	f.StringSliceVar(&hintCaptures, "capture", nil, "Workspace screenshot(s), last 5 are sent")
	f.DurationVar(&hintTimeout, "timeout", 70*time.Second, "Generation timeout")
	f.StringVar(&hintProblemName, "problem", "Two Sum", "Problem name")
	f.StringVar(&hintDifficulty, "difficulty", "Easy", "Problem difficulty")
	f.StringVar(&hintDescription, "description", "", "Problem statement")
	f.StringSliceVar(&hintTopics, "topics", nil, "Problem topics")
	_ = hintCmd.MarkFlagRequired("file")
}

func runHint(cmd *cobra.Command, _ []string) error {
	code, err := os.ReadFile(hintFile)
	if err != nil {
		return fmt.Errorf("read solution: %w", err)
	}
	req := hint.Request{
		Problem: hint.Problem{
			Name:        hintProblemName,
			Difficulty:  hintDifficulty,
			Topics:      hintTopics,
			Description: hintDescription,
		},
		UserCode: string(code),
		Language: hintLanguage,
	}
	if req.Language == "" {
		req.Language = languageOf(hintFile)
	}
	if hintOutputFile != "" {
		out, err := os.ReadFile(hintOutputFile)
		if err != nil {
			return fmt.Errorf("read output: %w", err)
		}
		req.CodeOutput = string(out)
	}
	for _, p := range hintCaptures {
		img, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
		req.CaptureData = append(req.CaptureData, util.EncodeDataURL(util.SniffMimeHTTP(img), img))
	}

	engine, err := newEngines(cfg).GetEngine(hintLLM)
	if err != nil {
		return err
	}
	svc := hint.NewService(engine, hint.WithLogger(logger.Named("hint")))

	ctx, cancel := context.WithTimeout(cmd.Context(), hintTimeout)
	defer cancel()
	resp := svc.Generate(ctx, req)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("hint: %s", resp.Error)
	}
	return nil
}

func languageOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".js", ".mjs":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".go":
		return "go"
	case ".java":
		return "java"
	case ".cpp", ".cc", ".cxx":
		return "cpp"
	case ".c":
		return "c"
	case ".rs":
		return "rust"
	default:
		return "python"
	}
}
