package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/popov-vn/ai-agent/internal/config"
	"github.com/popov-vn/ai-agent/internal/format"
	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/llm"
	"github.com/popov-vn/ai-agent/internal/pipeline"
	"github.com/popov-vn/ai-agent/internal/profiler"
)

var (
	recommendPhoto     string
	recommendRecipient string
	recommendJSON      bool
)

// recommendCmd runs one pipeline invocation
var recommendCmd = &cobra.Command{
	Use:   "recommend [description...]",
	Short: "Recommend gifts for a person description",
	Long: `Run the full pipeline: catalog generation, persona evaluations and voting.

The description is taken from the arguments, or from stdin when none are given.
With --photo the image is described by the configured profiler backend and the
description is appended to the text.`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendPhoto, "photo", "", "Path to a photo of the person")
	recommendCmd.Flags().StringVar(&recommendRecipient, "recipient", "", "Recipient type, overrides keyword detection")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Print the raw result as JSON")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		data, err := readAllLimited(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read description: %w", err)
		}
		text = string(data)
	}
	info, err := gift.ValidatePersonInfo(text)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := cliLogger()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := llm.NewFromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}

	req := pipeline.Request{PersonInfo: info, Recipient: recommendRecipient}

	var enricher pipeline.Enricher
	if recommendPhoto != "" {
		photo, err := os.ReadFile(recommendPhoto)
		if err != nil {
			return fmt.Errorf("read photo: %w", err)
		}
		req.Photo, req.PhotoMIME = photo, http.DetectContentType(photo)

		prof, err := profiler.NewFromConfig(ctx, cfg, log)
		if err != nil {
			return err
		}
		if prof == nil {
			log.Warn("profiler.backend is none, ignoring --photo")
		} else {
			enricher = prof
		}
	}

	svc, err := pipeline.NewFromConfig(cfg.Pipeline, client, enricher, log)
	if err != nil {
		return err
	}

	res := svc.Run(ctx, req)

	out := cmd.OutOrStdout()
	if recommendJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprint(out, format.Text(res))
	return err
}
