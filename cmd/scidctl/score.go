package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scid-pd-engine/internal/catalog"
	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/service"
)

// ScoreInput is an interview transcript: the modules in administration order and the
// answers recorded for each.
type ScoreInput struct {
	ClinicianNotes string        `json:"clinician_notes" yaml:"clinician_notes"`
	Modules        []ModuleInput `json:"modules" yaml:"modules"`
}

// ModuleInput holds the answers for one module.
type ModuleInput struct {
	ModuleID  string            `json:"module_id" yaml:"module_id"`
	Responses map[string]Answer `json:"responses" yaml:"responses"`
}

// Answer is one recorded answer.
type Answer struct {
	Value    any      `json:"value" yaml:"value"`
	OnsetAge *int     `json:"onset_age,omitempty" yaml:"onset_age,omitempty"`
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	Notes    string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (m ModuleInput) responses() domain.Responses {
	out := make(domain.Responses, len(m.Responses))
	for id, a := range m.Responses {
		out[id] = domain.Response{
			QuestionID: id,
			Value:      a.Value,
			OnsetAge:   a.OnsetAge,
			Examples:   a.Examples,
			Notes:      a.Notes,
		}
	}
	return out
}

// readScoreInput decodes a transcript; .yaml and .yml files are read as YAML, anything
// else as JSON.
func readScoreInput(path string) (*ScoreInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}

	input := &ScoreInput{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, input)
	default:
		err = json.Unmarshal(data, input)
	}
	if err != nil {
		return nil, fmt.Errorf("decode responses %s: %w", path, err)
	}
	if len(input.Modules) == 0 {
		return nil, fmt.Errorf("%s lists no modules", path)
	}
	return input, nil
}

func newScoreCommand(cli *CLI) *cobra.Command {
	var (
		format      string
		catalogFile string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "score <responses.json>",
		Short: "Run a complete assessment from recorded answers and print the profile",
		Long: `score administers every module listed in a transcript file, in order, completes the
assessment and prints the clinical report (or the profile as JSON with --format json).
With --save the completed profile is written to the configured store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json":
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			input, err := readScoreInput(args[0])
			if err != nil {
				return err
			}

			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			logger := cli.logger(cfg.Logging)

			if catalogFile == "" {
				catalogFile = cfg.Catalog.Path
			}
			cat, err := catalog.Load(catalogFile)
			if err != nil {
				return err
			}

			profile, err := score(cat, input, service.NewAdministrator(logger))
			if err != nil {
				return err
			}

			if save {
				if err := saveProfile(cmd.Context(), cfg, profile); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved profile %s\n", profile.ID)
			}

			return writeProfile(cmd.OutOrStdout(), profile, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().StringVarP(&catalogFile, "catalog", "f", "", "catalog file (default: configured or embedded catalog)")
	cmd.Flags().BoolVar(&save, "save", false, "persist the completed profile to the configured store")
	return cmd
}

// score drives one administrator through the transcript.
func score(cat domain.ModuleCatalog, input *ScoreInput, admin *service.Administrator) (*domain.Profile, error) {
	if _, err := admin.Start(); err != nil {
		return nil, err
	}

	for _, m := range input.Modules {
		module, err := cat.Module(m.ModuleID)
		if err != nil {
			return nil, err
		}
		if _, err := admin.AdministerModule(module, m.responses()); err != nil {
			return nil, err
		}
	}

	if input.ClinicianNotes != "" {
		if err := admin.SetClinicianNotes(input.ClinicianNotes); err != nil {
			return nil, err
		}
	}
	return admin.Complete()
}

func writeProfile(w io.Writer, profile *domain.Profile, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}
	_, err := io.WriteString(w, service.NewReportGenerator().Render(profile))
	return err
}

func saveProfile(ctx context.Context, cfg *domain.Config, profile *domain.Profile) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveProfile(ctx, profile)
}
