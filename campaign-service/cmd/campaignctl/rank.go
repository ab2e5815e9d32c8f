package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/lifecycle"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/service"
)

type rankOptions struct {
	input    string
	today    string
	status   string
	timezone string
	asJSON   bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campaignctl",
		Short:         "Inspect adoption campaigns offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRankCmd())
	return root
}

func newRankCmd() *cobra.Command {
	opts := rankOptions{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Classify and order campaign records from a JSON or YAML export",
		Long: `rank reads an array of {id, fields} campaign records, derives each
campaign's phase for the given day and prints them in display order.
Use --input - to read JSON or YAML from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "records file (.json, .yaml, .yml) or - for stdin")
	cmd.Flags().StringVar(&opts.today, "today", "", "evaluate as of this day (YYYY-MM-DD); defaults to the current day")
	cmd.Flags().StringVar(&opts.status, "status", "", "only show campaigns in this phase (Active, Upcoming, Closed)")
	cmd.Flags().StringVar(&opts.timezone, "tz", "America/Mexico_City", "zone campaign dates are read in")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print campaign views as JSON")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runRank(cmd *cobra.Command, opts rankOptions) error {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("load --tz: %w", err)
	}
	today := time.Now().In(loc)
	if opts.today != "" {
		t, ok := lifecycle.NormalizeDate(opts.today, loc)
		if !ok {
			return fmt.Errorf("invalid --today %q", opts.today)
		}
		today = t
	}
	if opts.status != "" {
		if _, ok := lifecycle.ParsePhase(opts.status); !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "unknown status %q, showing every campaign\n", opts.status)
		}
	}

	records, err := readRecords(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}
	listing := service.RankRecords(today, loc, records, nil, opts.status)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listing.Campaigns)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPHASE\tSTART\tAVAILABLE\tNAME")
	for _, v := range listing.Campaigns {
		start := "-"
		if v.StartDate != nil {
			start = *v.StartDate
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", v.ID, v.Status, start, v.AvailableLetters, v.Name)
	}
	return tw.Flush()
}

func readRecords(stdin io.Reader, path string) ([]models.CampaignRecord, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var records []models.CampaignRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &records)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &records)
	default:
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			err = json.Unmarshal(raw, &records)
		} else {
			err = yaml.Unmarshal(raw, &records)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return nil, fmt.Errorf("record %d has no id", i)
		}
		if rec.Fields == nil {
			records[i].Fields = map[string]any{}
		}
		for k, v := range records[i].Fields {
			if t, ok := v.(time.Time); ok && isBareDate(t) {
				records[i].Fields[k] = t.Format("2006-01-02")
			}
		}
	}
	return records, nil
}

// isBareDate reports whether t came from an unquoted YAML date such as
// 2025-06-01, which decodes as UTC midnight and must stay a calendar day.
func isBareDate(t time.Time) bool {
	h, m, s := t.Clock()
	return t.Location() == time.UTC && h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
