package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Landscape/internal/application/assetsync"
	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// AssetPublisher sends asset.synced events and owns its connection.
type AssetPublisher interface {
	assetsync.BatchPublisher
	Close() error
}

func newKafkaPublisher(cfg config.KafkaConfig, logger logging.Logger) (AssetPublisher, error) {
	p, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Brokers,
		MaxRetries: cfg.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewAssetsCmd returns the keyip assets command tree.
func NewAssetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Search the corpus and publish asset records",
	}
	cmd.AddCommand(newAssetsSearchCmd(), newAssetsPublishCmd())
	return cmd
}

func newAssetsSearchCmd() *cobra.Command {
	flags := &analyticsFlags{}
	cmd := &cobra.Command{
		Use:   "search CATEGORY",
		Short: "List assets by status category or free text",
		Long: `List assets matching CATEGORY.

ACTIVE, PENDING and EXPIRING select by status. Anything else is matched as
text against title, classification, assignee, inventor and details.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()

			page, err := cliCtx.Client.Dashboard().Assets(ctx, args[0], flags.filter())
			if err != nil {
				return err
			}
			v := view{
				title:   fmt.Sprintf("Assets matching %q", args[0]),
				headers: []string{"ID", "Number", "Title", "Type", "Assignee", "Status", "Filed"},
				data:    page,
				footer:  fmt.Sprintf("Total: %d", page.Total),
			}
			for _, a := range page.Data {
				v.rows = append(v.rows, []string{
					fmt.Sprint(a.ID), a.AssetNumber, truncate(a.Title, 40), a.Type,
					truncate(a.Assignee, 30), a.Status, a.FilingDate,
				})
			}
			return render(cmd, cliCtx.OutputFormat, v)
		},
	}
	cmd.Flags().StringVar(&flags.dateRange, "date-range", "", "filing date window (week, month, quarter, year, all)")
	cmd.Flags().StringVar(&flags.assetType, "type", "", "asset type filter")
	cmd.Flags().StringVar(&flags.jurisdiction, "jurisdiction", "", "jurisdiction filter")
	return cmd
}

type publishResult struct {
	Assets    int      `json:"assets"`
	Events    int      `json:"events"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
	DryRun    bool     `json:"dryRun,omitempty"`
}

func newAssetsPublishCmd() *cobra.Command {
	var (
		file   string
		source string
		topic  string
		chunk  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish asset records as asset.synced events",
		Long: `Read a JSON array of asset records and publish them to Kafka in chunks.
The worker consumes these events, upserts the records and invalidates cached analytics.

Use --file - to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chunk < 1 {
				return errors.InvalidParam(fmt.Sprintf("--chunk must be at least 1, got %d", chunk))
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			records, err := readAssets(cmd, file)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return errors.Validation("no assets to publish").WithDetail(file)
			}

			events := (len(records) + chunk - 1) / chunk
			res := publishResult{Assets: len(records), Events: events, DryRun: dryRun}
			if dryRun {
				return renderPublish(cmd, cliCtx, res)
			}

			cfg, err := cliCtx.Config()
			if err != nil {
				return err
			}
			if topic == "" {
				topic = cfg.Kafka.AssetSyncedTopic
			}
			pub, err := cliCtx.deps.NewPublisher(cfg.Kafka, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := pub.Close(); cerr != nil {
					cliCtx.Logger.Warn("failed to close publisher", logging.Err(cerr))
				}
			}()

			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()

			batch, err := assetsync.NewEmitter(pub, topic, source, chunk).Emit(ctx, records)
			if batch != nil {
				res.Succeeded, res.Failed = batch.Succeeded, batch.Failed
				for _, e := range batch.Errors {
					res.Errors = append(res.Errors, fmt.Sprintf("event %d: %s", e.Index, e.Error))
				}
			}
			if err != nil {
				return err
			}
			if rerr := renderPublish(cmd, cliCtx, res); rerr != nil {
				return rerr
			}
			if res.Failed > 0 {
				return errors.New(errors.ErrCodeAssetSyncFailed, "some events were not published").
					WithDetail(fmt.Sprintf("%d of %d failed", res.Failed, res.Events))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding an array of assets, - for stdin [REQUIRED]")
	cmd.Flags().StringVar(&source, "source", assetsync.SourceName, "source name recorded on each event")
	cmd.Flags().StringVar(&topic, "topic", "", "topic override (default: kafka.asset_synced_topic)")
	cmd.Flags().IntVar(&chunk, "chunk", 100, "assets per event")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate input and report the event count without publishing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readAssets(cmd *cobra.Command, file string) ([]*asset.Asset, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidParam, "cannot open asset file").WithDetail(file)
		}
		defer f.Close()
		r = f
	}

	var records []*asset.Asset
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "asset file is not a JSON array of assets").WithDetail(file)
	}
	return records, nil
}

func renderPublish(cmd *cobra.Command, cliCtx *CLIContext, res publishResult) error {
	title := "Published assets"
	if res.DryRun {
		title = "Dry run: nothing published"
	}
	v := view{
		title:   title,
		headers: []string{"Assets", "Events", "Succeeded", "Failed"},
		rows:    [][]string{{itoa(res.Assets), itoa(res.Events), itoa(res.Succeeded), itoa(res.Failed)}},
		data:    res,
		record:  true,
		footer:  strings.Join(res.Errors, "\n"),
	}
	return render(cmd, cliCtx.OutputFormat, v)
}

//Personal.AI order the ending
