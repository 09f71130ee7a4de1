package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/guaranteeops/reconbot/aws/bucket"
	"github.com/guaranteeops/reconbot/aws/table"
	"github.com/guaranteeops/reconbot/metrics"
	"github.com/guaranteeops/reconbot/middleware"
	"github.com/guaranteeops/reconbot/server"
	"github.com/guaranteeops/reconbot/slackbot"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const botCmdName = "bot"

// buildSubmissionHandler composes the data sources into the text that ends
// up on the submitter's Home tab: the pending transactions of the state
// table plus a summary of the report archive for the requested start date.
func buildSubmissionHandler(reports *bucket.Bucket, transactions *table.Table) slackbot.SubmissionHandler {
	return func(ctx context.Context, submission *slackbot.ReportSubmission) (string, error) {
		records, err := transactions.ScanAll(ctx)
		if err != nil {
			return "", fmt.Errorf("could not read pending transactions: %w", err)
		}
		docs, err := reports.ReportForDate(ctx, submission.StartDate.Format("2006-01-02"))
		if err != nil {
			return "", fmt.Errorf("could not read report archive: %w", err)
		}

		reportRows := 0
		for _, doc := range docs {
			reportRows += len(doc.Rows)
		}
		var total float64
		for _, amount := range submission.Amounts {
			total += amount
		}

		rows := make([][]string, 0, len(records))
		for _, record := range records {
			rows = append(rows, []string{record.ExternalID, record.SourceAccount, record.Reason})
		}
		pendingTable := slackbot.FormatTable(
			[]string{"External ID", "Source account", "Reason"},
			[]int{24, 16, 40},
			rows,
		)
		summary := fmt.Sprintf("%d report rows in %d files, %d pending transactions, submitted amounts total %.2f",
			reportRows, len(docs), len(records), total)
		return summary + "\n" + pendingTable, nil
	}
}

func runBot() error {
	BindEnvVariables(botCmdName)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportConfig, err := slackbot.LoadReportConfig(viper.GetString(reportConfigFile))
	if err != nil {
		return err
	}

	sess, identity, err := buildSession(true)
	if err != nil {
		return err
	}
	defer identity.Close()

	//Report unhealthy when the watched certificate files stop yielding a
	//usable signing key.
	healthcheck := middleware.NewSigningIdentityHealthCheck(slog.LevelDebug, func() (bool, []byte, error) {
		if _, err := identity.Key().Algorithm(); err != nil {
			return false, nil, err
		}
		return true, []byte("pong"), nil
	})
	serverDone, shutdownOps, reg := server.StartOpsServer(server.OpsServerOpts{
		Port:          viper.GetInt(metricsPort),
		RequestLogLvl: slog.LevelDebug,
		Healthchecker: healthcheck,
	})
	defer func() {
		if err := shutdownOps(context.Background()); err != nil {
			slog.Error("Could not shut down ops server", "error", err)
		}
		serverDone.Wait()
	}()
	m := metrics.New(reg)

	cfg, err := sess.Config(ctx)
	m.ObserveExchange(err)
	if err != nil {
		return fmt.Errorf("could not establish AWS session: %w", err)
	}

	reports := bucket.New(s3.NewFromConfig(cfg), viper.GetString(bucketName), viper.GetString(bucketFolder))
	transactions := table.New(dynamodb.NewFromConfig(cfg), viper.GetString(tableName), viper.GetString(tableProjection))

	webClient := slack.New(
		viper.GetString(slackBotToken),
		slack.OptionAppLevelToken(viper.GetString(slackAppToken)),
	)
	bot := slackbot.New(webClient, reportConfig, buildSubmissionHandler(reports, transactions), m)

	if err := bot.PostEntryButtons(ctx); err != nil {
		slog.Error("Could not post entry buttons", "error", err)
	}
	slog.Info("Starting socket mode bot", "channels", reportConfig.Channels)
	return bot.Run(ctx)
}

// botCmd represents the bot command
var botCmd = &cobra.Command{
	Use:   botCmdName,
	Short: "Run the Slack socket mode daemon",
	Long: `Spawn the long running bot process. It connects to Slack over socket
	mode, posts the data-entry button to the configured channels and serves
	report requests until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot()
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
