package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/guaranteeops/reconbot/aws/bucket"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const pullBucketCmdName = "pull-bucket"

var pullBucketDate string

func runPullBucket() error {
	BindEnvVariables(pullBucketCmdName)
	ctx := context.Background()

	date := pullBucketDate
	if date == "" {
		//Reports cover the previous day
		date = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	}

	sess, identity, err := buildSession(false)
	if err != nil {
		return err
	}
	defer identity.Close()
	cfg, err := sess.Config(ctx)
	if err != nil {
		return err
	}

	reports := bucket.New(s3.NewFromConfig(cfg), viper.GetString(bucketName), viper.GetString(bucketFolder))
	docs, err := reports.ReportForDate(ctx, date)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Printf("%s: %d rows (%d columns)\n", doc.Name, len(doc.Rows), len(doc.Header))
	}
	return nil
}

// pullBucketCmd represents the pull-bucket command
var pullBucketCmd = &cobra.Command{
	Use:   pullBucketCmdName,
	Short: "Fetch and inspect a daily report archive",
	Long: `Fetch the report archive for a given date, parse the CSV members and
	print a per-file row count. Useful to verify access and report layout
	without going through Slack.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPullBucket()
	},
}

func init() {
	pullBucketCmd.Flags().StringVar(&pullBucketDate, "date", "", "Report date (YYYY-MM-DD), defaults to yesterday")
	rootCmd.AddCommand(pullBucketCmd)
}
