package cmd

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guaranteeops/reconbot/aws/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const scanTableCmdName = "scan-table"

func runScanTable() error {
	BindEnvVariables(scanTableCmdName)
	ctx := context.Background()

	sess, identity, err := buildSession(false)
	if err != nil {
		return err
	}
	defer identity.Close()
	cfg, err := sess.Config(ctx)
	if err != nil {
		return err
	}

	transactions := table.New(dynamodb.NewFromConfig(cfg), viper.GetString(tableName), viper.GetString(tableProjection))
	records, err := transactions.ScanAll(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Printf("%s\t%s\t%s\n", record.ExternalID, record.SourceAccount, record.Reason)
	}
	fmt.Printf("%d pending transactions\n", len(records))
	return nil
}

// scanTableCmd represents the scan-table command
var scanTableCmd = &cobra.Command{
	Use:   scanTableCmdName,
	Short: "List the pending transactions of the state table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScanTable()
	},
}

func init() {
	rootCmd.AddCommand(scanTableCmd)
}
