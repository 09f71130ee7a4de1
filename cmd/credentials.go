package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guaranteeops/reconbot/aws/credentials"
	"github.com/spf13/cobra"
)

const credentialsCmdName = "credentials"

//The output format of credential_process helpers, see
//https://docs.aws.amazon.com/cli/latest/userguide/cli-configure-sourcing-external.html
type credentialProcessOutput struct {
	Version         int    `json:"Version"`
	AccessKeyId     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken,omitempty"`
	Expiration      string `json:"Expiration,omitempty"`
}

func runCredentials() error {
	BindEnvVariables(credentialsCmdName)
	ctx := context.Background()

	sess, identity, err := buildSession(false)
	if err != nil {
		return err
	}
	defer identity.Close()

	creds, err := sess.Credentials(ctx)
	if err != nil {
		return err
	}
	sdkCreds := credentials.ToAwsSDKCredentials(*creds)
	output := credentialProcessOutput{
		Version:         1,
		AccessKeyId:     sdkCreds.AccessKeyID,
		SecretAccessKey: sdkCreds.SecretAccessKey,
		SessionToken:    sdkCreds.SessionToken,
	}
	if sdkCreds.CanExpire {
		output.Expiration = sdkCreds.Expires.UTC().Format(time.RFC3339)
	}
	encoded, err := json.Marshal(output)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

// credentialsCmd represents the credentials command
var credentialsCmd = &cobra.Command{
	Use:   credentialsCmdName,
	Short: "Exchange the client certificate and print temporary credentials",
	Long: `Perform the certificate credential exchange once and print the result
	in credential_process format, so other tools can source credentials from
	this program via their AWS config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCredentials()
	},
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
}
