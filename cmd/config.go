package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

type envVarDef struct {
	//How this config will be retrieved through viper
	viperKey string
	//How this env var is named in the OS env var space
	envVarName string
	//Whether this env var is critical (absolutely required) for execution
	isCritical bool
	//Explain what this env var is for
	description string
	//The cli commands for which it is used
	cmds []string
}

func (e envVarDef) shouldBeSetFor(cmd string) bool {
	for _, applicableCmd := range e.cmds {
		if applicableCmd == cmd {
			return true
		}
	}
	return false
}

const (
	awsRegion              = "awsRegion"
	trustAnchorArn         = "trustAnchorArn"
	profileArn             = "profileArn"
	roleArn                = "roleArn"
	targetRoleArn          = "targetRoleArn"
	certFile               = "certFile"
	keyFile                = "keyFile"
	sessionDurationSeconds = "sessionDurationSeconds"
	bucketName             = "bucketName"
	bucketFolder           = "bucketFolder"
	tableName              = "tableName"
	tableProjection        = "tableProjection"
	slackBotToken          = "slackBotToken"
	slackAppToken          = "slackAppToken"
	reportConfigFile       = "reportConfigFile"
	metricsPort            = "metricsPort"
	logLevel               = "logLevel"

	//Environment variables are upper cased
	//Unless they are wellknown environment variables they should be prefixed
	RECONBOT_AWS_REGION               = "RECONBOT_AWS_REGION"
	RECONBOT_TRUST_ANCHOR_ARN         = "RECONBOT_TRUST_ANCHOR_ARN"
	RECONBOT_PROFILE_ARN              = "RECONBOT_PROFILE_ARN"
	RECONBOT_ROLE_ARN                 = "RECONBOT_ROLE_ARN"
	RECONBOT_TARGET_ROLE_ARN          = "RECONBOT_TARGET_ROLE_ARN"
	RECONBOT_CERT_FILE                = "RECONBOT_CERT_FILE"
	RECONBOT_KEY_FILE                 = "RECONBOT_KEY_FILE"
	RECONBOT_SESSION_DURATION_SECONDS = "RECONBOT_SESSION_DURATION_SECONDS"
	RECONBOT_BUCKET_NAME              = "RECONBOT_BUCKET_NAME"
	RECONBOT_BUCKET_FOLDER            = "RECONBOT_BUCKET_FOLDER"
	RECONBOT_TABLE_NAME               = "RECONBOT_TABLE_NAME"
	RECONBOT_TABLE_PROJECTION         = "RECONBOT_TABLE_PROJECTION"
	SLACK_BOT_TOKEN                   = "SLACK_BOT_TOKEN"
	SLACK_APP_TOKEN                   = "SLACK_APP_TOKEN"
	RECONBOT_REPORT_CONFIG            = "RECONBOT_REPORT_CONFIG"
	RECONBOT_METRICS_PORT             = "RECONBOT_METRICS_PORT"
	LOG_LEVEL                         = "LOG_LEVEL"
)

var envVarDefs = []envVarDef{
	{
		awsRegion,
		RECONBOT_AWS_REGION,
		true,
		"The AWS region the credential exchange endpoint and data sources live in (e.g. us-east-1)",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		trustAnchorArn,
		RECONBOT_TRUST_ANCHOR_ARN,
		true,
		"The ARN of the trust anchor the client certificate chains up to",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		profileArn,
		RECONBOT_PROFILE_ARN,
		true,
		"The ARN of the profile that scopes the exchanged credentials",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		roleArn,
		RECONBOT_ROLE_ARN,
		true,
		"The ARN of the role the certificate is exchanged into",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		targetRoleArn,
		RECONBOT_TARGET_ROLE_ARN,
		false,
		"Optional role to chain into via STS AssumeRole after the exchange",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		certFile,
		RECONBOT_CERT_FILE,
		true,
		"PEM file with the client certificate (leaf first, optionally followed by intermediates)",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		keyFile,
		RECONBOT_KEY_FILE,
		true,
		"PEM file with the private key matching the client certificate",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		sessionDurationSeconds,
		RECONBOT_SESSION_DURATION_SECONDS,
		false,
		"How long exchanged credentials should be valid (defaults to 3600)",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
	{
		bucketName,
		RECONBOT_BUCKET_NAME,
		true,
		"The bucket holding the daily report archives",
		[]string{botCmdName, pullBucketCmdName},
	},
	{
		bucketFolder,
		RECONBOT_BUCKET_FOLDER,
		true,
		"The folder inside the bucket under which reports are partitioned by date",
		[]string{botCmdName, pullBucketCmdName},
	},
	{
		tableName,
		RECONBOT_TABLE_NAME,
		true,
		"The DynamoDB table holding pending transactions",
		[]string{botCmdName, scanTableCmdName},
	},
	{
		tableProjection,
		RECONBOT_TABLE_PROJECTION,
		false,
		"Projection expression limiting the attributes fetched per item",
		[]string{botCmdName, scanTableCmdName},
	},
	{
		slackBotToken,
		SLACK_BOT_TOKEN,
		true,
		"Slack bot token (xoxb-...)",
		[]string{botCmdName},
	},
	{
		slackAppToken,
		SLACK_APP_TOKEN,
		true,
		"Slack app level token for socket mode (xapp-...)",
		[]string{botCmdName},
	},
	{
		reportConfigFile,
		RECONBOT_REPORT_CONFIG,
		true,
		"YAML file describing the report modal fields and target channels",
		[]string{botCmdName},
	},
	{
		metricsPort,
		RECONBOT_METRICS_PORT,
		false,
		"The port on which to run the /ping and /metrics endpoints",
		[]string{botCmdName},
	},
	{
		logLevel,
		LOG_LEVEL,
		false,
		"The Loglevel at which to run (DEBUG, INFO (default), WARN, ERROR)",
		[]string{botCmdName, pullBucketCmdName, scanTableCmdName, credentialsCmdName},
	},
}

func BindEnvVariables(cmd string) {
	for _, evd := range envVarDefs {
		if evd.shouldBeSetFor(cmd) {
			err := viper.BindEnv(evd.viperKey, evd.envVarName)
			if err != nil {
				panic(err)
			}
			checkViperVarNotEmpty(evd)
		}
	}
}

func checkViperVarNotEmpty(evd envVarDef) {
	r := viper.Get(evd.viperKey)
	if r == nil {
		if evd.isCritical {
			slog.Error("Mandatory key is empty", "viperKey", evd.viperKey, "envVarName", evd.envVarName, "description", evd.description)
			fmt.Printf("key %s[%s] is mandatory, aborting\n", evd.viperKey, evd.envVarName)
			os.Exit(1)
		} else {
			slog.Info("Optional key empty", "viperKey", evd.viperKey, "envVarName", evd.envVarName, "description", evd.description)
		}
	}
}
