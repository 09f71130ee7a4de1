package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// AWSCredentials holds the temporary credentials as they come back from a
// credential exchange. The JSON tags follow the credentialSet wire format of
// the exchange endpoint.
type AWSCredentials struct {
	AccessKey    string    `json:"accessKeyId"`
	SecretKey    string    `json:"secretAccessKey"`
	SessionToken string    `json:"sessionToken"`
	Expiration   time.Time `json:"expiration"`
}

var ErrExpiredAwsCredentials = errors.New("expired credentials")
var ErrIncompleteAwsCredentials = errors.New("incomplete credentials")

//Check whether credentials are complete and not past their expiration
func (cred *AWSCredentials) IsValid() error {
	if cred.AccessKey == "" || cred.SecretKey == "" {
		return ErrIncompleteAwsCredentials
	}
	if !cred.Expiration.IsZero() && cred.Expiration.Before(time.Now().UTC()) {
		return ErrExpiredAwsCredentials
	}
	return nil
}

//To satisfy the CredentialsProvider interface
func (cred *AWSCredentials) Retrieve(ctx context.Context) (aws.Credentials, error) {
	if err := cred.IsValid(); err != nil {
		return aws.Credentials{}, err
	}
	awsCred := ToAwsSDKCredentials(*cred)
	awsCred.Source = "RolesAnywhere"
	return awsCred, nil
}

func ToAwsSDKCredentials(creds AWSCredentials) aws.Credentials {
	return aws.Credentials{
		AccessKeyID:     creds.AccessKey,
		SecretAccessKey: creds.SecretKey,
		SessionToken:    creds.SessionToken,
		CanExpire:       !creds.Expiration.IsZero(),
		Expires:         creds.Expiration,
	}
}
