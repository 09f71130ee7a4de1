package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/google/uuid"
	"github.com/guaranteeops/reconbot/aws/credentials"
	"github.com/guaranteeops/reconbot/aws/rolesanywhere"
)

// Options carries everything needed to go from a client certificate to a
// usable aws.Config. TargetRoleArn is optional; when set the exchanged
// credentials are chained through STS AssumeRole into that role.
type Options struct {
	Region          string
	TrustAnchorArn  string
	ProfileArn      string
	RoleArn         string
	TargetRoleArn   string
	DurationSeconds int
	SessionName     string
}

type stsAssumeRoleAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Session hands out aws.Config values backed by certificate-exchanged
// credentials. Credentials are fetched lazily and re-exchanged shortly
// before they expire.
type Session struct {
	client   *rolesanywhere.Client
	identity *rolesanywhere.SigningIdentity
	opts     Options

	newStsClient func(aws.Config) stsAssumeRoleAPI
}

func New(client *rolesanywhere.Client, identity *rolesanywhere.SigningIdentity, opts Options) *Session {
	if opts.SessionName == "" {
		opts.SessionName = "reconbot-" + uuid.New().String()
	}
	return &Session{
		client:   client,
		identity: identity,
		opts:     opts,
		newStsClient: func(cfg aws.Config) stsAssumeRoleAPI {
			return sts.NewFromConfig(cfg)
		},
	}
}

// Credentials performs the certificate exchange and, when a target role is
// configured, chains into it via STS.
func (s *Session) Credentials(ctx context.Context) (*credentials.AWSCredentials, error) {
	creds, err := s.client.CreateSession(ctx, s.identity, rolesanywhere.CreateSessionInput{
		TrustAnchorArn:  s.opts.TrustAnchorArn,
		ProfileArn:      s.opts.ProfileArn,
		RoleArn:         s.opts.RoleArn,
		DurationSeconds: s.opts.DurationSeconds,
	})
	if err != nil {
		return nil, err
	}
	if s.opts.TargetRoleArn == "" {
		return creds, nil
	}
	return s.assumeTargetRole(ctx, creds)
}

func (s *Session) assumeTargetRole(ctx context.Context, creds *credentials.AWSCredentials) (*credentials.AWSCredentials, error) {
	cfg := aws.Config{
		Region:      s.opts.Region,
		Credentials: creds,
	}
	stsClient := s.newStsClient(cfg)
	input := &sts.AssumeRoleInput{
		RoleArn:         &s.opts.TargetRoleArn,
		RoleSessionName: &s.opts.SessionName,
	}
	if s.opts.DurationSeconds > 0 {
		duration := int32(s.opts.DurationSeconds)
		input.DurationSeconds = &duration
	}
	out, err := stsClient.AssumeRole(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("could not assume target role %s: %w", s.opts.TargetRoleArn, err)
	}
	assumed, err := credentialsFromStsOutput(out.Credentials)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Assumed target role", "role", s.opts.TargetRoleArn, "expiration", assumed.Expiration)
	return assumed, nil
}

func credentialsFromStsOutput(stsCreds *ststypes.Credentials) (*credentials.AWSCredentials, error) {
	if stsCreds == nil || stsCreds.AccessKeyId == nil || stsCreds.SecretAccessKey == nil {
		return nil, fmt.Errorf("assume role response had no usable credentials: %w", credentials.ErrIncompleteAwsCredentials)
	}
	creds := &credentials.AWSCredentials{
		AccessKey: *stsCreds.AccessKeyId,
		SecretKey: *stsCreds.SecretAccessKey,
	}
	if stsCreds.SessionToken != nil {
		creds.SessionToken = *stsCreds.SessionToken
	}
	if stsCreds.Expiration != nil {
		creds.Expiration = *stsCreds.Expiration
	}
	return creds, creds.IsValid()
}

// Config wires the session into the SDK as a refreshing credentials
// provider so callers can build service clients directly from it.
func (s *Session) Config(ctx context.Context) (aws.Config, error) {
	// Probe once up front so misconfiguration fails fast instead of at the
	// first service call.
	if _, err := s.Credentials(ctx); err != nil {
		return aws.Config{}, err
	}
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.opts.Region),
		awsconfig.WithCredentialsProvider(aws.NewCredentialsCache(&refreshingProvider{session: s})),
	)
}

// refreshingProvider re-exchanges the certificate whenever the cache asks
// for fresh credentials. The cache handles expiry windows.
type refreshingProvider struct {
	session *Session
}

func (p *refreshingProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	creds, err := p.session.Credentials(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}
	awsCreds, err := creds.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}
	if awsCreds.CanExpire {
		// Refresh a bit before the hard expiry so in-flight requests do not
		// race the deadline.
		awsCreds.Expires = awsCreds.Expires.Add(-30 * time.Second)
	}
	return awsCreds, nil
}
