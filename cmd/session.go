package cmd

import (
	"github.com/guaranteeops/reconbot/aws/rolesanywhere"
	"github.com/guaranteeops/reconbot/aws/session"
	"github.com/spf13/viper"
)

// Build the credential session from the bound configuration. watch controls
// whether the certificate files are monitored for rotation, which only
// makes sense for the long running bot daemon.
func buildSession(watch bool) (*session.Session, *rolesanywhere.SigningIdentity, error) {
	identity, err := rolesanywhere.NewSigningIdentityFromFiles(
		viper.GetString(certFile),
		viper.GetString(keyFile),
		watch,
	)
	if err != nil {
		return nil, nil, err
	}
	client := rolesanywhere.NewClient(viper.GetString(awsRegion))
	sess := session.New(client, identity, session.Options{
		Region:          viper.GetString(awsRegion),
		TrustAnchorArn:  viper.GetString(trustAnchorArn),
		ProfileArn:      viper.GetString(profileArn),
		RoleArn:         viper.GetString(roleArn),
		TargetRoleArn:   viper.GetString(targetRoleArn),
		DurationSeconds: viper.GetInt(sessionDurationSeconds),
	})
	return sess, identity, nil
}
