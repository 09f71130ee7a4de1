package constants

//The AWS SDK does not seem to provide packages that export these constants :(
const (
	// AmzDateKey is the UTC timestamp for the request in the format YYYYMMDD'T'HHMMSS'Z'
	AmzDateKey = "X-Amz-Date"

	// AmzX509Key carries the base64 encoded DER client certificate when
	// exchanging it for temporary credentials
	AmzX509Key = "X-Amz-X509"

	// AmzX509ChainKey carries intermediate certificates (base64 DER, comma separated)
	// in case the trust anchor does not directly trust the client certificate
	AmzX509ChainKey = "X-Amz-X509-Chain"

	// EmptyStringSHA256 is the hex encoded sha256 value of an empty string
	EmptyStringSHA256 = `e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855`

	// TimeFormat is the time format to be used in the X-Amz-Date header
	TimeFormat = "20060102T150405Z"

	// DateFormat is the date portion of TimeFormat as used in the credential scope
	DateFormat = "20060102"

	// AWS4Terminator closes off every credential scope
	AWS4Terminator = "aws4_request"

	// RolesAnywhereService is the service name in the credential scope when
	// exchanging a certificate for temporary credentials
	RolesAnywhereService = "rolesanywhere"

	// SessionsPath is the resource of the credential exchange endpoint
	SessionsPath = "/sessions"
)
