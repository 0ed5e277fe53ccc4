package common

// AccessTokenHeaderName is the gRPC metadata key carrying the session token
// issued after a successful unlock.
const AccessTokenHeaderName = "access_token"

// File names inside the data directory.
const (
	PinFileName      = "pin.json"
	SaltFileName     = "salt"
	VaultFileName    = "vault.enc"
	SettingsFileName = "settings.db"
)

// AppDirName is the directory created under the user config dir.
const AppDirName = "nestkey"
