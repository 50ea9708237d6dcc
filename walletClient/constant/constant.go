package constant

import "os"

// <NodeDir>/                    (e.g., /home/user/.pwallet)
// └── config/
//	└── pwallet_config.json
// └── storage/
//	└── walletconnect.json
//	└── walletconnect-js.json
//	└── pwallet.db

const (
	NodeDir = ".pwallet"

	// EnvPrefix prefixes every environment override, e.g. PWALLET_PORT.
	EnvPrefix = "PWALLET"
)

var DefaultNodeHome = os.ExpandEnv("$HOME/") + NodeDir
