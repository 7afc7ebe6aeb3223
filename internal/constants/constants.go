package constants

const (
	AppName    = "contract-loader"
	ConfigFile = "config.yaml"
	EnvPrefix  = "CONTRACT_LOADER"

	DefaultActiveNetwork = "mainnet"
	DefaultContractName  = "YourContract"

	// 0x + 40 hex chars
	AddressLength = 42

	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// chain id of the placeholder entry in the seed registry
	SeedChainID = "1"
)
