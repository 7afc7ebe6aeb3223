package http

// Common JSON keys
const (
	JSONKeyError         = "error"
	JSONKeyStatus        = "status"
	JSONKeyNetworks      = "networks"
	JSONKeyActiveNetwork = "activeNetwork"
	JSONKeyNotAdded      = "notAdded"
	JSONKeyContracts     = "contracts"
	JSONKeyVersion       = "version"
)

const (
	HTTPErrorInvalidJSONText    = "invalid JSON"
	HTTPErrorNameAndChainIDText = "send either name or chainIdHex, not both"
	HealthOKText                = "ok"
)

var DefaultAllowedOrigins = []string{"http://localhost:3000"}
