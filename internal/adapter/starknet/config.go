package starknet

// Config holds the Starknet light client RPC endpoint.
type Config struct {
	URL                  string `validate:"required,uri"`
	DialMaxRetryAttempts int    `validate:"gte=0"`
}
