package execution

// Config holds the connection settings for the Ethereum light client RPC
// endpoint (http/https or ws/wss).
type Config struct {
	URL                       string  `validate:"required,uri"`
	DialMaxRetryAttempts      int     `validate:"gte=0"`
	DialRetryInitialBackoffMS int     `validate:"gte=0"`
	DialRetryMaxBackoffMS     int     `validate:"gte=0"`
	DialRetryJitter           float64 `validate:"gte=0,lte=1"`
}
