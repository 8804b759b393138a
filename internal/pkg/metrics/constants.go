package metrics

// Component label values used by app-level metrics.
const (
	ComponentKafka    = "kafka"
	ComponentRPC      = "rpc"
	ComponentEthereum = "ethereum"
	ComponentStarknet = "starknet"
	ComponentCache    = "cache"
)

// Outcome label values for rpc_requests_total.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidParams = "invalid_params"
	OutcomeNotFound      = "not_found"
	OutcomeBackend       = "backend_error"
	OutcomeError         = "error"
)
