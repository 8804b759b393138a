package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/port"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
)

const defaultCallTimeout = 30 * time.Second

// Dispatcher implements one handler per RPC method: decode the wire
// parameters, call the shared light client under its read lock, release the
// lock, then encode the result. Decoding always completes before the backend
// is touched, so malformed input never reaches the light client.
//
// A Dispatcher is safe for concurrent use.
type Dispatcher struct {
	log         applog.AppLogger
	handle      *LightClientHandle
	cache       port.BlockCache
	publisher   port.TransactionPublisher
	callTimeout time.Duration
	now         func() time.Time
}

type Option func(*Dispatcher)

// WithBlockCache serves hash-addressed block lookups from c when possible.
func WithBlockCache(c port.BlockCache) Option {
	return func(d *Dispatcher) { d.cache = c }
}

// WithTransactionPublisher emits an event for every accepted raw transaction.
func WithTransactionPublisher(p port.TransactionPublisher) Option {
	return func(d *Dispatcher) { d.publisher = p }
}

// WithCallTimeout bounds every backend call. Zero or negative disables it.
func WithCallTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.callTimeout = t }
}

func NewDispatcher(log applog.AppLogger, handle *LightClientHandle, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:         log,
		handle:      handle,
		callTimeout: defaultCallTimeout,
		now:         time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Ready implements port.ReadinessProbe by asking the Ethereum light client
// for its head.
func (d *Dispatcher) Ready(ctx context.Context) error {
	_, err := callEthereum(ctx, d, "ready", func(ctx context.Context, c port.EthereumClient) (uint64, error) {
		return c.BlockNumber(ctx)
	})
	return err
}

// callEthereum runs fn against the Ethereum client under the read lock with
// the per-call timeout applied, and maps its error into the apperr taxonomy.
func callEthereum[T any](ctx context.Context, d *Dispatcher, method string, fn func(context.Context, port.EthereumClient) (T, error)) (T, error) {
	ctx, cancel := d.withCallTimeout(ctx)
	defer cancel()

	var out T
	err := d.handle.ReadEthereum(ctx, func(ctx context.Context, c port.EthereumClient) error {
		var err error
		out, err = fn(ctx, c)
		return err
	})
	if err != nil {
		var zero T
		return zero, d.backendError(ctx, method, err)
	}
	return out, nil
}

// callStarknet is callEthereum for the Starknet client.
func callStarknet[T any](ctx context.Context, d *Dispatcher, method string, fn func(context.Context, port.StarknetClient) (T, error)) (T, error) {
	ctx, cancel := d.withCallTimeout(ctx)
	defer cancel()

	var out T
	err := d.handle.ReadStarknet(ctx, func(ctx context.Context, c port.StarknetClient) error {
		var err error
		out, err = fn(ctx, c)
		return err
	})
	if err != nil {
		var zero T
		return zero, d.backendError(ctx, method, err)
	}
	return out, nil
}

func (d *Dispatcher) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.callTimeout)
}

func (d *Dispatcher) backendError(ctx context.Context, method string, err error) error {
	var base apperr.BaseError
	switch {
	case errors.As(err, &base):
		return err
	case errors.Is(err, ethereum.NotFound):
		return apperr.NewNotFoundErr(method+": block not found", err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperr.NewBackendErr(method+": backend call timed out", err)
	default:
		return apperr.NewBackendErr(method+": light client request failed", err)
	}
}

// begin marks a request in flight and returns its start time for observe.
func (d *Dispatcher) begin() time.Time {
	imetrics.RPC().InFlight.Inc()
	return d.now()
}

func (d *Dispatcher) observe(method string, start time.Time, errp *error) {
	imetrics.RPC().InFlight.Dec()
	elapsed := d.now().Sub(start)
	imetrics.RPC().RequestLatencyMS.WithLabelValues(method).Observe(float64(elapsed.Microseconds()) / 1000)

	var err error
	if errp != nil {
		err = *errp
	}
	outcome := classifyOutcome(err)
	imetrics.RPC().RequestsTotal.WithLabelValues(method, outcome).Inc()

	switch outcome {
	case imetrics.OutcomeOK:
		d.log.Debug("Dispatched request", "method", method, "elapsed", elapsed)
	case imetrics.OutcomeBackend, imetrics.OutcomeError:
		d.log.Warn("Request failed", "method", method, "elapsed", elapsed, "err", err)
		imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentRPC, outcome).Inc()
	default:
		d.log.Debug("Request rejected", "method", method, "outcome", outcome, "err", err)
	}
}

func classifyOutcome(err error) string {
	if err == nil {
		return imetrics.OutcomeOK
	}
	var (
		invalid *apperr.InvalidArgErr
		index   *apperr.IndexOutOfRangeErr
		missing *apperr.NotFoundErr
		backend *apperr.BackendErr
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &index):
		return imetrics.OutcomeInvalidParams
	case errors.As(err, &missing):
		return imetrics.OutcomeNotFound
	case errors.As(err, &backend):
		return imetrics.OutcomeBackend
	default:
		return imetrics.OutcomeError
	}
}
