package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/metrics"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/pattern"
)

const (
	defaultRetryAttempts       = 5
	defaultRetryInitialBackoff = 200 * time.Millisecond
	defaultRetryMaxBackoff     = 2 * time.Second
	defaultRetryJitter         = 0.2
	defaultWriteTimeout        = 10 * time.Second
)

type kgoClient interface {
	BeginTransaction() error
	EndTransaction(ctx context.Context, commit kgo.TransactionEndTry) error
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

var newKgoClient = func(opts ...kgo.Opt) (kgoClient, error) {
	return kgo.NewClient(opts...)
}

// transactionEvent is the record value for an accepted raw transaction.
type transactionEvent struct {
	Hash        common.Hash   `json:"hash"`
	Raw         hexutil.Bytes `json:"raw"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

// KafkaPublisher emits an event to Kafka for every raw transaction the light
// client accepted for broadcast.
type KafkaPublisher struct {
	log          applog.AppLogger
	client       kgoClient
	cfg          Config
	writeTimeout time.Duration
	retryOpts    []pattern.RetryOption
}

// NewKafkaPublisher builds a Kafka-backed publisher with validated configuration and retry settings.
func NewKafkaPublisher(log applog.AppLogger, cfg Config, v *validator.Validate) (*KafkaPublisher, error) {
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid kafka publisher config", err)
	}

	maxAttempts := cfg.MaxRetryAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultRetryAttempts
	}

	initialBackoff := millisecondsOrDefault(cfg.RetryInitialBackoffMS, defaultRetryInitialBackoff)
	maxBackoff := millisecondsOrDefault(cfg.RetryMaxBackoffMS, defaultRetryMaxBackoff)
	if maxBackoff < initialBackoff {
		maxBackoff = initialBackoff
	}

	writeTimeout := secondsOrDefault(cfg.WriteTimeoutSeconds, defaultWriteTimeout)
	jitter := cfg.RetryJitter
	if jitter <= 0 {
		jitter = defaultRetryJitter
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.DefaultProduceTopic(cfg.Topic),
	}
	if cfg.TransactionalID != "" {
		opts = append(opts, kgo.TransactionalID(cfg.TransactionalID))
	}
	client, err := newKgoClient(opts...)
	if err != nil {
		return nil, apperr.NewInternalErr("failed to init kafka client", err)
	}

	kp := &KafkaPublisher{
		log:          log,
		client:       client,
		cfg:          cfg,
		writeTimeout: writeTimeout,
	}

	kp.retryOpts = []pattern.RetryOption{
		pattern.WithMaxAttempts(maxAttempts),
		pattern.WithInitialDelay(initialBackoff),
		pattern.WithMaxDelay(maxBackoff),
		pattern.WithJitter(jitter),
		pattern.WithShouldRetry(kp.shouldRetry),
	}

	return kp, nil
}

// PublishTransaction serializes the submitted transaction and produces it
// keyed by its hash, retrying transient broker failures.
func (kp *KafkaPublisher) PublishTransaction(ctx context.Context, tx *entity.SubmittedTransaction) error {
	if tx == nil {
		return apperr.NewInvalidArgErr("transaction is required", nil)
	}

	payload, err := json.Marshal(transactionEvent{Hash: tx.Hash, Raw: tx.Raw, SubmittedAt: tx.SubmittedAt})
	if err != nil {
		kp.log.Error("Failed to marshal transaction payload", "err", err)
		return apperr.NewInternalErr("failed to marshal transaction payload", err)
	}

	rec := kp.buildRecord(tx, payload)
	if err := pattern.Retry(ctx, func(attempt int) error {
		// Transactional producers wrap each record in its own short transaction.
		if kp.cfg.TransactionalID != "" {
			if err := kp.client.BeginTransaction(); err != nil {
				return err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, kp.writeTimeout)
		defer cancel()

		imetrics.Kafka().ProduceAttemptsTotal.Inc()
		start := time.Now()
		res := kp.client.ProduceSync(attemptCtx, rec)
		imetrics.Kafka().ProduceLatencyMS.Observe(float64(time.Since(start).Milliseconds()))
		writeErr := res.FirstErr()
		if kp.cfg.TransactionalID != "" {
			if writeErr == nil {
				if err := kp.client.EndTransaction(context.Background(), kgo.TryCommit); err != nil {
					writeErr = err
				}
			} else {
				_ = kp.client.EndTransaction(context.Background(), kgo.TryAbort)
			}
		}

		if writeErr != nil {
			imetrics.Kafka().ProduceErrorsTotal.WithLabelValues(classifyProduceError(writeErr)).Inc()
			if kp.shouldRetry(writeErr) {
				kp.log.Warn("Kafka publish attempt failed", "attempt", attempt, "hash", tx.Hash.Hex(), "topic", kp.cfg.Topic, "err", writeErr)
			} else {
				kp.log.Error("Kafka publish failed (non-retriable)", "hash", tx.Hash.Hex(), "topic", kp.cfg.Topic, "err", writeErr)
			}
		}
		return writeErr
	}, kp.retryOpts...); err != nil {
		return apperr.NewBackendErr("failed to publish transaction to kafka", err)
	}

	imetrics.Kafka().ProduceSuccessTotal.Inc()
	kp.log.Trace("Published transaction to Kafka", "topic", kp.cfg.Topic, "hash", tx.Hash.Hex())
	return nil
}

// Close releases the Kafka client.
func (kp *KafkaPublisher) Close() {
	kp.client.Close()
}

func (kp *KafkaPublisher) buildRecord(tx *entity.SubmittedTransaction, payload []byte) *kgo.Record {
	headers := []kgo.RecordHeader{
		{Key: "tx-hash", Value: []byte(tx.Hash.Hex())},
		{Key: "submitted-at-ms", Value: []byte(strconv.FormatInt(tx.SubmittedAt.UnixMilli(), 10))},
	}
	return &kgo.Record{
		Topic:   kp.cfg.Topic,
		Key:     append([]byte(nil), tx.Hash.Bytes()...),
		Value:   payload,
		Headers: headers,
	}
}

func (kp *KafkaPublisher) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	// Broker-marked retriable errors: leader changes, coordinator load,
	// not enough replicas.
	if kerr.IsRetriable(err) {
		return true
	}

	// The topic may be provisioned shortly after startup.
	if errors.Is(err, kerr.UnknownTopicOrPartition) {
		return true
	}
	return false
}

func classifyProduceError(err error) string {
	var kafkaErr *kerr.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &kafkaErr):
		return kafkaErr.Message
	default:
		return "client"
	}
}

func millisecondsOrDefault(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
