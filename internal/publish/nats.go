package publish

import (
	"PaymentLedger/internal/ledger"
	fpmath "PaymentLedger/internal/math"
	"PaymentLedger/internal/observability"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// jetStream is the subset of jetstream.JetStream the publisher needs
type jetStream interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// AccountMessage is the JSON body published for each account.
// Amounts use the same four-digit rendering as the CSV snapshot.
type AccountMessage struct {
	RunID     string `json:"run_id"`
	Sequence  int64  `json:"sequence"`
	StateHash string `json:"state_hash"`
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// SnapshotPublisher publishes a final snapshot to JetStream, one message per
// account on <prefix>.<client>.
type SnapshotPublisher struct {
	js      jetStream
	stream  string
	prefix  string
	metrics *observability.Metrics
}

// NewSnapshotPublisher creates a publisher. metrics may be nil.
func NewSnapshotPublisher(js jetStream, stream, subjectPrefix string, metrics *observability.Metrics) *SnapshotPublisher {
	return &SnapshotPublisher{
		js:      js,
		stream:  stream,
		prefix:  subjectPrefix,
		metrics: metrics,
	}
}

// Subject returns the subject an account is published on
func (p *SnapshotPublisher) Subject(client ledger.ClientID) string {
	return fmt.Sprintf("%s.%d", p.prefix, client)
}

// EnsureStream creates or updates the stream capturing <prefix>.>
func (p *SnapshotPublisher) EnsureStream(ctx context.Context) error {
	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       p.stream,
		Subjects:   []string{p.prefix + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     72 * time.Hour,
		Duplicates: 10 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", p.stream, err)
	}
	return nil
}

// Publish sends every account. Nats-Msg-Id is <run_id>:<client>, so a
// retried run is deduplicated by the broker.
func (p *SnapshotPublisher) Publish(ctx context.Context, runID uuid.UUID, sequence int64, stateHash [32]byte, accounts []ledger.AccountSnapshot) (err error) {
	start := time.Now()
	defer func() {
		if p.metrics == nil {
			return
		}
		p.metrics.SinkDuration.WithLabelValues("nats").Observe(time.Since(start).Seconds())
		if err != nil {
			p.metrics.SinkErrors.WithLabelValues("nats").Inc()
		}
	}()

	hash := hex.EncodeToString(stateHash[:])
	for _, acct := range accounts {
		data, err := json.Marshal(AccountMessage{
			RunID:     runID.String(),
			Sequence:  sequence,
			StateHash: hash,
			Client:    uint16(acct.Client),
			Available: fpmath.FormatAmount(acct.Available, fpmath.OutputConfig),
			Held:      fpmath.FormatAmount(acct.Held, fpmath.OutputConfig),
			Total:     fpmath.FormatAmount(acct.Total, fpmath.OutputConfig),
			Locked:    acct.Locked,
		})
		if err != nil {
			return fmt.Errorf("marshal client %d: %w", acct.Client, err)
		}

		msg := nats.NewMsg(p.Subject(acct.Client))
		msg.Data = data
		msg.Header.Set("Content-Type", "application/json")
		msg.Header.Set(nats.MsgIdHdr, fmt.Sprintf("%s:%d", runID, acct.Client))

		if _, err := p.js.PublishMsg(ctx, msg, jetstream.WithExpectStream(p.stream)); err != nil {
			return fmt.Errorf("publish client %d: %w", acct.Client, err)
		}
	}
	return nil
}

// ConnectNATS establishes a NATS connection and returns a JetStream context.
// A batch run gives up after timeout instead of reconnecting forever.
func ConnectNATS(url string, timeout time.Duration, logger zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.Name("payments"),
		nats.Timeout(timeout),
		nats.MaxReconnects(3),
		nats.ReconnectWait(500*time.Millisecond),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info().Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}
