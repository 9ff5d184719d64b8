// Package natsgath streams execution progress to a NATS subject.
package natsgath

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/judge/internal/gatherer"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/judge"
)

// Publisher is the part of *nats.Conn the gatherer needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// Connect dials the server at url and keeps reconnecting for as long as the
// process lives.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("judge"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
}

// New creates a gatherer that publishes every message of one evaluation to
// subject.
func New(pub Publisher, subject string, evalUuid string, logger *slog.Logger) *gatherer.Stream {
	return gatherer.NewStream(evalUuid, sender(pub, subject), logger)
}

// Factory builds one gatherer per job record, all publishing to subject.
func Factory(pub Publisher, subject string, logger *slog.Logger) func(rec *job.Record) judge.Gatherer {
	return func(rec *job.Record) judge.Gatherer {
		return New(pub, subject, rec.Uuid, logger.With("job_id", rec.ID))
	}
}
