package pgx

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrSessionBusy = errors.New("pgx: session is locked by another writer")
	errLeaseLost   = errors.New("pgx: session lease lost")
)

const (
	leaseTTL          = 2 * time.Minute
	leaseWaitInterval = 250 * time.Millisecond
	leaseWaitJitter   = 250 * time.Millisecond
	leaseMaxWait      = 5 * time.Minute
)

const acquireLease = `
INSERT INTO session_leases (session_id, holder, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (session_id) DO UPDATE
SET holder     = EXCLUDED.holder,
    expires_at = EXCLUDED.expires_at
WHERE session_leases.expires_at < now()
   OR session_leases.holder = EXCLUDED.holder
RETURNING session_id
`

const renewLease = `
UPDATE session_leases
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE session_id = $1 AND holder = $2
RETURNING session_id
`

const releaseLease = `
DELETE FROM session_leases
WHERE session_id = $1 AND holder = $2
`

// sessionLease serialises writers of one session across processes. The
// row expires after leaseTTL unless the holder keeps renewing it, so a
// crashed worker never blocks a session for longer than that.
type sessionLease struct {
	sessionID string
	holder    string
	conn      pgxIConn

	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// leaseSession waits until the session lease is free and takes it. The
// returned context is cancelled when the lease is lost.
func (s *GraphDBStorage) leaseSession(ctx context.Context, sessionID string) (*sessionLease, error) {
	holder, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	waitCtx, cancelWait := context.WithTimeoutCause(ctx, leaseMaxWait, ErrSessionBusy)
	defer cancelWait()

	for {
		var got string
		err := s.conn.QueryRow(waitCtx, acquireLease, sessionID, holder, leaseTTL.Milliseconds()).Scan(&got)
		if err == nil {
			break
		}
		if !errors.Is(err, pgxv5.ErrNoRows) {
			if cause := context.Cause(waitCtx); errors.Is(cause, ErrSessionBusy) {
				return nil, ErrSessionBusy
			}
			return nil, fmt.Errorf("failed to acquire session lease: %w", err)
		}

		logger.Debug("[Postgres] Waiting for session lease", "session", sessionID)
		if err := sleepJitter(waitCtx, leaseWaitInterval, leaseWaitJitter); err != nil {
			if errors.Is(context.Cause(waitCtx), ErrSessionBusy) {
				return nil, ErrSessionBusy
			}
			return nil, err
		}
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	l := &sessionLease{
		sessionID: sessionID,
		holder:    holder,
		conn:      s.conn,
		ctx:       leaseCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go l.renew()
	return l, nil
}

func (l *sessionLease) renew() {
	t := time.NewTicker(leaseTTL / 2)
	defer t.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-l.ctx.Done():
			return
		case <-t.C:
			var got string
			err := l.conn.QueryRow(l.ctx, renewLease, l.sessionID, l.holder, leaseTTL.Milliseconds()).Scan(&got)
			if errors.Is(err, pgxv5.ErrNoRows) {
				err = errLeaseLost
			}
			if err != nil {
				logger.Warn("[Postgres] Lost session lease", "session", l.sessionID, "err", err)
				l.cancel(err)
				return
			}
		}
	}
}

// release stops renewing and deletes the lease row. It uses its own
// context so a cancelled request still frees the session.
func (l *sessionLease) release() {
	close(l.done)
	l.cancel(context.Canceled)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := l.conn.Exec(ctx, releaseLease, l.sessionID, l.holder); err != nil {
		logger.Warn("[Postgres] Failed to release session lease", "session", l.sessionID, "err", err)
	}
}

func sleepJitter(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
