// sessionlock provides application-level distributed locks via advisory
// locks in PostgreSQL. The syncer takes one of these around its apply and
// verify phases so that two migration runs cannot interleave DDL against
// the same target.
//
// - https://www.postgresql.org/docs/current/explicit-locking.html#ADVISORY-LOCKS
package sessionlock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/rlsync/rlsync/internal/multierr"
)

// IDPrefix is prepended to any given lock name when computing the integer
// lock ID, to help prevent collisions with other clients that may be
// acquiring their own advisory locks.
const IDPrefix string = "rlsync-lock-"

// SpinWait is how long to sleep between attempts to acquire an in-use
// session lock with pg_try_advisory_lock.
const SpinWait time.Duration = 100 * time.Millisecond

// ID consistently hashes a lock name to an integer usable with
// pg_advisory_lock() and pg_advisory_unlock().
func ID(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(IDPrefix + name))
}

// With opens a dedicated connection to db, acquires the named advisory
// lock on it, calls cb, then releases the lock. A dedicated *sql.Conn
// guarantees that lock and unlock happen in the same session.
//
// Acquisition spins on pg_try_advisory_lock rather than blocking inside
// pg_advisory_lock, so a caller's lock_timeout or statement_timeout
// settings never kill the wait. The spin gives up only when ctx expires.
func With(ctx context.Context, db *sql.DB, lockName string, cb func(*sql.Conn) error) (final error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("sessionlock(%s) failed to open conn: %w", lockName, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			final = multierr.Join(final, fmt.Errorf("sessionlock(%s) failed to close conn: %w", lockName, err))
		}
	}()

	id := ID(lockName)
	if err := acquire(ctx, conn, id); err != nil {
		return fmt.Errorf("sessionlock(%s) failed to lock: %w", lockName, err)
	}
	defer func() {
		unlockQuery := fmt.Sprintf("SELECT pg_advisory_unlock(%d)", id)
		if _, err := conn.ExecContext(ctx, unlockQuery); err != nil {
			final = multierr.Join(final, fmt.Errorf("sessionlock(%s) failed to unlock: %w", lockName, err))
		}
	}()
	return cb(conn)
}

func acquire(ctx context.Context, conn *sql.Conn, id uint32) error {
	tryLockQuery := fmt.Sprintf("SELECT pg_try_advisory_lock(%d)", id)
	for {
		var locked bool
		if err := conn.QueryRowContext(ctx, tryLockQuery).Scan(&locked); err != nil {
			return err
		}
		if locked {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(SpinWait):
		}
	}
}
