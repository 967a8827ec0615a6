package back

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Back owns the database connection pool. It is created once at startup,
// shared by every request and closed on shutdown.
type Back struct {
	db  *sqlx.DB
	log *zap.Logger
}

type Options struct {
	// DSN is either a postgres:// URL or a key=value connection string.
	DSN string

	// InsecureSkipVerify keeps TLS but does not verify the server
	// certificate (sslmode=require).
	InsecureSkipVerify bool
}

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Back, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn, err := NormalizeDSN(opts.DSN, opts.InsecureSkipVerify)
	if err != nil {
		return nil, err
	}

	if opts.InsecureSkipVerify {
		logger.Warn("database server certificate verification is DISABLED (sslmode=require)")
	}

	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database DSN: %w", err)
	}

	db := sqlx.NewDb(sql.OpenDB(connector), "postgres")
	if err := db.PingContext(ctx); err != nil {
		if err2 := db.Close(); err2 != nil {
			logger.Warn("unable to close pool after failed ping", zap.Error(err2))
		}
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	logger.Info("database pool ready")

	return newWithDB(db, logger), nil
}

func newWithDB(db *sqlx.DB, logger *zap.Logger) *Back {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Back{
		db:  db,
		log: logger.Named("back"),
	}
}

// Close releases every connection of the pool.
func (b *Back) Close() error {
	b.log.Info("closing database pool")
	return b.db.Close()
}

// NormalizeDSN sets the sslmode of a connection string.
// insecureSkipVerify forces sslmode=require, otherwise an explicit sslmode is
// kept and a missing one defaults to verify-full.
func NormalizeDSN(dsn string, insecureSkipVerify bool) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", errors.New("empty database DSN")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid database URL: %w", err)
		}

		q := u.Query()
		switch {
		case insecureSkipVerify:
			q.Set("sslmode", "require")
		case q.Get("sslmode") == "":
			q.Set("sslmode", "verify-full")
		}
		u.RawQuery = q.Encode()

		return u.String(), nil
	}

	keys, err := dsnKeys(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid database DSN: %w", err)
	}

	// Later keys win in lib/pq, the user values are never rewritten.
	switch {
	case insecureSkipVerify:
		return dsn + " sslmode=require", nil
	case !containsString(keys, "sslmode"):
		return dsn + " sslmode=verify-full", nil
	default:
		return dsn, nil
	}
}

// dsnKeys returns the keys of a key=value connection string. Values may be
// single-quoted and use backslash escapes, as in libpq.
func dsnKeys(dsn string) ([]string, error) {
	var keys []string
	r := []rune(dsn)
	i := 0

	skipSpaces := func() {
		for i < len(r) && unicode.IsSpace(r[i]) {
			i++
		}
	}

	for {
		skipSpaces()
		if i >= len(r) {
			return keys, nil
		}

		start := i
		for i < len(r) && r[i] != '=' && !unicode.IsSpace(r[i]) {
			i++
		}
		key := string(r[start:i])

		skipSpaces()
		if i >= len(r) || r[i] != '=' {
			return nil, fmt.Errorf("missing \"=\" after %q", key)
		}
		i++
		skipSpaces()

		quoted := i < len(r) && r[i] == '\''
		if quoted {
			i++
		}

		closed := !quoted
	value:
		for i < len(r) {
			switch {
			case r[i] == '\\':
				i += 2
			case quoted && r[i] == '\'':
				closed = true
				i++
				break value
			case !quoted && unicode.IsSpace(r[i]):
				break value
			default:
				i++
			}
		}
		if !closed {
			return nil, fmt.Errorf("unterminated quoted value for %q", key)
		}

		keys = append(keys, key)
	}
}

func containsString(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}

	return false
}
