package clients

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
)

// DefaultTable is the table MySQL reads clients from.
const DefaultTable = "clients"

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// MySQL reads and inserts clients in an existing table with the columns
// id, given_names, surnames, national_id, phone, email, risk_tier and
// credit_ceiling. The schema is owned elsewhere.
type MySQL struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// OpenDB opens a pool for a mariadb:// or mysql:// URL, or a native driver
// DSN. The returned string is the driver DSN actually used.
func OpenDB(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

// toMySQLDSN turns a mariadb:// or mysql:// URL into a driver DSN. Query
// parameters on the URL are kept, except the time handling ones the store
// depends on. Native DSNs pass through unchanged.
func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		cfg := mysql.NewConfig()
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if cfg.User == "" || cfg.Addr == "" || cfg.DBName == "" {
			return "", fmt.Errorf("incomplete dsn: user, host and database are required")
		}
		cfg.ParseTime = true
		cfg.Loc = time.Local
		cfg.InterpolateParams = true
		for k, v := range u.Query() {
			if len(v) == 0 {
				continue
			}
			switch k {
			case "parseTime", "loc", "interpolateParams":
			case "tls":
				cfg.TLSConfig = v[len(v)-1]
			default:
				if cfg.Params == nil {
					cfg.Params = map[string]string{}
				}
				cfg.Params[k] = v[len(v)-1]
			}
		}
		return cfg.FormatDSN(), nil
	}
	if dsn == "" {
		return "", fmt.Errorf("empty dsn")
	}
	return dsn, nil
}

// NewMySQL wraps an open pool. An empty table means DefaultTable.
func NewMySQL(db *sql.DB, table string, logger *zap.Logger) (*MySQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQL{db: db, table: table, logger: logger}, nil
}

// Ping checks connectivity.
func (m *MySQL) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Close releases the pool.
func (m *MySQL) Close() error {
	return m.db.Close()
}

func (m *MySQL) List(ctx context.Context) ([]catalog.Client, error) {
	q := fmt.Sprintf(`
		SELECT id, given_names, surnames, national_id,
		       COALESCE(phone, ''), COALESCE(email, ''),
		       COALESCE(risk_tier, 'GREEN'), COALESCE(credit_ceiling, 0)
		FROM %s
		ORDER BY surnames, given_names`, m.table)

	start := time.Now()
	rows, err := m.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []catalog.Client
	for rows.Next() {
		var c catalog.Client
		var tier string
		if err := rows.Scan(&c.ID, &c.GivenNames, &c.Surnames, &c.NationalID,
			&c.Phone, &c.Email, &tier, &c.CreditCeiling); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		if t, ok := catalog.ParseTier(tier); ok && t != catalog.TierAll {
			c.RiskTier = t
		} else {
			m.logger.Warn("unknown risk tier, defaulting to GREEN", zap.String("client_id", c.ID), zap.String("tier", tier))
			c.RiskTier = catalog.TierGreen
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	m.logger.Debug("clients listed from mysql",
		zap.Int("count", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (m *MySQL) Create(ctx context.Context, nc NewClient) (catalog.Client, error) {
	if err := nc.Validate(); err != nil {
		return catalog.Client{}, err
	}
	c := nc.build()

	q := fmt.Sprintf(`
		INSERT INTO %s (id, given_names, surnames, national_id, phone, email, risk_tier, credit_ceiling)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, m.table)
	if _, err := m.db.ExecContext(ctx, q, c.ID, c.GivenNames, c.Surnames, c.NationalID,
		c.Phone, c.Email, string(c.RiskTier), c.CreditCeiling); err != nil {
		return catalog.Client{}, fmt.Errorf("insert client: %w", err)
	}

	m.logger.Info("client inserted", zap.String("client_id", c.ID), zap.String("table", m.table))
	return c, nil
}
