package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/terminally-online/tokenlist/internal/tokenlist"
)

const publicationsTable = "tokenlist_publications"

type Publication struct {
	Table       string
	Checksum    string
	TokenCount  int
	PublishedAt time.Time
}

// Row is one token as stored in the registry table.
type Row struct {
	ID        string
	Symbol    string
	Name      string
	Logo      string
	UpdatedAt time.Time
	Body      json.RawMessage
}

type Status struct {
	Last     *Publication
	Checksum string
	Changed  bool
}

func Checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DocumentChecksum hashes the canonical encoding of doc, so formatting
// differences in the source file do not count as changes.
func DocumentChecksum(doc *tokenlist.Document) string {
	return Checksum(doc.Encode())
}

// Rows converts a document into registry rows. The document must pass
// validation and every token must carry an id.
func Rows(doc *tokenlist.Document) ([]Row, error) {
	if err := tokenlist.Validate(doc).Err(); err != nil {
		return nil, err
	}

	tokens, err := doc.Tokens()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(tokens))
	for _, tok := range tokens {
		id, ok := tok.ID()
		if !ok {
			return nil, fmt.Errorf("%s has no id (run assign-ids first)", tok.Path())
		}
		symbol, _ := tok.Symbol()
		name, _ := tok.Name()
		logo, _ := tok.Logo()
		ts, _ := tok.Timestamp()

		updatedAt, err := time.Parse(tokenlist.TimestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tok.Field(tokenlist.FieldTimestamp), err)
		}

		rows = append(rows, Row{
			ID:        id,
			Symbol:    symbol,
			Name:      name,
			Logo:      logo,
			UpdatedAt: updatedAt,
			Body:      tok.JSON(),
		})
	}

	return rows, nil
}

func EnsureTables(ctx context.Context, conn *pgx.Conn, table string) error {
	ident := pgx.Identifier{table}.Sanitize()

	if _, err := conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			name TEXT NOT NULL,
			logo TEXT,
			updated_at TIMESTAMPTZ NOT NULL,
			body JSONB NOT NULL
		)
	`, ident)); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	_, err := conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			table_name TEXT NOT NULL,
			checksum TEXT NOT NULL,
			token_count INTEGER NOT NULL,
			published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, publicationsTable))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", publicationsTable, err)
	}
	return nil
}

// Publish replaces the contents of table with the tokens of doc and records
// the publication, all in one transaction.
func Publish(ctx context.Context, databaseURL, table string, doc *tokenlist.Document) (*Publication, error) {
	rows, err := Rows(doc)
	if err != nil {
		return nil, err
	}
	checksum := DocumentChecksum(doc)

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	if err := EnsureTables(ctx, conn, table); err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{table}.Sanitize()
	upsert := fmt.Sprintf(`
		INSERT INTO %s (id, symbol, name, logo, updated_at, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			logo = EXCLUDED.logo,
			updated_at = EXCLUDED.updated_at,
			body = EXCLUDED.body
	`, ident)

	slog.DebugContext(ctx, "upserting tokens", "table", table, "count", len(rows))

	batch := &pgx.Batch{}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		var logo any
		if r.Logo != "" {
			logo = r.Logo
		}
		batch.Queue(upsert, r.ID, r.Symbol, r.Name, logo, r.UpdatedAt, r.Body)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range rows {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("failed to upsert token %s: %w", rows[i].ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to upsert tokens: %w", err)
	}

	tag, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE NOT (id = ANY($1))`, ident), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to remove stale tokens: %w", err)
	}
	slog.DebugContext(ctx, "removed stale tokens", "table", table, "count", tag.RowsAffected())

	pub := &Publication{Table: table, Checksum: checksum, TokenCount: len(rows)}
	if err := tx.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (table_name, checksum, token_count) VALUES ($1, $2, $3)
		RETURNING published_at
	`, publicationsTable), table, checksum, len(rows)).Scan(&pub.PublishedAt); err != nil {
		return nil, fmt.Errorf("failed to record publication: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit publication: %w", err)
	}
	return pub, nil
}

// LastPublished returns the most recent publication into table, or nil when
// nothing was published yet.
func LastPublished(ctx context.Context, databaseURL, table string) (*Publication, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	if err := EnsureTables(ctx, conn, table); err != nil {
		return nil, err
	}

	pub := Publication{Table: table}
	err = conn.QueryRow(ctx, fmt.Sprintf(`
		SELECT checksum, token_count, published_at
		FROM %s
		WHERE table_name = $1
		ORDER BY id DESC
		LIMIT 1
	`, publicationsTable), table).Scan(&pub.Checksum, &pub.TokenCount, &pub.PublishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query publications: %w", err)
	}
	return &pub, nil
}

func GetStatus(ctx context.Context, databaseURL, table string, doc *tokenlist.Document) (*Status, error) {
	checksum := DocumentChecksum(doc)

	last, err := LastPublished(ctx, databaseURL, table)
	if err != nil {
		return nil, err
	}

	return &Status{
		Last:     last,
		Checksum: checksum,
		Changed:  last == nil || last.Checksum != checksum,
	}, nil
}
