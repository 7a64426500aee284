package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/example/microstore-service/internal/domain"
)

// Postgres — хранилище документов на одной таблице с jsonb-телом.
// Фильтры-равенства транслируются в containment (@>), порядок вставки
// обеспечивает колонка seq.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{Pool: pool}
}

// EnsureSchema — создать необходимые таблицы, если отсутствуют.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS documents (
  collection text NOT NULL,
  id text NOT NULL,
  seq bigserial,
  doc jsonb NOT NULL,
  PRIMARY KEY (collection, id)
);`)
	return errors.Wrap(domain.StorageFailure(err), "ensure schema")
}

var identPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// EnsureUniqueField — частичный уникальный индекс по полю документов
// коллекции. Гонка check-then-act на уровне приложения закрывается здесь.
func (s *Postgres) EnsureUniqueField(ctx context.Context, collection, field string) error {
	if !identPattern.MatchString(collection) || !identPattern.MatchString(field) {
		return errors.Errorf("unsafe identifier %q.%q", collection, field)
	}
	stmt := fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_documents_%s_%s ON documents ((doc->>'%s')) WHERE collection = '%s'`,
		collection, field, field, collection)
	_, err := s.Pool.Exec(ctx, stmt)
	return errors.Wrap(domain.StorageFailure(err), "ensure unique index")
}

func (s *Postgres) Create(ctx context.Context, collection string, doc domain.Document) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO documents(collection, id, doc) VALUES($1, $2, $3)`,
		collection, id, raw)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.Duplicate("duplicate value for unique field")
		}
		return "", domain.StorageFailure(err)
	}
	return id, nil
}

func (s *Postgres) FindOne(ctx context.Context, collection string, filter domain.Filter) (domain.Document, bool, error) {
	where, args, err := buildWhere(collection, filter)
	if err != nil {
		return nil, false, err
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT id, doc FROM documents WHERE `+where+` ORDER BY seq LIMIT 1`, args...)
	var id string
	var raw []byte
	if err := row.Scan(&id, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, domain.StorageFailure(err)
	}
	doc, err := decodeDoc(id, raw)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *Postgres) FindMany(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
	where, args, err := buildWhere(collection, filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, doc FROM documents WHERE `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}
	defer rows.Close()
	var out []domain.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, domain.StorageFailure(err)
		}
		doc, err := decodeDoc(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, errors.Wrap(domain.StorageFailure(rows.Err()), "find many")
}

func (s *Postgres) UpdateOne(ctx context.Context, collection, id string, set domain.Document) (bool, error) {
	raw, err := json.Marshal(set)
	if err != nil {
		return false, err
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE documents SET doc = doc || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, raw)
	if err != nil {
		return false, domain.StorageFailure(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return domain.StorageFailure(s.Pool.Ping(ctx))
}

// buildWhere собирает условие: равенства полей через jsonb containment,
// ключ "id" — по колонке идентификатора.
func buildWhere(collection string, filter domain.Filter) (string, []any, error) {
	clauses := []string{"collection = $1"}
	args := []any{collection}
	contains := domain.Document{}
	for k, v := range filter {
		if k == "id" {
			args = append(args, v)
			clauses = append(clauses, fmt.Sprintf("id = $%d", len(args)))
			continue
		}
		contains[k] = v
	}
	if len(contains) > 0 {
		raw, err := json.Marshal(contains)
		if err != nil {
			return "", nil, err
		}
		args = append(args, raw)
		clauses = append(clauses, fmt.Sprintf("doc @> $%d::jsonb", len(args)))
	}
	return strings.Join(clauses, " AND "), args, nil
}

func decodeDoc(id string, raw []byte) (domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	doc["id"] = id
	return doc, nil
}

var _ domain.DocumentStore = (*Postgres)(nil)
