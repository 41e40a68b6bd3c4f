package database

import (
	"context"
	"fmt"
	"strings"
)

var _ RecordRepository = (*RecordRepo)(nil)

const newsColumns = `id, COALESCE(title, ''), COALESCE(publication_date, ''), COALESCE(source, ''),
	COALESCE(news_url, ''), COALESCE(summary, ''), COALESCE(country, ''), COALESCE(author, ''),
	COALESCE(category, ''), guid, COALESCE(image_url, ''), COALESCE(language, ''), scraped_timestamp`

type RecordRepo struct {
	db *DB
}

func NewRecordRepository(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// UpsertRecord inserts the item or overwrites the row sharing its guid.
// Blank values are stored as NULL.
func (r *RecordRepo) UpsertRecord(ctx context.Context, item NewsItem) error {
	if item.GUID == "" {
		return fmt.Errorf("failed to upsert record: guid is required")
	}

	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO news_feed (
			title, publication_date, source, news_url, summary, country,
			author, category, guid, image_url, language, scraped_timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (guid) DO UPDATE SET
			title = excluded.title,
			publication_date = excluded.publication_date,
			source = excluded.source,
			news_url = excluded.news_url,
			summary = excluded.summary,
			country = excluded.country,
			author = excluded.author,
			category = excluded.category,
			image_url = excluded.image_url,
			language = excluded.language,
			scraped_timestamp = excluded.scraped_timestamp
	`), nullable(item.Title), nullable(item.PublicationDate), nullable(item.Source),
		nullable(item.NewsURL), nullable(item.Summary), nullable(item.Country),
		nullable(item.Author), nullable(item.Category), item.GUID,
		nullable(item.ImageURL), nullable(item.Language), item.ScrapedTimestamp)

	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", item.GUID, err)
	}

	return nil
}

// ListRecords returns matching items, newest scrape first.
func (r *RecordRepo) ListRecords(ctx context.Context, q Query) ([]NewsItem, error) {
	where, args := q.where()

	query := "SELECT " + newsColumns + " FROM news_feed" + where +
		" ORDER BY scraped_timestamp DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, max(q.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	items := make([]NewsItem, 0)
	for rows.Next() {
		var item NewsItem
		err := rows.Scan(
			&item.ID, &item.Title, &item.PublicationDate, &item.Source,
			&item.NewsURL, &item.Summary, &item.Country, &item.Author,
			&item.Category, &item.GUID, &item.ImageURL, &item.Language, &item.ScrapedTimestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	return items, nil
}

func (r *RecordRepo) CountRecords(ctx context.Context, q Query) (int, error) {
	where, args := q.where()

	var count int
	err := r.db.QueryRowContext(ctx, r.db.rebind("SELECT COUNT(*) FROM news_feed"+where), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func (r *RecordRepo) LatestRecords(ctx context.Context, limit int) ([]NewsItem, error) {
	return r.ListRecords(ctx, Query{Limit: limit})
}

// CountsBy groups non-NULL values of column, most frequent first.
func (r *RecordRepo) CountsBy(ctx context.Context, column string) ([]Count, error) {
	if !groupableColumns[column] {
		return nil, fmt.Errorf("cannot group by column %q", column)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS total
		FROM news_feed
		WHERE %[1]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY total DESC, %[1]s ASC
	`, column))
	if err != nil {
		return nil, fmt.Errorf("failed to count records by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make([]Count, 0)
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Value, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}

	return counts, nil
}

func (r *RecordRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (q Query) where() (string, []any) {
	var conditions []string
	var args []any

	equal := []struct {
		column string
		value  string
	}{
		{ColumnCategory, q.Category},
		{ColumnSource, q.Source},
		{ColumnCountry, q.Country},
		{ColumnLanguage, q.Language},
		{ColumnAuthor, q.Author},
	}
	for _, f := range equal {
		if f.value != "" {
			conditions = append(conditions, f.column+" = ?")
			args = append(args, f.value)
		}
	}

	if q.TitleContains != "" {
		conditions = append(conditions, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q.TitleContains))+"%")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
