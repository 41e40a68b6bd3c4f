package database

import "context"

type RecordRepository interface {
	UpsertRecord(ctx context.Context, item NewsItem) error
	ListRecords(ctx context.Context, q Query) ([]NewsItem, error)
	CountRecords(ctx context.Context, q Query) (int, error)
	LatestRecords(ctx context.Context, limit int) ([]NewsItem, error)
	CountsBy(ctx context.Context, column string) ([]Count, error)
	Ping(ctx context.Context) error
}
