package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/internal/domain/repositories"
	"github.com/sehat-ai/sehat-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

// SearchHistoryAdapter implements search history persistence in
// Postgres. The triage result is stored as a JSONB document since its
// shape follows the classifier output, not a relational schema.
type SearchHistoryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchHistoryAdapter creates a new search history adapter.
func NewSearchHistoryAdapter(client *postgres.Client) repositories.SearchHistoryRepository {
	return &SearchHistoryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Save stores one search record.
func (a *SearchHistoryAdapter) Save(ctx context.Context, record *entities.SearchRecord) error {
	result, err := json.Marshal(record.Result)
	if err != nil {
		return apperrors.NewInternalError("failed to encode triage result", err)
	}

	row := goqu.Record{
		"id":         record.ID,
		"user_id":    record.UserID,
		"symptoms":   record.Symptoms,
		"result":     result,
		"latitude":   sql.NullFloat64{},
		"longitude":  sql.NullFloat64{},
		"created_at": record.CreatedAt,
	}
	if record.Location != nil {
		row["latitude"] = sql.NullFloat64{Float64: record.Location.Latitude, Valid: true}
		row["longitude"] = sql.NullFloat64{Float64: record.Location.Longitude, Valid: true}
	}

	query, args, err := a.db.Insert("searches").Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build search insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save search record", err)
	}
	return nil
}

// ListByUser returns the user's most recent searches, newest first.
func (a *SearchHistoryAdapter) ListByUser(ctx context.Context, userID string, limit int) ([]*entities.SearchRecord, error) {
	query, args, err := a.db.From("searches").
		Select("id", "user_id", "symptoms", "result", "latitude", "longitude", "created_at").
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search history query", err)
	}

	return a.queryRecords(ctx, query, args)
}

// ListLocatedSince returns located records created at or after the
// cutoff.
func (a *SearchHistoryAdapter) ListLocatedSince(ctx context.Context, since time.Time) ([]*entities.SearchRecord, error) {
	query, args, err := a.db.From("searches").
		Select("id", "user_id", "symptoms", "result", "latitude", "longitude", "created_at").
		Where(
			goqu.C("created_at").Gte(since),
			goqu.C("latitude").IsNotNull(),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build located searches query", err)
	}

	return a.queryRecords(ctx, query, args)
}

func (a *SearchHistoryAdapter) queryRecords(ctx context.Context, query string, args []interface{}) ([]*entities.SearchRecord, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query search records", err)
	}
	defer rows.Close()

	var records []*entities.SearchRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate search records", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (*entities.SearchRecord, error) {
	var (
		record   entities.SearchRecord
		result   []byte
		lat, lng sql.NullFloat64
	)

	if err := rows.Scan(&record.ID, &record.UserID, &record.Symptoms, &result, &lat, &lng, &record.CreatedAt); err != nil {
		return nil, apperrors.NewInternalError("failed to scan search record", err)
	}

	if err := json.Unmarshal(result, &record.Result); err != nil {
		return nil, apperrors.NewInternalError("failed to decode triage result", err)
	}
	if lat.Valid && lng.Valid {
		record.Location = &entities.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}

	return &record, nil
}
