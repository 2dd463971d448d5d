package documents

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medintake/medintake/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type documentRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &documentRepoPG{pool: pool} }

func (r *documentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const documentCols = `id, raw_text, extracted_name, extracted_national_id, extracted_birth_date,
	extraction_confidence, document_type, classification_confidence,
	match_status, matched_patient_id, candidates, uploaded_at,
	version_id, created_at, updated_at`

func (r *documentRepoPG) scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	var candidates []byte
	err := row.Scan(&d.ID, &d.RawText, &d.ExtractedName, &d.ExtractedNationalID, &d.ExtractedBirthDate,
		&d.ExtractionConfidence, &d.DocumentType, &d.ClassificationConfidence,
		&d.MatchStatus, &d.MatchedPatientID, &candidates, &d.UploadedAt,
		&d.VersionID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		if err := json.Unmarshal(candidates, &d.Candidates); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

func (r *documentRepoPG) Create(ctx context.Context, d *Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	candidates, err := json.Marshal(d.Candidates)
	if err != nil {
		return err
	}
	d.VersionID = 1
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO document (id, raw_text, extracted_name, extracted_national_id, extracted_birth_date,
			extraction_confidence, document_type, classification_confidence,
			match_status, matched_patient_id, candidates, uploaded_at, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		d.ID, d.RawText, d.ExtractedName, d.ExtractedNationalID, d.ExtractedBirthDate,
		d.ExtractionConfidence, d.DocumentType, d.ClassificationConfidence,
		d.MatchStatus, d.MatchedPatientID, candidates, d.UploadedAt, d.VersionID)
	return err
}

func (r *documentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	return r.scanDocument(r.conn(ctx).QueryRow(ctx, `SELECT `+documentCols+` FROM document WHERE id = $1`, id))
}

func (r *documentRepoPG) Update(ctx context.Context, d *Document) error {
	candidates, err := json.Marshal(d.Candidates)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE document SET match_status=$3, matched_patient_id=$4, candidates=$5,
			extracted_name=$6, extracted_national_id=$7, extracted_birth_date=$8,
			extraction_confidence=$9, document_type=$10, classification_confidence=$11,
			version_id=version_id+1, updated_at=NOW()
		WHERE id = $1 AND version_id = $2`,
		d.ID, d.VersionID, d.MatchStatus, d.MatchedPatientID, candidates,
		d.ExtractedName, d.ExtractedNationalID, d.ExtractedBirthDate,
		d.ExtractionConfidence, d.DocumentType, d.ClassificationConfidence)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	d.VersionID++
	return nil
}

func (r *documentRepoPG) List(ctx context.Context, status MatchStatus, limit, offset int) ([]*Document, int, error) {
	var (
		total int
		rows  pgx.Rows
		err   error
	)
	if status != "" {
		if err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM document WHERE match_status = $1`, status).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx, `SELECT `+documentCols+` FROM document WHERE match_status = $1 ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	} else {
		if err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM document`).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx, `SELECT `+documentCols+` FROM document ORDER BY uploaded_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Document
	for rows.Next() {
		d, err := r.scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}
