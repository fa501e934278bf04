package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/interntrack/pkg/models"
)

// resume bytes are never selected here; GetResume loads them on demand.
const internshipColumns = `id, user_id, company, position, application_date, status, follow_up_date,
	follow_up_dismissed, archived, resume_content_type, resume_file_name, length(resume_data), comments, created, updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInternship(s rowScanner) (*models.Internship, error) {
	var (
		in          models.Internship
		appDate     int64
		followUp    sql.NullInt64
		dismissed   int
		archived    int
		contentType sql.NullString
		fileName    sql.NullString
		resumeSize  sql.NullInt64
		status      string
	)
	if err := s.Scan(&in.ID, &in.UserID, &in.Company, &in.Position, &appDate, &status, &followUp,
		&dismissed, &archived, &contentType, &fileName, &resumeSize, &in.Comments, &in.Created, &in.Updated); err != nil {
		return nil, err
	}

	in.ApplicationDate = fromMillis(appDate)
	in.Status = models.Status(status)
	if followUp.Valid {
		t := fromMillis(followUp.Int64)
		in.FollowUpDate = &t
	}
	in.FollowUpDismissed = dismissed != 0
	in.Archived = archived != 0
	if resumeSize.Valid && resumeSize.Int64 > 0 {
		in.Resume = &models.Resume{ContentType: contentType.String, FileName: fileName.String, Size: resumeSize.Int64}
	}
	in.Links = []models.Link{}
	return &in, nil
}

func nullableMillis(in *models.Internship) any {
	if in.FollowUpDate == nil {
		return nil
	}
	return toMillis(*in.FollowUpDate)
}

func (r *SQLiteRepo) CreateInternship(ctx context.Context, in *models.Internship) (string, error) {
	if in == nil {
		return "", fmt.Errorf("create internship: %w", errNilArg)
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("create internship: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := newID()
	ts := now()

	var resumeData, resumeType, resumeName any
	if in.Resume != nil && len(in.Resume.Data) > 0 {
		resumeData, resumeType, resumeName = in.Resume.Data, in.Resume.ContentType, in.Resume.FileName
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO internships (id, user_id, company, position, application_date, status, follow_up_date,
		follow_up_dismissed, archived, resume_data, resume_content_type, resume_file_name, comments, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.UserID, in.Company, in.Position, toMillis(in.ApplicationDate), string(in.Status), nullableMillis(in),
		boolToInt(in.FollowUpDismissed), boolToInt(in.Archived), resumeData, resumeType, resumeName, in.Comments, ts, ts)
	if err != nil {
		return "", mapErr("insert internship", err)
	}

	if err := insertLinks(ctx, tx, id, in.Links); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	in.ID = id
	in.Created = ts
	in.Updated = ts
	if in.Resume != nil {
		in.Resume.Size = int64(len(in.Resume.Data))
	}
	return id, nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, internshipID string, links []models.Link) error {
	for i, l := range links {
		if _, err := tx.ExecContext(ctx, `INSERT INTO internship_links (internship_id, position, label, url) VALUES (?, ?, ?, ?)`,
			internshipID, i, l.Label, l.URL); err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
	}
	return nil
}

// GetInternship returns the record only when it belongs to userID.
func (r *SQLiteRepo) GetInternship(ctx context.Context, userID, id string) (*models.Internship, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+internshipColumns+` FROM internships WHERE id = ? AND user_id = ?`, id, userID)
	in, err := scanInternship(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("internship", id)
		}
		return nil, fmt.Errorf("get internship: %w", err)
	}

	links, err := r.linksFor(ctx, `SELECT internship_id, label, url FROM internship_links WHERE internship_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	in.Links = append(in.Links, links[id]...)
	return in, nil
}

// ListInternshipsByUser returns the owner's records in creation order.
func (r *SQLiteRepo) ListInternshipsByUser(ctx context.Context, userID string) ([]models.Internship, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+internshipColumns+` FROM internships WHERE user_id = ? ORDER BY created, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}

	var out []models.Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan internship: %w", err)
		}
		out = append(out, *in)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list internships: %w", err)
	}
	// release the connection before the links query
	rows.Close()

	links, err := r.linksFor(ctx, `SELECT l.internship_id, l.label, l.url FROM internship_links l
		JOIN internships i ON i.id = l.internship_id WHERE i.user_id = ? ORDER BY l.internship_id, l.position`, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Links = append(out[i].Links, links[out[i].ID]...)
	}

	return out, nil
}

func (r *SQLiteRepo) linksFor(ctx context.Context, query string, arg string) (map[string][]models.Link, error) {
	rows, err := r.conn.QueryRows(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Link)
	for rows.Next() {
		var id string
		var l models.Link
		if err := rows.Scan(&id, &l.Label, &l.URL); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		out[id] = append(out[id], l)
	}
	return out, rows.Err()
}

// UpdateInternship replaces every editable column and the link list. The
// resume is managed separately through SetResume.
func (r *SQLiteRepo) UpdateInternship(ctx context.Context, in *models.Internship) error {
	if in == nil {
		return fmt.Errorf("update internship: %w", errNilArg)
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update internship: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	res, err := tx.ExecContext(ctx, `UPDATE internships SET company = ?, position = ?, application_date = ?, status = ?,
		follow_up_date = ?, follow_up_dismissed = ?, archived = ?, comments = ?, updated = ? WHERE id = ? AND user_id = ?`,
		in.Company, in.Position, toMillis(in.ApplicationDate), string(in.Status), nullableMillis(in),
		boolToInt(in.FollowUpDismissed), boolToInt(in.Archived), in.Comments, ts, in.ID, in.UserID)
	if err != nil {
		return mapErr("update internship", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("internship", in.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM internship_links WHERE internship_id = ?`, in.ID); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	if err := insertLinks(ctx, tx, in.ID, in.Links); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	in.Updated = ts
	return nil
}

func (r *SQLiteRepo) SetResume(ctx context.Context, userID, id string, res *models.Resume) error {
	if res == nil {
		return fmt.Errorf("set resume: %w", errNilArg)
	}

	out, err := r.conn.Exec(ctx, `UPDATE internships SET resume_data = ?, resume_content_type = ?, resume_file_name = ?, updated = ? WHERE id = ? AND user_id = ?`,
		res.Data, res.ContentType, res.FileName, now(), id, userID)
	if err != nil {
		return fmt.Errorf("set resume: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return notFound("internship", id)
	}
	return nil
}

// GetResume returns ErrNotFound when the record is missing or has no resume.
func (r *SQLiteRepo) GetResume(ctx context.Context, userID, id string) (*models.Resume, error) {
	row := r.conn.QueryRow(ctx, `SELECT resume_data, resume_content_type, resume_file_name FROM internships WHERE id = ? AND user_id = ?`, id, userID)
	var (
		data        []byte
		contentType sql.NullString
		fileName    sql.NullString
	)
	if err := row.Scan(&data, &contentType, &fileName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("internship", id)
		}
		return nil, fmt.Errorf("get resume: %w", err)
	}
	if len(data) == 0 {
		return nil, notFound("resume", id)
	}
	return &models.Resume{Data: data, ContentType: contentType.String, FileName: fileName.String, Size: int64(len(data))}, nil
}

func (r *SQLiteRepo) DeleteInternship(ctx context.Context, userID, id string) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete internship: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM internships WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete internship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("internship", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM internship_links WHERE internship_id = ?`, id); err != nil {
		return fmt.Errorf("delete links: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteRepo) DeleteInternshipsByUser(ctx context.Context, userID string) (int64, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("delete internships: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM internship_links WHERE internship_id IN (SELECT id FROM internships WHERE user_id = ?)`, userID); err != nil {
		return 0, fmt.Errorf("delete links: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM internships WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete internships: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}
