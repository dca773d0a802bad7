package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopops/backoffice/internal/app/domain/attachment"
	"github.com/shopops/backoffice/internal/app/domain/task"
	"github.com/shopops/backoffice/internal/app/storage"
)

// --- TaskStore --------------------------------------------------------------

func (s *Store) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, labels, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, pq.Array(t.Labels),
		toNullTime(t.DueDate), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return task.Task{}, mapErr(err)
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	existing, err := s.GetTask(ctx, t.ID)
	if err != nil {
		return task.Task{}, err
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, labels = $6,
			due_date = $7, updated_at = $8
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, pq.Array(t.Labels),
		toNullTime(t.DueDate), t.UpdatedAt)
	if err != nil {
		return task.Task{}, mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return task.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func scanTask(row interface{ Scan(...any) error }) (task.Task, error) {
	var (
		t       task.Task
		labels  pq.StringArray
		dueDate sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &labels,
		&dueDate, &t.CreatedAt, &t.UpdatedAt)
	t.Labels = []string(labels)
	if dueDate.Valid {
		t.DueDate = dueDate.Time.UTC()
	}
	return t, err
}

func (s *Store) GetTask(ctx context.Context, id string) (task.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, priority, labels, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`, id)
	t, err := scanTask(row)
	if err != nil {
		return task.Task{}, mapErr(err)
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, priority, labels, due_date, created_at, updated_at
		FROM tasks
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- AttachmentStore --------------------------------------------------------

func (s *Store) CreateAttachment(ctx context.Context, a attachment.Attachment) (attachment.Attachment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (id, original_name, mime_type, size, folder, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.OriginalName, a.MimeType, a.Size, a.Folder, a.URL, a.CreatedAt)
	if err != nil {
		return attachment.Attachment{}, mapErr(err)
	}
	return a, nil
}

func (s *Store) GetAttachment(ctx context.Context, id string) (attachment.Attachment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, original_name, mime_type, size, folder, url, created_at
		FROM attachments
		WHERE id = $1
	`, id)

	var a attachment.Attachment
	if err := row.Scan(&a.ID, &a.OriginalName, &a.MimeType, &a.Size, &a.Folder, &a.URL, &a.CreatedAt); err != nil {
		return attachment.Attachment{}, mapErr(err)
	}
	return a, nil
}

func (s *Store) ListAttachments(ctx context.Context, folder string) ([]attachment.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original_name, mime_type, size, folder, url, created_at
		FROM attachments
		WHERE $1 = '' OR folder = $1
		ORDER BY created_at DESC
	`, folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []attachment.Attachment
	for rows.Next() {
		var a attachment.Attachment
		if err := rows.Scan(&a.ID, &a.OriginalName, &a.MimeType, &a.Size, &a.Folder, &a.URL, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAttachment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
