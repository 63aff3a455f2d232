package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by update/delete when no row matched.
var ErrNotFound = errors.New("resource not found")

// Semester is a curriculum semester grouping subjects.
type Semester struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Subject is a curriculum subject offered in a semester.
type Subject struct {
	ID         string  `json:"id"`
	SemesterID string  `json:"semester_id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Credits    float64 `json:"credits"`
}

// Material is a study resource attached to a subject.
type Material struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"file_url"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuestionPaper is a past exam paper attached to a subject.
type QuestionPaper struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"subject_id"`
	Year       int       `json:"year"`
	Term       string    `json:"term"`
	FileURL    string    `json:"file_url"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository persists the academic resource catalog in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListSemesters returns all semesters ordered by number.
func (r *Repository) ListSemesters(ctx context.Context) ([]Semester, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, name FROM semesters ORDER BY number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Semester
	for rows.Next() {
		var s Semester
		if err := rows.Scan(&s.ID, &s.Number, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateSemester inserts a semester.
func (r *Repository) CreateSemester(ctx context.Context, s Semester) (Semester, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO semesters (id, number, name) VALUES ($1, $2, $3)
	`, s.ID, s.Number, s.Name)
	return s, err
}

// UpdateSemester rewrites a semester's fields.
func (r *Repository) UpdateSemester(ctx context.Context, s Semester) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE semesters SET number = $2, name = $3 WHERE id = $1
	`, s.ID, s.Number, s.Name)
	return oneRow(res, err)
}

// DeleteSemester removes a semester; subjects cascade at the schema level.
func (r *Repository) DeleteSemester(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id)
	return oneRow(res, err)
}

// ListSubjects returns subjects, optionally filtered by semester.
func (r *Repository) ListSubjects(ctx context.Context, semesterID string) ([]Subject, error) {
	query := `SELECT id, semester_id, code, name, credits FROM subjects`
	args := []any{}
	if semesterID != "" {
		query += ` WHERE semester_id = $1`
		args = append(args, semesterID)
	}
	query += ` ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.SemesterID, &s.Code, &s.Name, &s.Credits); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateSubject inserts a subject.
func (r *Repository) CreateSubject(ctx context.Context, s Subject) (Subject, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (id, semester_id, code, name, credits)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.SemesterID, s.Code, s.Name, s.Credits)
	return s, err
}

// UpdateSubject rewrites a subject's fields.
func (r *Repository) UpdateSubject(ctx context.Context, s Subject) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subjects SET semester_id = $2, code = $3, name = $4, credits = $5
		WHERE id = $1
	`, s.ID, s.SemesterID, s.Code, s.Name, s.Credits)
	return oneRow(res, err)
}

// DeleteSubject removes a subject and cascades to its materials and papers.
func (r *Repository) DeleteSubject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	return oneRow(res, err)
}

// ListMaterials returns materials, optionally filtered by subject.
func (r *Repository) ListMaterials(ctx context.Context, subjectID string) ([]Material, error) {
	query := `SELECT id, subject_id, title, description, file_url, uploaded_by, created_at FROM materials`
	args := []any{}
	if subjectID != "" {
		query += ` WHERE subject_id = $1`
		args = append(args, subjectID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.SubjectID, &m.Title, &m.Description, &m.FileURL, &m.UploadedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMaterial inserts a material.
func (r *Repository) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO materials (id, subject_id, title, description, file_url, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.SubjectID, m.Title, m.Description, m.FileURL, m.UploadedBy)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return Material{}, err
	}
	return m, nil
}

// UpdateMaterial rewrites a material's fields.
func (r *Repository) UpdateMaterial(ctx context.Context, m Material) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE materials SET title = $2, description = $3, file_url = $4
		WHERE id = $1
	`, m.ID, m.Title, m.Description, m.FileURL)
	return oneRow(res, err)
}

// DeleteMaterial removes a material.
func (r *Repository) DeleteMaterial(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	return oneRow(res, err)
}

// ListQuestionPapers returns papers, optionally filtered by subject.
func (r *Repository) ListQuestionPapers(ctx context.Context, subjectID string) ([]QuestionPaper, error) {
	query := `SELECT id, subject_id, year, term, file_url, uploaded_by, created_at FROM question_papers`
	args := []any{}
	if subjectID != "" {
		query += ` WHERE subject_id = $1`
		args = append(args, subjectID)
	}
	query += ` ORDER BY year DESC, term`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuestionPaper
	for rows.Next() {
		var qp QuestionPaper
		if err := rows.Scan(&qp.ID, &qp.SubjectID, &qp.Year, &qp.Term, &qp.FileURL, &qp.UploadedBy, &qp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, qp)
	}
	return out, rows.Err()
}

// CreateQuestionPaper inserts a paper.
func (r *Repository) CreateQuestionPaper(ctx context.Context, qp QuestionPaper) (QuestionPaper, error) {
	if qp.ID == "" {
		qp.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO question_papers (id, subject_id, year, term, file_url, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, qp.ID, qp.SubjectID, qp.Year, qp.Term, qp.FileURL, qp.UploadedBy)
	if err := row.Scan(&qp.CreatedAt); err != nil {
		return QuestionPaper{}, err
	}
	return qp, nil
}

// UpdateQuestionPaper rewrites a paper's fields.
func (r *Repository) UpdateQuestionPaper(ctx context.Context, qp QuestionPaper) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE question_papers SET year = $2, term = $3, file_url = $4
		WHERE id = $1
	`, qp.ID, qp.Year, qp.Term, qp.FileURL)
	return oneRow(res, err)
}

// DeleteQuestionPaper removes a paper.
func (r *Repository) DeleteQuestionPaper(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM question_papers WHERE id = $1`, id)
	return oneRow(res, err)
}

func oneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
