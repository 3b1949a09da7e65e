package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/feeledger/internal/models"
	"github.com/mmynk/feeledger/internal/storage"
)

const studentColumns = `id, display_name, payer_id, payer_name, payer_contact,
	monthly_price, grade_label, vehicle_ref, active, enrolled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (models.Student, error) {
	var st models.Student
	err := row.Scan(&st.ID, &st.DisplayName, &st.PayerID, &st.PayerName, &st.PayerContact,
		&st.MonthlyPrice, &st.GradeLabel, &st.VehicleRef, &st.Active, &st.EnrolledAt)
	return st, err
}

// ListStudents returns every student ordered by enrollment.
func (s *SQLiteStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+studentColumns+" FROM students ORDER BY enrolled_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}

	return students, nil
}

// GetStudent retrieves a student by ID.
func (s *SQLiteStore) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	st, err := scanStudent(s.db.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id = ?", studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %s: %w", studentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &st, nil
}

// CreateStudent persists a new student.
func (s *SQLiteStore) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.New().String()
	}
	if student.EnrolledAt == 0 {
		student.EnrolledAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID, student.DisplayName, student.PayerID, student.PayerName, student.PayerContact,
		student.MonthlyPrice, student.GradeLabel, student.VehicleRef, student.Active, student.EnrolledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("student %s: %w", student.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert student: %w", err)
	}

	return nil
}

// UpdateStudent replaces the editable fields of a student.
// EnrolledAt is kept so family order does not change.
func (s *SQLiteStore) UpdateStudent(ctx context.Context, student *models.Student) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE students SET display_name = ?, payer_id = ?, payer_name = ?, payer_contact = ?,
		 monthly_price = ?, grade_label = ?, vehicle_ref = ?, active = ?
		 WHERE id = ?`,
		student.DisplayName, student.PayerID, student.PayerName, student.PayerContact,
		student.MonthlyPrice, student.GradeLabel, student.VehicleRef, student.Active,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return expectOneRow(result, "student", student.ID)
}

// DeactivateStudent marks a student inactive.
func (s *SQLiteStore) DeactivateStudent(ctx context.Context, studentID string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE students SET active = 0 WHERE id = ?", studentID)
	if err != nil {
		return fmt.Errorf("failed to deactivate student: %w", err)
	}
	return expectOneRow(result, "student", studentID)
}

func expectOneRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, storage.ErrNotFound)
	}
	return nil
}
