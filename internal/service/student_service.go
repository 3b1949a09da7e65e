package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/models"
	"github.com/mmynk/feeledger/internal/storage"
	"github.com/mmynk/feeledger/pkg/api"
)

// StudentService implements the Connect StudentService.
type StudentService struct {
	store storage.Store
}

// NewStudentService creates a new StudentService with the given storage backend.
func NewStudentService(store storage.Store) *StudentService {
	return &StudentService{store: store}
}

func validateStudent(st *models.Student) error {
	st.DisplayName = strings.TrimSpace(st.DisplayName)
	st.PayerName = strings.TrimSpace(st.PayerName)
	st.PayerID = strings.TrimSpace(st.PayerID)

	if st.DisplayName == "" {
		return &calculator.ValidationError{Field: "display_name", Reason: "must not be empty"}
	}
	if st.PayerName == "" && st.PayerID == "" {
		return &calculator.ValidationError{Field: "payer_name", Reason: "a payer name or payer ID is required"}
	}
	if st.MonthlyPrice.IsNegative() {
		return &calculator.ValidationError{Field: "monthly_price", Reason: "must not be negative"}
	}
	return nil
}

// ListStudents returns students in enrollment order, active ones only unless asked otherwise.
func (s *StudentService) ListStudents(ctx context.Context, req *connect.Request[api.ListStudentsRequest]) (*connect.Response[api.ListStudentsResponse], error) {
	slog.Info("ListStudents request received", "include_inactive", req.Msg.IncludeInactive)

	students, err := s.store.ListStudents(ctx)
	if err != nil {
		slog.Error("ListStudents failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Student, 0, len(students))
	for _, st := range students {
		if !st.Active && !req.Msg.IncludeInactive {
			continue
		}
		out = append(out, toAPIStudent(st))
	}

	slog.Info("ListStudents successful", "count", len(out))

	return connect.NewResponse(&api.ListStudentsResponse{Students: out}), nil
}

// EnrollStudent creates a new active student.
func (s *StudentService) EnrollStudent(ctx context.Context, req *connect.Request[api.EnrollStudentRequest]) (*connect.Response[api.EnrollStudentResponse], error) {
	slog.Info("EnrollStudent request received",
		"display_name", req.Msg.Student.DisplayName,
		"payer_id", req.Msg.Student.PayerID,
	)

	st := fromAPIStudent(req.Msg.Student)
	st.ID = ""
	st.Active = true
	if err := validateStudent(&st); err != nil {
		return nil, toConnectError(err)
	}

	// Save to storage (generates ID and EnrolledAt)
	if err := s.store.CreateStudent(ctx, &st); err != nil {
		slog.Error("EnrollStudent failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Student enrolled", "student_id", st.ID)

	return connect.NewResponse(&api.EnrollStudentResponse{Student: toAPIStudent(st)}), nil
}

// UpdateStudent replaces a student's editable fields.
func (s *StudentService) UpdateStudent(ctx context.Context, req *connect.Request[api.UpdateStudentRequest]) (*connect.Response[api.UpdateStudentResponse], error) {
	slog.Info("UpdateStudent request received", "student_id", req.Msg.Student.ID)

	st := fromAPIStudent(req.Msg.Student)
	if err := validateStudent(&st); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateStudent(ctx, &st); err != nil {
		slog.Error("UpdateStudent failed", "student_id", st.ID, "error", err)
		return nil, toConnectError(err)
	}

	// Re-read so the response carries the stored enrollment time.
	updated, err := s.store.GetStudent(ctx, st.ID)
	if err != nil {
		slog.Error("UpdateStudent failed", "student_id", st.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UpdateStudentResponse{Student: toAPIStudent(*updated)}), nil
}

// DeactivateStudent marks a student inactive. Payment history is kept.
func (s *StudentService) DeactivateStudent(ctx context.Context, req *connect.Request[api.DeactivateStudentRequest]) (*connect.Response[api.DeactivateStudentResponse], error) {
	slog.Info("DeactivateStudent request received", "student_id", req.Msg.StudentID)

	if err := s.store.DeactivateStudent(ctx, req.Msg.StudentID); err != nil {
		slog.Error("DeactivateStudent failed", "student_id", req.Msg.StudentID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Student deactivated", "student_id", req.Msg.StudentID)

	return connect.NewResponse(&api.DeactivateStudentResponse{}), nil
}
