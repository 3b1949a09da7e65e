package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// StudentServiceName is the fully-qualified name of the StudentService.
	StudentServiceName = "feeledger.v1.StudentService"
)

// Procedure paths of the StudentService.
const (
	StudentServiceListStudentsProcedure      = "/feeledger.v1.StudentService/ListStudents"
	StudentServiceEnrollStudentProcedure     = "/feeledger.v1.StudentService/EnrollStudent"
	StudentServiceUpdateStudentProcedure     = "/feeledger.v1.StudentService/UpdateStudent"
	StudentServiceDeactivateStudentProcedure = "/feeledger.v1.StudentService/DeactivateStudent"
)

// StudentServiceHandler is implemented by the server side of StudentService.
type StudentServiceHandler interface {
	ListStudents(context.Context, *connect.Request[ListStudentsRequest]) (*connect.Response[ListStudentsResponse], error)
	EnrollStudent(context.Context, *connect.Request[EnrollStudentRequest]) (*connect.Response[EnrollStudentResponse], error)
	UpdateStudent(context.Context, *connect.Request[UpdateStudentRequest]) (*connect.Response[UpdateStudentResponse], error)
	DeactivateStudent(context.Context, *connect.Request[DeactivateStudentRequest]) (*connect.Response[DeactivateStudentResponse], error)
}

// NewStudentServiceHandler builds an HTTP handler serving every StudentService
// procedure. It returns the path prefix to mount the handler on.
func NewStudentServiceHandler(svc StudentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(StudentServiceListStudentsProcedure, connect.NewUnaryHandler(StudentServiceListStudentsProcedure, svc.ListStudents, opts...))
	mux.Handle(StudentServiceEnrollStudentProcedure, connect.NewUnaryHandler(StudentServiceEnrollStudentProcedure, svc.EnrollStudent, opts...))
	mux.Handle(StudentServiceUpdateStudentProcedure, connect.NewUnaryHandler(StudentServiceUpdateStudentProcedure, svc.UpdateStudent, opts...))
	mux.Handle(StudentServiceDeactivateStudentProcedure, connect.NewUnaryHandler(StudentServiceDeactivateStudentProcedure, svc.DeactivateStudent, opts...))

	return "/" + StudentServiceName + "/", mux
}

// StudentServiceClient calls a remote StudentService.
type StudentServiceClient struct {
	listStudents      *connect.Client[ListStudentsRequest, ListStudentsResponse]
	enrollStudent     *connect.Client[EnrollStudentRequest, EnrollStudentResponse]
	updateStudent     *connect.Client[UpdateStudentRequest, UpdateStudentResponse]
	deactivateStudent *connect.Client[DeactivateStudentRequest, DeactivateStudentResponse]
}

// NewStudentServiceClient constructs a client for the StudentService at baseURL.
func NewStudentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *StudentServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &StudentServiceClient{
		listStudents:      connect.NewClient[ListStudentsRequest, ListStudentsResponse](httpClient, baseURL+StudentServiceListStudentsProcedure, opts...),
		enrollStudent:     connect.NewClient[EnrollStudentRequest, EnrollStudentResponse](httpClient, baseURL+StudentServiceEnrollStudentProcedure, opts...),
		updateStudent:     connect.NewClient[UpdateStudentRequest, UpdateStudentResponse](httpClient, baseURL+StudentServiceUpdateStudentProcedure, opts...),
		deactivateStudent: connect.NewClient[DeactivateStudentRequest, DeactivateStudentResponse](httpClient, baseURL+StudentServiceDeactivateStudentProcedure, opts...),
	}
}

func (c *StudentServiceClient) ListStudents(ctx context.Context, req *connect.Request[ListStudentsRequest]) (*connect.Response[ListStudentsResponse], error) {
	return c.listStudents.CallUnary(ctx, req)
}

func (c *StudentServiceClient) EnrollStudent(ctx context.Context, req *connect.Request[EnrollStudentRequest]) (*connect.Response[EnrollStudentResponse], error) {
	return c.enrollStudent.CallUnary(ctx, req)
}

func (c *StudentServiceClient) UpdateStudent(ctx context.Context, req *connect.Request[UpdateStudentRequest]) (*connect.Response[UpdateStudentResponse], error) {
	return c.updateStudent.CallUnary(ctx, req)
}

func (c *StudentServiceClient) DeactivateStudent(ctx context.Context, req *connect.Request[DeactivateStudentRequest]) (*connect.Response[DeactivateStudentResponse], error) {
	return c.deactivateStudent.CallUnary(ctx, req)
}
