// internal/workers/photo/process-photo/zeebe_test.go
package processphoto

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"listing-photos/internal/testutil"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// ==========================
// Mocks
// ==========================

// MockGateway records the job commands the worker sends. Calls it does not
// override panic through the nil embedded interface.
type MockGateway struct {
	pb.GatewayClient

	mu          sync.Mutex
	CompleteErr error
	completed   []*pb.CompleteJobRequest
	failed      []*pb.FailJobRequest
	thrown      []*pb.ThrowErrorRequest
}

func (m *MockGateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, opts ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, in)
	if m.CompleteErr != nil {
		return nil, m.CompleteErr
	}
	return &pb.CompleteJobResponse{}, nil
}

func (m *MockGateway) FailJob(ctx context.Context, in *pb.FailJobRequest, opts ...grpc.CallOption) (*pb.FailJobResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (m *MockGateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, opts ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thrown = append(m.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

func noRetry(context.Context, error) bool { return false }

// MockJobClient builds real zeebe commands on top of MockGateway.
type MockJobClient struct {
	gateway *MockGateway
}

func (c *MockJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *MockJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *MockJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

// ==========================
// Test Helper Functions
// ==========================

const testJobKey int64 = 2251799813685249

func newJob(t *testing.T, variables map[string]interface{}, retries int32) entities.Job {
	t.Helper()
	raw, err := json.Marshal(variables)
	require.NoError(t, err)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                testJobKey,
		Type:               TaskType,
		ProcessInstanceKey: 42,
		Retries:            retries,
		Variables:          string(raw),
	}}
}

func uploadVariables() map[string]interface{} {
	return map[string]interface{}{
		"image_base64": base64.StdEncoding.EncodeToString(jpegWithGPS()),
		"filename":     "job.jpg",
	}
}

// ==========================
// Handle Tests
// ==========================

func TestHandler_Handle_CompletesJob(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	gateway := &MockGateway{}

	err := env.handler.Handle(&MockJobClient{gateway: gateway}, newJob(t, uploadVariables(), 3))
	require.NoError(t, err)

	require.Len(t, gateway.completed, 1)
	assert.Empty(t, gateway.failed)
	assert.Empty(t, gateway.thrown)

	req := gateway.completed[0]
	assert.Equal(t, testJobKey, req.JobKey)

	var vars map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Variables), &vars))
	require.Contains(t, vars, "photoRecord")
	record := vars["photoRecord"]
	assert.Equal(t, testAddress, record["endereco"])
	assert.Equal(t, "https://test-bucket.s3.sa-east-1.amazonaws.com/2024-05-02/job.jpg", record["foto_url"])
	assert.Contains(t, env.store.Objects(), "2024-05-02/job.jpg")
}

func TestHandler_Handle_ThrowsNonRetryableErrors(t *testing.T) {
	tests := []struct {
		name      string
		job       func(t *testing.T) entities.Job
		errorCode string
	}{
		{
			name: "image missing",
			job: func(t *testing.T) entities.Job {
				return newJob(t, map[string]interface{}{"filename": "a.jpg"}, 3)
			},
			errorCode: "IMAGE_MISSING",
		},
		{
			name: "variables not an object",
			job: func(t *testing.T) entities.Job {
				return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: testJobKey, Retries: 3, Variables: "not json"}}
			},
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, envOptions{})
			gateway := &MockGateway{}

			err := env.handler.Handle(&MockJobClient{gateway: gateway}, tt.job(t))
			assert.Error(t, err)

			assert.Empty(t, gateway.completed)
			assert.Empty(t, gateway.failed)
			require.Len(t, gateway.thrown, 1)
			assert.Equal(t, testJobKey, gateway.thrown[0].JobKey)
			assert.Equal(t, tt.errorCode, gateway.thrown[0].ErrorCode)
			assert.Contains(t, gateway.thrown[0].Variables, "originalErrorCode")
			assert.Empty(t, env.store.Objects())
		})
	}
}

func TestHandler_Handle_FailsRetryableErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{putErr: errors.New("access denied")})
	gateway := &MockGateway{}

	err := env.handler.Handle(&MockJobClient{gateway: gateway}, newJob(t, uploadVariables(), 3))
	assert.Error(t, err)

	assert.Empty(t, gateway.completed)
	assert.Empty(t, gateway.thrown)
	require.Len(t, gateway.failed, 1)
	assert.Equal(t, testJobKey, gateway.failed[0].JobKey)
	assert.Equal(t, int32(2), gateway.failed[0].Retries)
	assert.Contains(t, gateway.failed[0].ErrorMessage, "STORAGE_UPLOAD_FAILED")
}

func TestHandler_Handle_RetryableErrorWithoutRetriesLeft(t *testing.T) {
	env := newTestEnv(t, envOptions{putErr: errors.New("access denied")})
	gateway := &MockGateway{}

	err := env.handler.Handle(&MockJobClient{gateway: gateway}, newJob(t, uploadVariables(), 0))
	assert.Error(t, err)

	assert.Empty(t, gateway.failed)
	require.Len(t, gateway.thrown, 1)
	assert.Equal(t, "STORAGE_UPLOAD_FAILED", gateway.thrown[0].ErrorCode)
}

func TestHandler_Handle_CompleteSendFailure(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	gateway := &MockGateway{CompleteErr: errors.New("rpc error: code = NotFound desc = job not found")}

	err := env.handler.Handle(&MockJobClient{gateway: gateway}, newJob(t, uploadVariables(), 3))
	assert.ErrorContains(t, err, "job not found")
	assert.Len(t, gateway.completed, 1)
}

func TestHandler_Handle_ManualCoordinateVariables(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	gateway := &MockGateway{}

	vars := map[string]interface{}{
		"image_base64": base64.StdEncoding.EncodeToString(testutil.JPEG(2, 2)),
		"lat":          "-23.5",
		"lon":          -46.6,
	}
	require.NoError(t, env.handler.Handle(&MockJobClient{gateway: gateway}, newJob(t, vars, 1)))

	require.Len(t, gateway.completed, 1)
	var out map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(gateway.completed[0].Variables), &out))
	assert.Equal(t, map[string]interface{}{"lat": -23.5, "lon": -46.6}, out["photoRecord"]["gps"])
}
