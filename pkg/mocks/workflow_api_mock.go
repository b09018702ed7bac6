// Package mocks provides testify mocks for the collaborator interfaces the
// assistant core depends on.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/casali/flowpilot/pkg/models"
	"github.com/casali/flowpilot/pkg/n8n"
)

// MockWorkflowAPI is a mock implementation of executor.WorkflowAPI.
type MockWorkflowAPI struct {
	mock.Mock
}

func (m *MockWorkflowAPI) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowAPI) CreateWorkflow(ctx context.Context, payload *n8n.UpdatePayload) (*models.Workflow, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowAPI) UpdateWorkflow(ctx context.Context, id string, payload *n8n.UpdatePayload) (*models.Workflow, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowAPI) DeleteWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockWorkflowAPI) ActivateWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowAPI) DeactivateWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}
