package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/casali/flowpilot/pkg/llm"
)

// MockGateway is a mock implementation of chat.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Complete(ctx context.Context, request llm.Request) (*llm.Reply, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*llm.Reply), args.Error(1)
}

func (m *MockGateway) Stream(ctx context.Context, request llm.Request, onToken func(token string)) (string, error) {
	args := m.Called(ctx, request, onToken)

	return args.String(0), args.Error(1)
}
