package dispatch

import "context"

// MockDispatcher is a mock implementation of Dispatcher for testing
// callers that stage tasks without standing up a real Kafka broker.
type MockDispatcher struct {
	DispatchFunc func(ctx context.Context, task StagedTask) error
	Dispatched   []StagedTask
}

// Dispatch implements Dispatcher.Dispatch, recording every call.
func (m *MockDispatcher) Dispatch(ctx context.Context, task StagedTask) error {
	m.Dispatched = append(m.Dispatched, task)

	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, task)
	}

	return nil
}

// Close implements Dispatcher.Close.
func (m *MockDispatcher) Close() error {
	return nil
}
