package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/task"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

// PostgresTaskStore implements task.Store with a PostgreSQL backend. A
// TaskState is persisted as an opaque JSONB blob keyed by its task_id, per
// the storage contract of §6: encoding format is an implementation detail,
// not part of the core's contract with its callers.
type PostgresTaskStore struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPostgresTaskStore creates a production-ready PostgreSQL task store.
func NewPostgresTaskStore(conn *Connection) *PostgresTaskStore {
	return &PostgresTaskStore{
		conn: conn,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: getEnvLogLevel("LOG_LEVEL", slog.LevelDebug),
		})),
	}
}

// Close closes the database connection pool gracefully.
func (s *PostgresTaskStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}

	return nil
}

// Put upserts state's JSON encoding under its task_id. An existing record
// is overwritten - the status-monotonicity discipline of §5 is the
// caller's CAS responsibility, not this store's.
func (s *PostgresTaskStore) Put(ctx context.Context, state task.State) error {
	payload, err := encodeTaskState(state)
	if err != nil {
		return fmt.Errorf("failed to encode task state: %w", err)
	}

	query := `
		INSERT INTO tasks (task_id, status, state, idempotency_key, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (task_id) DO UPDATE
		SET status = EXCLUDED.status, state = EXCLUDED.state, updated_at = now()
	`

	if _, err := s.conn.ExecContext(ctx, query, state.TaskID.String(), string(state.Status), payload, state.IdempotencyKey); err != nil {
		return fmt.Errorf("failed to persist task state: %w", err)
	}

	return nil
}

// FindByIdempotencyKey loads the State created with the given
// CreationRequest.IdempotencyKey(), or task.ErrNotFound. The unique
// partial index on idempotency_key (migration 005) is what makes a
// concurrent retried create-task call safe: at most one row can ever
// carry a given non-empty key.
func (s *PostgresTaskStore) FindByIdempotencyKey(ctx context.Context, key string) (task.State, error) {
	if key == "" {
		return task.State{}, task.ErrNotFound
	}

	query := `SELECT state FROM tasks WHERE idempotency_key = $1`

	var payload []byte

	err := s.conn.QueryRowContext(ctx, query, key).Scan(&payload)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return task.State{}, task.ErrNotFound
	case err != nil:
		return task.State{}, fmt.Errorf("failed to load task state by idempotency key: %w", err)
	}

	state, err := decodeTaskState(payload)
	if err != nil {
		return task.State{}, fmt.Errorf("failed to decode task state: %w", err)
	}

	return state, nil
}

// Get loads and decodes the State stored under id, or task.ErrNotFound.
func (s *PostgresTaskStore) Get(ctx context.Context, id identity.TaskID) (task.State, error) {
	query := `SELECT state FROM tasks WHERE task_id = $1`

	var payload []byte

	err := s.conn.QueryRowContext(ctx, query, id.String()).Scan(&payload)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return task.State{}, task.ErrNotFound
	case err != nil:
		return task.State{}, fmt.Errorf("failed to load task state: %w", err)
	}

	state, err := decodeTaskState(payload)
	if err != nil {
		return task.State{}, fmt.Errorf("failed to decode task state: %w", err)
	}

	return state, nil
}

// HealthCheck verifies the underlying PostgreSQL connection is reachable.
func (s *PostgresTaskStore) HealthCheck(ctx context.Context) error {
	return s.conn.HealthCheck(ctx)
}

// taskStateDTO is the JSON wire shape for task.State. The only field that
// needs explicit conversion is TaskID: identity.TaskID is a distinct named
// type over uuid.UUID and does not inherit its MarshalText/UnmarshalText
// methods, so it would otherwise encode as a raw byte array.
type taskStateDTO struct {
	TaskID            string                              `json:"task_id"`
	IdempotencyKey    string                              `json:"idempotency_key"`
	Creator           identity.UserID                     `json:"creator"`
	FunctionID        identity.ExternalID                 `json:"function_id"`
	FunctionOwner     identity.UserID                     `json:"function_owner"`
	FunctionArguments map[string]string                   `json:"function_arguments"`
	Executor          string                              `json:"executor"`
	InputsOwnership   taskfile.Owners                     `json:"inputs_ownership"`
	OutputsOwnership  taskfile.Owners                     `json:"outputs_ownership"`
	Participants      identity.UserList                   `json:"participants"`
	ApprovedUsers     identity.UserList                   `json:"approved_users"`
	AssignedInputs    taskfile.Files[taskfile.InputFile]  `json:"assigned_inputs"`
	AssignedOutputs   taskfile.Files[taskfile.OutputFile] `json:"assigned_outputs"`
	Result            task.Result                         `json:"result"`
	Status            task.Status                         `json:"status"`
}

func encodeTaskState(state task.State) ([]byte, error) {
	dto := taskStateDTO{
		TaskID:            state.TaskID.String(),
		IdempotencyKey:    state.IdempotencyKey,
		Creator:           state.Creator,
		FunctionID:        state.FunctionID,
		FunctionOwner:     state.FunctionOwner,
		FunctionArguments: state.FunctionArguments,
		Executor:          state.Executor,
		InputsOwnership:   state.InputsOwnership,
		OutputsOwnership:  state.OutputsOwnership,
		Participants:      state.Participants,
		ApprovedUsers:     state.ApprovedUsers,
		AssignedInputs:    state.AssignedInputs,
		AssignedOutputs:   state.AssignedOutputs,
		Result:            state.Result,
		Status:            state.Status,
	}

	return json.Marshal(dto)
}

func decodeTaskState(payload []byte) (task.State, error) {
	var dto taskStateDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return task.State{}, err
	}

	taskID, err := identity.ParseTaskID(dto.TaskID)
	if err != nil {
		return task.State{}, fmt.Errorf("invalid task_id %q: %w", dto.TaskID, err)
	}

	return task.State{
		TaskID:            taskID,
		IdempotencyKey:    dto.IdempotencyKey,
		Creator:           dto.Creator,
		FunctionID:        dto.FunctionID,
		FunctionOwner:     dto.FunctionOwner,
		FunctionArguments: dto.FunctionArguments,
		Executor:          dto.Executor,
		InputsOwnership:   dto.InputsOwnership,
		OutputsOwnership:  dto.OutputsOwnership,
		Participants:      dto.Participants,
		ApprovedUsers:     dto.ApprovedUsers,
		AssignedInputs:    dto.AssignedInputs,
		AssignedOutputs:   dto.AssignedOutputs,
		Result:            dto.Result,
		Status:            dto.Status,
	}, nil
}
