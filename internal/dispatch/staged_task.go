// Package dispatch defines the boundary artifact handed from a staged task
// to the external executor subsystem, and a Kafka-backed publisher for it.
//
// This is the one outward-flowing contract the task-lifecycle core has
// with anything beyond storage: once a task is staged, a StagedTask is
// all the executor ever sees of it.
package dispatch

import (
	"github.com/conclave-run/taskcore/internal/function"
	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

// StagedTask is the immutable dispatch record produced by
// stage_for_running. It carries everything the executor needs to run the
// function and nothing else - no participant list, no approval history,
// no ownership declarations.
type StagedTask struct {
	TaskID          identity.TaskID
	Executor        string
	ExecutorType    function.ExecutorType
	FunctionID      identity.ExternalID
	FunctionName    string
	FunctionPayload []byte
	FunctionArgs    map[string]string
	InputData       taskfile.Files[taskfile.InputFile]
	OutputData      taskfile.Files[taskfile.OutputFile]
}
