package system

import (
	"context"
	"os"
	"os/exec"

	"github.com/firefly-engineering/skill-quiver/internal/logging"
)

// osExecutor implements CommandExecutor using real OS operations.
type osExecutor struct{}

func (e *osExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (e *osExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	return e.ExecuteInDir(ctx, "", name, args...)
}

func (e *osExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	logging.DebugCommand(dir, name, args...)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// Never block on a credential prompt; a missing credential must fail the run.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	return cmd.CombinedOutput()
}
