package tapealert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// ErrUtility is returned when the diagnostic utility cannot be run or
// produced nothing usable.
var ErrUtility = errors.New("diagnostic utility unavailable")

// DefaultTimeout bounds one utility invocation. A drive mid-load can stall
// SCSI commands for tens of seconds; a wedged one stalls them forever.
const DefaultTimeout = 60 * time.Second

// Runner produces diagnostic text for an sg node.
type Runner interface {
	Run(ctx context.Context, node string) (string, error)
}

// TapeinfoRunner shells out to the tapeinfo utility.
type TapeinfoRunner struct {
	Path    string        // utility name or absolute path; "" means "tapeinfo"
	Timeout time.Duration // zero means DefaultTimeout
	Log     *zap.Logger
}

// Run invokes the utility against node and captures its combined output.
// tapeinfo can exit non-zero and still report flags, so a failed exit only
// becomes ErrUtility when there is no output to parse.
func (r TapeinfoRunner) Run(ctx context.Context, node string) (string, error) {
	path := r.Path
	if path == "" {
		path = "tapeinfo"
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH", ErrUtility, path)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin, "-f", node).CombinedOutput()
	if r.Log != nil {
		r.Log.Debug("ran diagnostic utility",
			zap.String("command", bin+" -f "+node),
			zap.Int("output_bytes", len(out)),
			zap.Error(err))
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s timed out after %s on %s", ErrUtility, path, timeout, node)
		}
		if len(bytes.TrimSpace(out)) == 0 {
			return "", fmt.Errorf("%w: %s failed on %s: %v", ErrUtility, path, node, err)
		}
	}
	return string(out), nil
}
