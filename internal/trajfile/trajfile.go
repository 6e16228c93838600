// Package trajfile saves published trajectories to disk as JSON lines, rotating files by size.
package trajfile

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.viam.com/planning/messages"
)

// Recorder writes every published trajectory as one JSON line.
type Recorder struct {
	mu      sync.Mutex
	logger  *lumberjack.Logger
	encoder *json.Encoder
	closed  bool
}

// NewRecorder creates a [Recorder] writing to dirPath/filename. Files rotate after maxSizeMB
// megabytes and at most maxBackups rotated files are kept.
func NewRecorder(dirPath, filename string, maxSizeMB, maxBackups int) (*Recorder, error) {
	if err := os.MkdirAll(dirPath, 0o750); err != nil {
		return nil, errors.Wrapf(err, "cannot create trajectory directory %q", dirPath)
	}
	logger := &lumberjack.Logger{
		Filename:   filepath.Join(dirPath, filename),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	return &Recorder{
		logger:  logger,
		encoder: json.NewEncoder(logger),
	}, nil
}

// Publish appends msg to the current file.
func (r *Recorder) Publish(ctx context.Context, msg *messages.ADCTrajectory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("trajectory recorder is closed")
	}
	return errors.Wrap(r.encoder.Encode(msg), "cannot record trajectory")
}

// Close flushes and closes the current file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.logger.Close()
}

// ReadAll decodes every trajectory recorded in the file at path.
func ReadAll(path string) (msgs []*messages.ADCTrajectory, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return decode(f)
}

func decode(r io.Reader) ([]*messages.ADCTrajectory, error) {
	var msgs []*messages.ADCTrajectory
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var msg messages.ADCTrajectory
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return nil, errors.Wrapf(err, "cannot decode trajectory on line %d", line)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, scanner.Err()
}
