package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// TailOptions selects which part of the log to read. A negative Offset means
// "the last Limit lines"; afterwards callers pass the returned offset back in
// to read only what was appended since.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

const pollInterval = 250 * time.Millisecond

// Tail reads log lines according to opts. A missing file is not an error;
// it returns an empty result at offset zero.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		result, err := readTail(path, opts.Limit)
		if err != nil {
			return result, err
		}
		if opts.Follow && opts.Wait > 0 && len(result.Lines) == 0 {
			return pollForLines(ctx, path, result.Offset, opts.Wait)
		}
		return result, nil
	}

	result, err := readSince(path, opts.Offset)
	if err != nil {
		return result, err
	}
	if opts.Follow && opts.Wait > 0 && len(result.Lines) == 0 {
		return pollForLines(ctx, path, result.Offset, opts.Wait)
	}
	return result, nil
}

// readTail returns the last limit lines and the end-of-file offset.
func readTail(path string, limit int) (TailResult, error) {
	lines, offset, err := scanFrom(path, 0)
	if err != nil {
		return TailResult{}, err
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	} else if limit <= 0 {
		lines = nil
	}
	return TailResult{Lines: lines, Offset: offset}, nil
}

// readSince returns everything appended after offset. An offset past the
// current end (a rotated or truncated file) restarts from the end.
func readSince(path string, offset int64) (TailResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TailResult{}, nil
		}
		return TailResult{Offset: offset}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return TailResult{Offset: offset}, fmt.Errorf("log path %q is a directory", path)
	}
	if offset > info.Size() {
		offset = info.Size()
	}

	lines, newOffset, err := scanFrom(path, offset)
	if err != nil {
		return TailResult{Offset: offset}, err
	}
	return TailResult{Lines: lines, Offset: newOffset}, nil
}

func scanFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, offset, fmt.Errorf("read log file: %w", err)
	}

	newOffset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, offset, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, newOffset, nil
}

// pollForLines waits up to wait for new lines to appear past offset.
func pollForLines(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		result, err := readSince(path, offset)
		if err != nil || len(result.Lines) > 0 {
			return result, err
		}
		offset = result.Offset

		if time.Now().After(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
