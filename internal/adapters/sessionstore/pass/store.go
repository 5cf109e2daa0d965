package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

var (
	ErrUnavailable = errors.New("pass command unavailable")
	// ErrLocked means the entry exists but gpg could not decrypt it, usually
	// because no agent or pinentry is available to this process.
	ErrLocked = errors.New("pass entry locked")

	errMultilineValue = errors.New("session value must be a single line")
)

const missingEntry = "is not in the password store"

var lockedMarkers = []string{"decryption failed", "No secret key", "Inappropriate ioctl"}

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store keeps each session as the first line of a pass entry named after its
// key. Anything below the first line is left to the user.
type Store struct {
	run runFunc
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("pass put %q: %w", key, errMultilineValue)
	}

	_, stderr, err := s.run(ctx, value+"\n", "insert", "-e", "-f", key)
	if err != nil {
		return formatError("put", key, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", key)
	if err != nil {
		if strings.Contains(stderr, missingEntry) {
			return "", fmt.Errorf("pass get %q: %w", key, domain.ErrSessionNotFound)
		}
		if locked(stderr) {
			return "", formatError("get", key, ErrLocked, stderr)
		}
		return "", formatError("get", key, err, stderr)
	}

	first, _, _ := strings.Cut(stdout, "\n")
	first = strings.TrimSuffix(first, "\r")
	if first == "" {
		return "", fmt.Errorf("pass get %q: empty entry: %w", key, domain.ErrSessionNotFound)
	}

	return first, nil
}

func locked(stderr string) bool {
	for _, marker := range lockedMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "-f", key)
	if err != nil && !strings.Contains(stderr, missingEntry) {
		return formatError("delete", key, err, stderr)
	}

	return nil
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
