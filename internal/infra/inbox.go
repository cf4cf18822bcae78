package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anaygoyal09/Focus/internal/domain"
)

const (
	inboxDirName  = "inbox"
	intentSuffix  = ".json"
	inboxDebounce = 50 * time.Millisecond
)

// Inbox implements domain.IntentQueue as a directory with one JSON file per
// intent. File names sort in submission order.
type Inbox struct {
	dir    string
	logger *zap.Logger
}

// NewInbox creates an inbox under dataDir.
func NewInbox(dataDir string, logger *zap.Logger) *Inbox {
	return &Inbox{dir: filepath.Join(dataDir, inboxDirName), logger: logger}
}

// Dir returns the inbox directory.
func (i *Inbox) Dir() string {
	return i.dir
}

// Enqueue writes the intent atomically. ID and SubmittedAt are filled in when empty.
func (i *Inbox) Enqueue(in domain.Intent) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.SubmittedAt.IsZero() {
		in.SubmittedAt = time.Now()
	}
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(i.dir, 0700); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}

	name := fmt.Sprintf("%020d-%s%s", in.SubmittedAt.UnixNano(), in.ID, intentSuffix)
	// Temp name lacks the suffix so Drain never sees a partial file
	tmpPath := filepath.Join(i.dir, "."+name+".tmp")
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(i.dir, name)); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Drain removes and returns all pending intents in submission order.
// Unreadable files are logged and discarded.
func (i *Inbox) Drain() ([]domain.Intent, error) {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), intentSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	intents := make([]domain.Intent, 0, len(names))
	for _, name := range names {
		path := filepath.Join(i.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			i.logger.Warn("failed to read intent", zap.String("file", name), zap.Error(err))
			continue
		}
		if err := os.Remove(path); err != nil {
			i.logger.Warn("failed to remove intent", zap.String("file", name), zap.Error(err))
			continue
		}
		var in domain.Intent
		if err := json.Unmarshal(data, &in); err != nil {
			i.logger.Warn("discarding malformed intent", zap.String("file", name), zap.Error(err))
			continue
		}
		intents = append(intents, in)
	}
	return intents, nil
}

// Watch signals on the returned channel when new intents arrive. Bursts are
// coalesced into one signal. The channel closes when ctx is done.
func (i *Inbox) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(i.dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create inbox: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(i.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch inbox: %w", err)
	}

	wake := make(chan struct{}, 1)
	go i.watchLoop(ctx, fsw, wake)
	return wake, nil
}

func (i *Inbox) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, wake chan<- struct{}) {
	defer close(wake)
	defer fsw.Close()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, intentSuffix) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.After(inboxDebounce)
			}

		case <-debounce:
			debounce = nil
			select {
			case wake <- struct{}{}:
			default: // A wake-up is already pending
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			i.logger.Warn("inbox watcher error", zap.Error(err))
		}
	}
}

// Ensure Inbox implements domain.IntentQueue.
var _ domain.IntentQueue = (*Inbox)(nil)
