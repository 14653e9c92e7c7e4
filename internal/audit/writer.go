package audit

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/displayhub/internal/infrastructure/logging"
)

// DefaultQueueSize is the number of entries buffered before Record drops.
const DefaultQueueSize = 256

// writeTimeout bounds a single background insert.
const writeTimeout = 5 * time.Second

// Writer queues entries and persists them on one background goroutine.
// It keeps SQLite writes serial and off the request path.
type Writer struct {
	repo   Repository
	source string
	logger *logging.Logger

	ch   chan *Entry
	done chan struct{}
	once sync.Once
}

// NewWriter creates a Writer. Call Run to start persisting.
// source is stamped on every entry (for example "api").
func NewWriter(repo Repository, source string, queueSize int, logger *logging.Logger) *Writer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{
		repo:   repo,
		source: source,
		logger: logger.With("component", "audit"),
		ch:     make(chan *Entry, queueSize),
		done:   make(chan struct{}),
	}
}

// Record enqueues an entry without blocking. It returns false if the
// entry was dropped.
func (w *Writer) Record(entry Entry) bool {
	if w == nil {
		return false
	}
	if entry.Source == "" {
		entry.Source = w.source
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	select {
	case w.ch <- &entry:
		return true
	default:
		w.logger.Warn("audit queue full, dropping entry",
			"action", entry.Action,
			"entity_type", entry.EntityType,
		)
		return false
	}
}

// Run writes queued entries until ctx is cancelled, then drains what is
// left and returns.
func (w *Writer) Run(ctx context.Context) {
	defer w.once.Do(func() { close(w.done) })

	for {
		select {
		case entry := <-w.ch:
			w.write(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-w.ch:
					w.write(entry)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has drained the queue.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

func (w *Writer) write(entry *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.repo.Create(ctx, entry); err != nil {
		w.logger.Error("audit write failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"error", err,
		)
	}
}
