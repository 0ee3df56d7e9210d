package notify

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/satonic/satonic-admin/internal/logging"
)

// DefaultClearAfter is how long a banner stays up
const DefaultClearAfter = 2 * time.Second

// Status is the tone of a banner
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

// Banner is the process-wide status message shown on every console page
type Banner struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Status  Status    `json:"status"`
	At      time.Time `json:"at"`
}

// Scheduler runs f after d
type Scheduler func(d time.Duration, f func())

// Option configures a Notifier
type Option func(*Notifier)

// WithClearAfter sets how long banners stay up
func WithClearAfter(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.clearAfter = d
		}
	}
}

// WithScheduler replaces time.AfterFunc
func WithScheduler(s Scheduler) Option {
	return func(n *Notifier) { n.schedule = s }
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(n *Notifier) { n.logger = logger }
}

// Notifier holds the current banner and fans changes out to subscribers.
// A nil banner delivered to a subscriber means the banner was cleared.
type Notifier struct {
	clearAfter time.Duration
	schedule   Scheduler
	logger     logging.Logger
	now        func() time.Time

	mu      sync.Mutex
	current *Banner
	subs    map[int]func(*Banner)
	nextSub int
}

// New creates a Notifier
func New(opts ...Option) *Notifier {
	n := &Notifier{
		clearAfter: DefaultClearAfter,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		logger: logging.NoOp(),
		now:    time.Now,
		subs:   map[int]func(*Banner){},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Publish replaces the current banner and schedules its removal
func (n *Notifier) Publish(status Status, message string) Banner {
	banner := Banner{
		ID:      ulid.Make().String(),
		Message: message,
		Status:  status,
		At:      n.now().UTC(),
	}

	n.mu.Lock()
	n.current = &banner
	subs := n.snapshot()
	n.mu.Unlock()

	n.logger.Debug("banner published", "id", banner.ID, "status", string(status))
	deliver(subs, &banner)

	n.schedule(n.clearAfter, func() { n.clear(banner.ID) })
	return banner
}

// Success publishes a success banner
func (n *Notifier) Success(message string) Banner {
	return n.Publish(StatusSuccess, message)
}

// Error publishes an error banner
func (n *Notifier) Error(message string) Banner {
	return n.Publish(StatusError, message)
}

// clear removes the banner with id if it is still the current one
func (n *Notifier) clear(id string) {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return
	}
	n.current = nil
	subs := n.snapshot()
	n.mu.Unlock()

	deliver(subs, nil)
}

// Current returns the banner being shown, if any
func (n *Notifier) Current() (Banner, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Banner{}, false
	}
	return *n.current, true
}

// Subscribe registers fn for every banner change and returns a function
// that removes it.
func (n *Notifier) Subscribe(fn func(*Banner)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextSub
	n.nextSub++
	n.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
		})
	}
}

// snapshot must be called with n.mu held
func (n *Notifier) snapshot() []func(*Banner) {
	subs := make([]func(*Banner), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	return subs
}

func deliver(subs []func(*Banner), banner *Banner) {
	for _, fn := range subs {
		if banner == nil {
			fn(nil)
			continue
		}
		b := *banner
		fn(&b)
	}
}
