package notify

// Sink receives user-facing messages from cart operations. It stands in for
// the storefront's toast surface; operations report outcomes here instead of
// returning errors.
type Sink interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Collector buffers notices for a single request so the handler can return
// them in the response body, and so tests can assert on them.
type Collector struct {
	Notices []Notice
}

func (c *Collector) Success(msg string) { c.add(LevelSuccess, msg) }
func (c *Collector) Warn(msg string)    { c.add(LevelWarn, msg) }
func (c *Collector) Error(msg string)   { c.add(LevelError, msg) }

func (c *Collector) add(l Level, msg string) {
	c.Notices = append(c.Notices, Notice{Level: l, Message: msg})
}

// Has reports whether any collected notice is at the given level.
func (c *Collector) Has(l Level) bool {
	for _, n := range c.Notices {
		if n.Level == l {
			return true
		}
	}
	return false
}

// Broadcaster carries the no-payload "cart count changed" signal to anything
// rendering a badge. Publish never blocks; a signal nobody consumes is dropped.
type Broadcaster struct {
	ch chan struct{}
}

func NewBroadcaster() *Broadcaster { return &Broadcaster{ch: make(chan struct{}, 1)} }

func (b *Broadcaster) Publish() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

func (b *Broadcaster) C() <-chan struct{} { return b.ch }
