package emailsvc

import (
	"fmt"
	"sync"

	"github.com/SaramshGautam/collaBoard/core"
)

type consoleService struct {
	outbox
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService logs notices instead of delivering them.
func NewConsoleService(conf *core.Config, logger core.Logger) core.EmailService {
	return &consoleService{outbox: newOutbox(conf, logger)}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		m, ok := svc.prepare(msg)
		if !ok {
			continue
		}
		svc.logger.Info(
			fmt.Sprintf("email %q to %s", m.Subject, joinAddresses(m.To)),
			map[string]interface{}{"template": m.Template, "from": svc.from.String()},
		)
		svc.logger.Debug(m.TextContent)
	}
}

// Recorder keeps the notices it is given instead of delivering them.
type Recorder struct {
	outbox

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*Recorder)(nil)

func NewRecorder(conf *core.Config, logger core.Logger) *Recorder {
	return &Recorder{outbox: newOutbox(conf, logger)}
}

func (r *Recorder) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if m, ok := r.prepare(msg); ok {
			r.mu.Lock()
			r.sent = append(r.sent, m)
			r.mu.Unlock()
		}
	}
}

// Messages returns the rendered notices recorded so far, oldest first.
func (r *Recorder) Messages() []core.EmailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.EmailMessage{}, r.sent...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
