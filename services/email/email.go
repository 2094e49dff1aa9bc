// Package emailsvc delivers the notices built by the core services.
package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/SaramshGautam/collaBoard/core"
)

// outbox holds what every delivery backend shares: rendering and recipient cleanup.
type outbox struct {
	conf   *core.Config
	logger core.Logger
	from   mail.Address
}

func newOutbox(conf *core.Config, logger core.Logger) outbox {
	return outbox{conf: conf, logger: logger, from: conf.DefaultFromEmail()}
}

// prepare renders msg and drops blank or repeated recipients.
// ok is false when there is nothing to deliver.
func (o outbox) prepare(msg *core.EmailMessage) (out core.EmailMessage, ok bool) {
	if err := msg.Render(o.conf); err != nil {
		o.logger.Error(fmt.Sprintf("rendering %s email: %v", msg.Template, err), err)
		return core.EmailMessage{}, false
	}
	out = *msg
	out.To = uniqueAddresses(msg.To)
	return out, out.HasRecipients() && out.HasContent()
}

func uniqueAddresses(addrs []mail.Address) []mail.Address {
	seen := make(map[string]bool, len(addrs))
	out := make([]mail.Address, 0, len(addrs))
	for _, a := range addrs {
		addr := strings.TrimSpace(a.Address)
		key := strings.ToLower(addr)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, mail.Address{Name: a.Name, Address: addr})
	}
	return out
}

func joinAddresses(addrs []mail.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, a.Address)
	}
	return strings.Join(parts, ", ")
}
