package client

import (
	"time"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// keepalive periodically sends a dedicated ping so the connection
// stays warm and round-trip time stays measured. At most one ticker
// runs at a time; it is cancelled on window blur and on connection
// loss so no periodic work leaks against a dead or absent connection.
type keepalive struct {
	period   time.Duration
	requests chan<- *shared.Message
	cancel   chan struct{}
}

func newKeepalive(period time.Duration, requests chan<- *shared.Message) *keepalive {
	return &keepalive{period: period, requests: requests}
}

func (k *keepalive) start() {
	k.stop()
	done := make(chan struct{})
	k.cancel = done
	go func() {
		tick := time.NewTicker(k.period)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				k.requests <- shared.PingMessage(time.Now())
			}
		}
	}()
}

func (k *keepalive) stop() {
	if k.cancel != nil {
		close(k.cancel)
		k.cancel = nil
	}
}
