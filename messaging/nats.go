package messaging

import (
	"context"
	"encoding/json"
	"time"

	"sosmed/pkg/logger"

	"github.com/nats-io/nats.go"
)

const SubjectPrefix = "sosmed."

func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("sosmed"))
	if err != nil {
		return nil, err
	}
	logger.Sugar.Infof("NATS connected at %s", url)
	return nc, nil
}

// NATSPublisher publishes each event as JSON on sosmed.<type>, stamped
// with Origin so the sending instance can recognise its own events.
type NATSPublisher struct {
	Conn   *nats.Conn
	Origin string
}

func NewNATSPublisher(nc *nats.Conn, origin string) *NATSPublisher {
	return &NATSPublisher{Conn: nc, Origin: origin}
}

func (p *NATSPublisher) Publish(_ context.Context, ev Event) error {
	if ev.Origin == "" {
		ev.Origin = p.Origin
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.Conn.Publish(SubjectPrefix+ev.Type, data); err != nil {
		logger.Sugar.Errorf("Failed to publish %s: %v", ev.Type, err)
		return err
	}
	return nil
}

// Subscribe delivers decoded events matching pattern, e.g. "post.*".
func Subscribe(nc *nats.Conn, pattern string, handler func(Event)) (*nats.Subscription, error) {
	return nc.Subscribe(SubjectPrefix+pattern, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			logger.Sugar.Errorf("Dropping malformed event on %s: %v", msg.Subject, err)
			return
		}
		handler(ev)
	})
}

// Relay hands every event raised by another instance to local, typically
// the socket hub, so followers connected elsewhere still get notified.
func Relay(nc *nats.Conn, origin string, local Publisher) (*nats.Subscription, error) {
	return Subscribe(nc, ">", forwardFrom(origin, local))
}

func forwardFrom(origin string, local Publisher) func(Event) {
	return func(ev Event) {
		if ev.Origin == origin {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := local.Publish(ctx, ev); err != nil {
			logger.Sugar.Errorf("Failed to relay %s from %s: %v", ev.Type, ev.Origin, err)
		}
	}
}
