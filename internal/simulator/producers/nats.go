package producers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

const natsFlushTimeout = 2 * time.Second

type natsConn interface {
	Publish(subj string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSPublisher publishes events on "<topic>.<key>" subjects.
type NATSPublisher struct {
	nc natsConn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("tripsim"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return NewNATSPublisherFrom(nc), nil
}

func NewNATSPublisherFrom(nc natsConn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) WriteMessage(topic, key string, msg []byte) error {
	if p.nc == nil {
		return fmt.Errorf("nats connection is not initialized")
	}
	return p.nc.Publish(Subject(topic, key), msg)
}

// Close blocks until buffered publishes reach the server or the flush times out.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	err := p.nc.FlushTimeout(natsFlushTimeout)
	p.nc.Close()
	if err != nil {
		return fmt.Errorf("failed to flush nats messages: %w", err)
	}
	return nil
}

// Subject joins topic and key into a NATS subject. Characters NATS treats
// specially are replaced in the key.
func Subject(topic, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return topic
	}
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	return topic + "." + repl.Replace(key)
}
