// Package listener subscribes to the Frigate MQTT event stream and
// feeds finished events into the review queue. It only normalizes and
// enqueues; all processing happens in the workers.
package listener

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"reviewer/internal/config"
	"reviewer/internal/logger"
	"reviewer/internal/models"
	"reviewer/internal/queue"
)

const connectTimeout = 10 * time.Second

type Listener struct {
	client mqtt.Client
	queue  *queue.EventQueue
	topic  string
	recent *recentSet // nil when dedupe is disabled
	logger *logger.Logger
}

func NewListener(cfg *config.Config, q *queue.EventQueue, log *logger.Logger) *Listener {
	l := &Listener{
		queue:  q,
		topic:  cfg.MQTTTopic,
		logger: log,
	}
	if cfg.DedupeHistory > 0 {
		l.recent = newRecentSet(cfg.DedupeHistory)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort)).
		SetClientID(cfg.MQTTClientID).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(l.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			l.logger.Warning("MQTT connection lost: %v", err)
		})

	l.client = mqtt.NewClient(opts)
	return l
}

// Start connects to the broker. A connection failure here is fatal for
// the process: the service must not run without a live subscription.
func (l *Listener) Start() error {
	token := l.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return nil
}

// Stop disconnects from the broker, allowing in-flight handlers a
// short grace period.
func (l *Listener) Stop() {
	l.client.Disconnect(250)
}

// onConnect runs on every (re)connect; paho does not resubscribe
// automatically across reconnects with clean sessions.
func (l *Listener) onConnect(client mqtt.Client) {
	l.logger.Info("Connected to MQTT broker, subscribing to %s", l.topic)
	token := client.Subscribe(l.topic, 0, l.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		l.logger.Error("Failed to subscribe to %s: %v", l.topic, err)
	}
}

func (l *Listener) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	l.onMessage(msg.Payload())
}

// onMessage parses one raw message and enqueues the event if it is a
// finished event with an ID. Anything else is dropped without side
// effects; a bad message must never take the listener down.
func (l *Listener) onMessage(payload []byte) {
	var message models.FrigatePayload
	if err := json.Unmarshal(payload, &message); err != nil {
		l.logger.Error("Discarding message that is not valid JSON: %v", err)
		return
	}

	if message.Type != models.EventTypeEnd {
		return
	}

	event := message.After.Event()
	if event.ID == "" {
		l.logger.Error("Discarding finished event without an ID")
		return
	}

	if l.recent != nil && !l.recent.add(event.ID) {
		l.logger.Info("Event %s already seen recently, skipping redelivery", event.ID)
		return
	}

	l.queue.Push(event)
	l.logger.Info("Enqueued event %s from camera %s", event.ID, event.Camera)
}

// recentSet remembers the last n event IDs to drop stream redeliveries.
type recentSet struct {
	seen  map[string]struct{}
	order []string
	limit int
}

func newRecentSet(limit int) *recentSet {
	return &recentSet{
		seen:  make(map[string]struct{}, limit),
		limit: limit,
	}
}

// add records the ID and reports whether it was new. The oldest entry
// is evicted once the limit is reached.
func (r *recentSet) add(id string) bool {
	if _, ok := r.seen[id]; ok {
		return false
	}
	if len(r.order) >= r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, oldest)
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	return true
}
