package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/logger"
	coremon "github.com/kilianp07/gridsim/core/monitoring"
	"github.com/kilianp07/gridsim/core/sim"
	"github.com/kilianp07/gridsim/core/topology"
)

// Publisher mirrors simulation output to an MQTT broker. Packets go to
// <prefix>/packets/<network> and tick summaries to <prefix>/ticks.
type Publisher struct {
	cli    pahoClient
	cfg    Config
	log    logger.Logger
	mu     sync.Mutex
	failed int
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config, log logger.Logger) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return &Publisher{cli: c, cfg: cfg, log: log}, nil
}

// PacketTopic returns the topic packets of network are published on.
func (p *Publisher) PacketTopic(network string) string {
	return p.cfg.TopicPrefix + "/packets/" + network
}

// TickTopic returns the topic tick summaries are published on.
func (p *Publisher) TickTopic() string { return p.cfg.TopicPrefix + "/ticks" }

// Publish marshals v to JSON and publishes it, retrying with exponential
// backoff. The final failure is reported to the monitor.
func (p *Publisher) Publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.log.Errorf("publish attempt %d on %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(p.cfg.backoff() * time.Duration(1<<attempt))
		}
	}
	p.failed++
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// MirrorPacket implements grid.PacketMirror. Delivery failures are logged
// and never reach the simulation.
func (p *Publisher) MirrorPacket(network string, pkt grid.Packet) {
	if err := p.Publish(p.PacketTopic(network), pkt); err != nil {
		p.log.Warnf("mirror packet %s: %v", pkt.ID, err)
	}
}

// PublishTick publishes one tick summary.
func (p *Publisher) PublishTick(ev sim.TickEvent) error {
	return p.Publish(p.TickTopic(), ev.Summary)
}

// Failed returns how many publishes were abandoned after all retries.
func (p *Publisher) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Attach installs p as the packet mirror of every communication network in
// topo and returns how many networks were attached.
func (p *Publisher) Attach(topo *topology.Topology) int {
	n := 0
	for _, g := range topo.Components() {
		for _, c := range g.Components {
			if net, ok := c.(*grid.CommunicationNetwork); ok {
				net.SetMirror(p)
				n++
			}
		}
	}
	return n
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
