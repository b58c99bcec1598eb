package mesh

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher publishes run results to MQTT
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	results       map[string]*RunResult
	mu            sync.RWMutex
}

// NewPublisher creates a result publisher. An empty prefix defaults to
// "colormesh". If client is nil, publishing is disabled (for testing).
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "colormesh"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,
		retain:        true,
		results:       make(map[string]*RunResult),
	}
}

// PublishResult publishes one run to its own topic and refreshes the
// combined results topic.
func (p *Publisher) PublishResult(result *RunResult) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	p.mu.Lock()
	p.results[result.Label] = result
	p.mu.Unlock()

	if err := p.publishIndividual(result); err != nil {
		log.Printf("[MQTT] error publishing result for %s: %v", result.Label, err)
		return err
	}

	if err := p.publishCombined(); err != nil {
		log.Printf("[MQTT] error publishing combined results: %v", err)
		return err
	}

	return nil
}

// publishIndividual publishes a result to {prefix}/results/{label}
func (p *Publisher) publishIndividual(result *RunResult) error {
	topic := fmt.Sprintf("%s/results/%s", p.publishPrefix, result.Label)

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("[MQTT] published %s", result)
	return nil
}

// publishCombined publishes every known result to {prefix}/results
func (p *Publisher) publishCombined() error {
	p.mu.RLock()
	results := SortedResults(p.results)
	p.mu.RUnlock()

	if len(results) == 0 {
		return nil
	}

	topic := fmt.Sprintf("%s/results", p.publishPrefix)

	message := map[string]interface{}{
		"results":   results,
		"timestamp": time.Now().Unix(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling combined results: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
