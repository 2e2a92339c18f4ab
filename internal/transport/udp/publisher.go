// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	applog "sigbench/internal/log"
	"sigbench/internal/transport"
)

// MaxDatagram is the largest UDP payload over IPv4.
const MaxDatagram = 65507

const defaultQueueSize = 128

// Task and status codes carried in the packet header.
const (
	TaskUnknown   uint8 = 0
	TaskDenoising uint8 = 1
	TaskDetection uint8 = 2

	StatusOK     uint8 = 0
	StatusFailed uint8 = 1
)

var (
	errPublisherStopped = errors.New("UDP publisher is stopped")
	errQueueFull        = errors.New("UDP publisher queue is full")
	errShortPacket      = errors.New("packet too short")
)

// UDPPublisher is a Transport that packs outcome records into binary
// packets and sends them with a UDPSender from a background goroutine.
// Records sent before Start are queued; Stop flushes the queue.
type UDPPublisher struct {
	sender *UDPSender
	queue  chan transport.Record

	doneChan chan struct{}  // Closed to signal the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects running, doneChan and stopOnce.
	running  bool
	stopped  bool

	sequenceNum  uint32        // Monotonically increasing sequence number for packets.
	packetBuffer *bytes.Buffer // Reusable buffer for constructing the binary packet.
}

// NewUDPPublisher creates a publisher over sender. A queueSize below one
// selects the default.
func NewUDPPublisher(sender *UDPSender, queueSize int) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}

	applog.Debugf("UDPPublisher: Initializing (queue: %d)", queueSize)

	return &UDPPublisher{
		sender:       sender,
		queue:        make(chan transport.Record, queueSize),
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start launches the publisher goroutine. Calling Start on a running
// publisher is a no-op.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}
	p.running = true
	p.stopped = false
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case rec := <-p.queue:
				p.publish(rec)
			case <-doneChan:
				p.flush()
				return
			}
		}
	}()
}

// flush publishes whatever is left in the queue.
func (p *UDPPublisher) flush() {
	for {
		select {
		case rec := <-p.queue:
			p.publish(rec)
		default:
			return
		}
	}
}

// Stop signals the publisher goroutine, waits for it to flush the queue
// and exit. Stopping a publisher that is not running is a no-op.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.stopped = true
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.running = false
		p.stopped = true
	})
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Send queues a transport.Record (or *transport.Record) for publishing.
func (p *UDPPublisher) Send(data any) error {
	var rec transport.Record
	switch v := data.(type) {
	case transport.Record:
		rec = v
	case *transport.Record:
		if v == nil {
			return fmt.Errorf("UDPPublisher: nil record")
		}
		rec = *v
	default:
		return fmt.Errorf("UDPPublisher: unsupported payload %T", data)
	}

	// Held through the enqueue: every accepted record precedes the final flush.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return errPublisherStopped
	}

	select {
	case p.queue <- rec:
		return nil
	default:
		return errQueueFull
	}
}

// Close stops the publisher and closes the sender.
func (p *UDPPublisher) Close() error {
	stopErr := p.Stop()
	return errors.Join(stopErr, p.sender.Close())
}

func (p *UDPPublisher) publish(rec transport.Record) {
	p.sequenceNum++
	p.packetBuffer.Reset()
	if err := EncodePacket(p.packetBuffer, p.sequenceNum, time.Now().UnixNano(), rec); err != nil {
		applog.Errorf("UDPPublisher: Error packing record: %v", err)
		return
	}
	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		applog.Warnf("UDPPublisher: Error sending packet %d: %v", p.sequenceNum, err)
		return
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, p.packetBuffer.Len())
}

/*
UDP Packet Structure (BigEndian)

+---------------------------------------------------------------------------+
| Field           | Data Type | Size (Bytes) | Description                   |
|-----------------|-----------|--------------|-------------------------------|
| Sequence Number | uint32    | 4            | Monotonically increasing      |
| Timestamp       | int64     | 8            | Nanoseconds since epoch       |
| Task            | uint8     | 1            | 1=denoising 2=detection       |
| Status          | uint8     | 1            | 0=ok 1=failed                 |
| Method Length   | uint16    | 2            | Length of the method ID (M)   |
| Method          | []byte    | M            | Method ID                     |
| Value Count     | uint16    | 2            | Number of floats (N)          |
| Values          | []float32 | N * 4        | Samples or event indices      |
+---------------------------------------------------------------------------+

Denoising records carry the denoised samples, detection records the event
sample indices. Values are truncated to fit a single datagram.
*/

// Packet is a decoded UDP packet.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Task      uint8
	Status    uint8
	Method    string
	Values    []float32
}

func taskCode(task string) uint8 {
	switch task {
	case "denoising":
		return TaskDenoising
	case "detection":
		return TaskDetection
	default:
		return TaskUnknown
	}
}

// EncodePacket writes rec to w in the packet layout above.
func EncodePacket(w io.Writer, seq uint32, timestamp int64, rec transport.Record) error {
	id := []byte(rec.Method)
	if len(id) > math.MaxUint16 {
		id = id[:math.MaxUint16]
	}

	status := StatusOK
	if rec.Status != "ok" {
		status = StatusFailed
	}

	var values []float32
	if status == StatusOK {
		if rec.Events != nil {
			values = make([]float32, len(rec.Events))
			for i, e := range rec.Events {
				values[i] = float32(e.Index)
			}
		} else {
			values = make([]float32, len(rec.Samples))
			for i, v := range rec.Samples {
				values[i] = float32(v)
			}
		}
	}

	header := 4 + 8 + 1 + 1 + 2 + len(id) + 2
	maxValues := min((MaxDatagram-header)/4, math.MaxUint16)
	if len(values) > maxValues {
		values = values[:maxValues]
	}

	fields := []any{
		seq,
		timestamp,
		taskCode(rec.Task),
		status,
		uint16(len(id)),
		id,
		uint16(len(values)),
		values,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// DecodePacket parses a packet produced by EncodePacket.
func DecodePacket(data []byte) (Packet, error) {
	var pkt Packet
	r := bytes.NewReader(data)

	var idLen uint16
	for _, f := range []any{&pkt.Sequence, &pkt.Timestamp, &pkt.Task, &pkt.Status, &idLen} {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return pkt, fmt.Errorf("%w: %v", errShortPacket, err)
		}
	}

	id := make([]byte, idLen)
	if _, err := io.ReadFull(r, id); err != nil {
		return pkt, fmt.Errorf("%w: %v", errShortPacket, err)
	}
	pkt.Method = string(id)

	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return pkt, fmt.Errorf("%w: %v", errShortPacket, err)
	}
	pkt.Values = make([]float32, count)
	if err := binary.Read(r, binary.BigEndian, pkt.Values); err != nil {
		return pkt, fmt.Errorf("%w: %v", errShortPacket, err)
	}
	return pkt, nil
}

// Ensure UDPPublisher satisfies the Transport interface at compile time.
var _ transport.Transport = (*UDPPublisher)(nil)
