// Package events fans match events out to result aggregators. Sinks only
// observe: nothing a sink does can change the match.
package events

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nathoo/metaleague/types"
)

// Sink receives match events.
type Sink interface {
	Handle(evt types.Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(evt types.Event)

func (f SinkFunc) Handle(evt types.Event) { f(evt) }

// Filter passes on only events of the listed types.
func Filter(next Sink, eventTypes ...string) Sink {
	want := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		want[t] = true
	}
	return SinkFunc(func(evt types.Event) {
		if want[evt.Type] {
			next.Handle(evt)
		}
	})
}

// Dispatcher delivers each event to every sink in registration order. A
// panicking sink is logged and skipped for that event.
type Dispatcher struct {
	sinks []Sink
	log   *zap.Logger
}

// NewDispatcher creates a Dispatcher over sinks. Nil sinks are dropped.
func NewDispatcher(log *zap.Logger, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{log: log}
	for _, s := range sinks {
		d.Add(s)
	}
	return d
}

// Add registers another sink.
func (d *Dispatcher) Add(s Sink) {
	if s != nil {
		d.sinks = append(d.sinks, s)
	}
}

// Len is the number of registered sinks.
func (d *Dispatcher) Len() int { return len(d.sinks) }

// Emit delivers evt. Single pass: sinks cannot raise further events.
func (d *Dispatcher) Emit(evt types.Event) {
	for i, s := range d.sinks {
		if err := deliver(s, evt); err != nil {
			d.log.Warn("event sink failed",
				zap.Int("sink", i), zap.String("event", evt.Type), zap.Error(err))
		}
	}
}

func deliver(s Sink, evt types.Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sink panicked: %v", p)
		}
	}()
	s.Handle(evt)
	return nil
}

// Recorder keeps every event and tallies rStat deltas per character. Safe
// for use by several matches at once.
type Recorder struct {
	mu     sync.Mutex
	events []types.Event
	counts map[string]int
	stats  map[string]map[string]float64
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		counts: map[string]int{},
		stats:  map[string]map[string]float64{},
	}
}

func (r *Recorder) Handle(evt types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	r.counts[evt.Type]++
	if evt.Type != types.EventStat || evt.CharacterID == "" {
		return
	}
	key, _ := evt.Data["key"].(string)
	delta, _ := evt.Data["delta"].(float64)
	if key == "" {
		return
	}
	per, ok := r.stats[evt.CharacterID]
	if !ok {
		per = map[string]float64{}
		r.stats[evt.CharacterID] = per
	}
	per[key] += delta
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Event(nil), r.events...)
}

// Count is the number of events of one type.
func (r *Recorder) Count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[eventType]
}

// Stat is the summed rStat delta reported for one character.
func (r *Recorder) Stat(characterID, key string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats[characterID][key]
}

// Characters lists every character that reported an rStat, sorted.
func (r *Recorder) Characters() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.stats))
	for id := range r.stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
