package orch

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 16

// BackpressureAction is what happens to a subscriber whose buffer is full.
type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropUpdate
	KickSubscriber
)

type Policy interface {
	OnBackPressure(id uint64, dropped int) BackpressureAction
}

// DropPolicy skips updates for slow subscribers and never disconnects them.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(uint64, int) BackpressureAction { return DropUpdate }

// KickPolicy disconnects a subscriber after Limit consecutive drops.
type KickPolicy struct{ Limit int }

func (p KickPolicy) OnBackPressure(_ uint64, dropped int) BackpressureAction {
	if dropped >= p.Limit {
		return KickSubscriber
	}
	return DropUpdate
}

type subscriber struct {
	ch      chan Status
	dropped int
}

type publishResult struct {
	SentTo  int
	Dropped []uint64
}

type feed struct {
	policy Policy

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

func newFeed(p Policy) *feed {
	return &feed{policy: p, subs: make(map[uint64]*subscriber)}
}

func (f *feed) subscribe() (<-chan Status, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	sub := &subscriber{ch: make(chan Status, subscriberBuffer)}
	f.subs[id] = sub
	log.Debug().Str("module", "orch.feed").Uint64("sub", id).Msg("subscribed")

	var once sync.Once
	return sub.ch, func() { once.Do(func() { f.remove(id) }) }
}

func (f *feed) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(sub.ch)
		log.Debug().Str("module", "orch.feed").Uint64("sub", id).Msg("unsubscribed")
	}
}

func (f *feed) broadcast(st Status) publishResult {
	f.mu.Lock()
	res := publishResult{}
	for id, sub := range f.subs {
		select {
		case sub.ch <- st:
			sub.dropped = 0
			res.SentTo++
		default:
			sub.dropped++
			res.Dropped = append(res.Dropped, id)
		}
	}
	var kick []uint64
	for _, id := range res.Dropped {
		switch f.policy.OnBackPressure(id, f.subs[id].dropped) {
		case KickSubscriber:
			kick = append(kick, id)
		case DropUpdate, NoAction:
		}
	}
	f.mu.Unlock()

	for _, id := range kick {
		log.Info().Str("module", "orch.feed").Uint64("sub", id).Msg("slow subscriber kicked")
		f.remove(id)
	}
	if len(res.Dropped) > 0 {
		log.Debug().Str("module", "orch.feed").Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	}
	return res
}
