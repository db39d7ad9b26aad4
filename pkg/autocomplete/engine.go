// Package autocomplete maintains per-trigger search state for mention,
// wikilink, template and tag completion: a prefix-keyed memo, a pending
// request snapshot fence, containment-then-prefix ranking, and merging of
// synchronous local matches with asynchronous remote lookups.
package autocomplete

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/feldtn/wikitalk/internal/utils"
	"github.com/feldtn/wikitalk/pkg/config"
)

// slotCount is how many suggestions a query yields; the last slot is
// reserved for the verbatim typed text so the user can always insert
// exactly what they typed.
const slotCount = 10

// Lookup is a remote name source for one channel's remote pass.
type Lookup func(ctx context.Context, prefix string) ([]string, error)

// Deliver receives one suggestion list for a query. final reports that
// no further delivery will follow for this query; every query that gets
// a non-final delivery gets exactly one final one later. Deliver runs
// with the engine locked so the staleness check and the hand-off are one
// step; it must not call back into the engine.
type Deliver func(items []string, final bool)

// channel is the live search state for one trigger type. snapshot holds
// the most recently requested raw query text and is the only staleness
// fence: a remote result is delivered only while its originating query
// still equals snapshot. byText is an unbounded session memo; cache is
// the last full remote result set, reused as the local fallback while a
// narrowed-prefix request is in flight.
type channel struct {
	snapshot string
	cache    []string
	byText   map[string][]string
	index    *Index
}

// Engine owns every channel's state; nothing else reads or writes it.
type Engine struct {
	mu       sync.Mutex
	channels map[string]*channel
	triggers map[string]Trigger
	lookups  map[string]Lookup
	group    singleflight.Group
	wg       sync.WaitGroup
}

// NewEngine builds an engine from trigger configuration. Remote lookups
// are attached per channel with SetLookup; channels without one stay
// local-only.
func NewEngine(triggers map[string]config.TriggerConfig) *Engine {
	e := &Engine{
		channels: make(map[string]*channel),
		triggers: make(map[string]Trigger),
		lookups:  make(map[string]Lookup),
	}
	for name, cfg := range triggers {
		e.triggers[name] = NewTrigger(name, cfg)
		e.channels[name] = &channel{
			byText: make(map[string][]string),
			index:  NewIndex(),
		}
	}
	return e
}

// SetLookup attaches the remote name source for a trigger.
func (e *Engine) SetLookup(trigger string, lookup Lookup) {
	e.lookups[trigger] = lookup
}

// Seed adds roster candidates to a channel's default index.
func (e *Engine) Seed(trigger string, names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.channels[trigger]
	if !ok {
		return
	}
	for _, n := range names {
		ch.index.Add(n)
	}
	log.Debugf("Seeded %q channel: %s candidates", trigger, utils.FormatWithCommas(ch.index.Len()))
}

// Trigger returns the trigger bound to a channel name.
func (e *Engine) Trigger(name string) (Trigger, bool) {
	t, ok := e.triggers[name]
	return t, ok
}

// Query runs one keystroke-driven query against a channel. Local results
// are delivered synchronously through deliver; a remote pass may deliver
// a second, fresher list later, but never one for a superseded query. A
// superseded or failed pass repeats the local list instead, so the final
// delivery always arrives. A duplicate of the channel's current query is
// suppressed entirely and delivers nothing.
func (e *Engine) Query(ctx context.Context, trigger, text string, deliver Deliver) {
	e.mu.Lock()
	ch, ok := e.channels[trigger]
	if !ok {
		e.mu.Unlock()
		log.Warnf("Query for unknown trigger %q", trigger)
		return
	}
	tr := e.triggers[trigger]

	if text == ch.snapshot {
		e.mu.Unlock()
		return
	}
	if !strings.HasPrefix(text, ch.snapshot) {
		// the user backtracked or changed direction; cached remote
		// results no longer form a valid superset
		ch.cache = nil
	}
	ch.snapshot = text

	if memo, ok := ch.byText[text]; ok {
		out := append([]string(nil), memo...)
		deliver(out, true)
		e.mu.Unlock()
		return
	}

	base := ch.cache
	if len(base) == 0 {
		base = ch.index.Prefix(text, slotCount*4)
	}
	local := Search(text, base)
	out := withVerbatim(local, text)

	lookup := e.lookups[trigger]
	willRemote := len(local) == 0 && !tr.Static() && tr.IsLikelyName(text) && lookup != nil

	deliver(out, !willRemote)
	e.mu.Unlock()

	if !willRemote {
		return
	}
	e.wg.Add(1)
	go e.remotePass(ctx, trigger, text, lookup, out, deliver)
}

// remotePass asks the remote name source and delivers fresher items only
// if the query is still live. There is no cancellation of superseded
// lookups; the snapshot check at resolution time is the sole fence, and
// it shares the lock with the delivery so a newer query cannot slip in
// between the check and the hand-off. A pass that settles without
// fresher items, because the lookup failed or the query went stale,
// closes the query out by repeating its local list as the final
// delivery.
func (e *Engine) remotePass(ctx context.Context, trigger, text string, lookup Lookup, localOut []string, deliver Deliver) {
	defer e.wg.Done()

	v, err, _ := e.group.Do(trigger+"\x00"+text, func() (interface{}, error) {
		return lookup(ctx, text)
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	ch := e.channels[trigger]

	if err != nil {
		log.Debugf("Remote lookup for %q failed, staying local-only: %v", text, err)
		deliver(append([]string(nil), localOut...), true)
		return
	}
	names, _ := v.([]string)
	if ch.snapshot != text {
		deliver(append([]string(nil), localOut...), true)
		return
	}

	ch.cache = names
	out := withVerbatim(Search(text, names), text)
	ch.byText[text] = out
	deliver(append([]string(nil), out...), true)
}

// Wait blocks until every in-flight remote pass has settled. Tests and
// shutdown paths use it; the interactive path never does.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Insertable applies the trigger's transform to a chosen candidate.
func (e *Engine) Insertable(trigger, name string) (string, int) {
	tr, ok := e.triggers[trigger]
	if !ok {
		return name, 0
	}
	return tr.Transform(name)
}

// withVerbatim caps items at slotCount and reserves the final slot for
// the raw typed text, unless it already appears in the list.
func withVerbatim(items []string, text string) []string {
	out := make([]string, 0, slotCount)
	seen := false
	for _, item := range items {
		if len(out) >= slotCount-1 {
			break
		}
		if item == text {
			seen = true
		}
		out = append(out, item)
	}
	if !seen {
		out = append(out, text)
	} else if len(items) > len(out) {
		out = append(out, items[len(out)])
	}
	return out
}
