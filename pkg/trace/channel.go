package trace

import (
	"fmt"
	"log/slog"
)

// Mode tells how a channel's sink receives block boundaries.
type Mode uint8

const (
	// ModeDirect sinks get the prefix and suffix as text lines.
	ModeDirect Mode = iota
	// ModeCallback sinks get the prefix and suffix through Control.
	ModeCallback
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// channel is the per-category configuration. It owns its sink.
type channel struct {
	mode   Mode
	sink   Sink
	prefix string
	suffix string
}

// ChannelInfo is a snapshot of one category's configuration.
type ChannelInfo struct {
	Category Category
	Mode     Mode
	HasSink  bool
	Prefix   string
	Suffix   string
}

// SetSink attaches s to category c, closing the sink previously attached.
// A nil s disables the category; it then falls back to CategoryAny. The
// tracer owns s from now on, so passing the sink already attached closes it.
func (t *Tracer) SetSink(c Category, s Sink) error {
	if !c.Valid() {
		return ErrInvalidCategory
	}

	t.cfgMu.Lock()
	defer t.cfgMu.Unlock()

	if t.shut {
		return ErrShutdown
	}

	t.releaseSinkLocked(c)
	if s == nil {
		return nil
	}
	t.channels[c].sink = s
	t.channels[c].mode = ModeDirect
	return nil
}

// SetCallback attaches fn to category c through a CallbackSink, closing the
// sink previously attached. data is passed to every call of fn. A nil fn
// disables the category.
//
// If the adapter cannot be built the category is left disabled; the previous
// sink is not restored.
func (t *Tracer) SetCallback(c Category, fn Callback, data any) error {
	if !c.Valid() {
		return ErrInvalidCategory
	}

	t.cfgMu.Lock()
	defer t.cfgMu.Unlock()

	if t.shut {
		return ErrShutdown
	}

	t.releaseSinkLocked(c)
	if fn == nil {
		return nil
	}

	cs, err := NewCallbackSink(fn, c, data)
	if err != nil {
		return fmt.Errorf("trace: set callback for %s: %w", c, err)
	}
	t.channels[c].sink = cs
	t.channels[c].mode = ModeCallback
	return nil
}

// SetPrefix sets the text emitted when a block opens on category c.
//
// There is no separate "unset" value: an empty text clears the prefix, and
// a direct sink then gets no line at all, not an empty one. To emit a blank
// line, set a prefix of a single space or write it in the block. Callback
// sinks receive PhaseBegin either way, with an empty argument.
func (t *Tracer) SetPrefix(c Category, text string) error {
	return t.setText(c, text, func(ch *channel) *string { return &ch.prefix })
}

// SetSuffix sets the text emitted when a block on category c ends. As with
// SetPrefix, an empty text clears the suffix and a direct sink gets no
// trailing newline for it.
func (t *Tracer) SetSuffix(c Category, text string) error {
	return t.setText(c, text, func(ch *channel) *string { return &ch.suffix })
}

func (t *Tracer) setText(c Category, text string, field func(*channel) *string) error {
	if !c.Valid() {
		return ErrInvalidCategory
	}

	t.cfgMu.Lock()
	defer t.cfgMu.Unlock()

	if t.shut {
		return ErrShutdown
	}

	*field(&t.channels[c]) = text
	return nil
}

// Enabled reports whether a Begin on category c would return a block.
func (t *Tracer) Enabled(c Category) bool {
	t.cfgMu.RLock()
	defer t.cfgMu.RUnlock()

	if t.shut {
		return false
	}
	rc := t.resolveLocked(c)
	return rc != CategoryInvalid && t.channels[rc].sink != nil
}

// Channel returns the configuration of category c itself, without falling
// back to CategoryAny.
func (t *Tracer) Channel(c Category) (ChannelInfo, bool) {
	if !c.Valid() {
		return ChannelInfo{}, false
	}

	t.cfgMu.RLock()
	defer t.cfgMu.RUnlock()

	ch := t.channels[c]
	return ChannelInfo{
		Category: c,
		Mode:     ch.mode,
		HasSink:  ch.sink != nil,
		Prefix:   ch.prefix,
		Suffix:   ch.suffix,
	}, true
}

// resolveLocked returns the category whose channel serves c.
// The caller holds cfgMu.
func (t *Tracer) resolveLocked(c Category) Category {
	if !c.Valid() {
		return CategoryInvalid
	}
	if t.channels[c].sink != nil {
		return c
	}
	return CategoryAny
}

// snapshot returns the effective category for c and a copy of its channel.
func (t *Tracer) snapshot(c Category) (Category, channel, bool) {
	t.cfgMu.RLock()
	defer t.cfgMu.RUnlock()

	if t.shut {
		return CategoryInvalid, channel{}, false
	}
	rc := t.resolveLocked(c)
	if rc == CategoryInvalid {
		return CategoryInvalid, channel{}, false
	}
	return rc, t.channels[rc], true
}

// releaseSinkLocked closes and forgets the sink of category c.
// The caller holds cfgMu for writing.
func (t *Tracer) releaseSinkLocked(c Category) {
	ch := &t.channels[c]
	if ch.sink == nil {
		return
	}
	if err := ch.sink.Close(); err != nil {
		t.logger.Debug("trace: closing sink failed",
			slog.String("category", c.String()),
			slog.Any("error", err),
		)
	}
	ch.sink = nil
	ch.mode = ModeDirect
}
