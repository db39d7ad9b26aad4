package autocomplete

import (
	"strings"

	"github.com/feldtn/wikitalk/internal/utils"
	"github.com/feldtn/wikitalk/pkg/config"
)

// Trigger binds a channel name to its static configuration: the marker
// that activates it, the name-validity thresholds, and the insertion
// transform.
type Trigger struct {
	Name string
	cfg  config.TriggerConfig
}

// NewTrigger wraps one trigger's configuration.
func NewTrigger(name string, cfg config.TriggerConfig) Trigger {
	return Trigger{Name: name, cfg: cfg}
}

// Marker returns the activating marker string ("@", "[[", "{{", "<").
func (t Trigger) Marker() string {
	return t.cfg.Marker
}

// Static reports whether this channel only ever serves roster candidates.
func (t Trigger) Static() bool {
	return t.cfg.Static
}

// IsLikelyName reports whether text could plausibly be a name for this
// trigger, bounding length, space count and character classes. Queries
// that fail never reach the remote pass.
func (t Trigger) IsLikelyName(text string) bool {
	if len(text) < t.cfg.MinLength || len(text) > t.cfg.MaxLength {
		return false
	}
	if utils.CountSpaces(text) > t.cfg.MaxSpaces {
		return false
	}
	if t.cfg.CharBlacklist != "" && utils.ContainsAny(text, t.cfg.CharBlacklist) {
		return false
	}
	if t.cfg.MaxSpaces == 0 && !utils.IsLettersAndDigits(text) {
		return false
	}
	return true
}

// Transform turns a chosen name into its insertable wikitext snippet and
// the caret offset from the snippet's end.
func (t Trigger) Transform(name string) (string, int) {
	snippet := strings.ReplaceAll(t.cfg.Pattern, "$1", name)
	caret := t.cfg.CaretOffset
	if t.cfg.CaretInside {
		// place the caret between the opening and closing tag
		caret = len(name) + len("</>")
	}
	return snippet, caret
}
