package bigbuf

import (
	"bytes"
	"strings"

	"github.com/npillmayer/bigbuf/change"
	"github.com/npillmayer/schuko"
)

// Tracking policies for Options.Tracking.
const (
	TrackAll  = change.TrackAll
	TrackNone = change.TrackNone
)

// DefaultFindWindow is the number of bytes a search inspects per step.
const DefaultFindWindow = 64 * 1024

// Options configure a buffer. The zero value is a writable buffer with
// unlimited history.
type Options struct {
	Tracking   change.Policy // whether to keep undo history
	ReadOnly   bool          // refuse all edits
	MaxUndo    int           // cap on undo groups, 0 for unlimited
	FindWindow int           // bytes per search step, 0 for DefaultFindWindow
	Matcher    Matcher       // exact-match search primitive, nil for bytes.Index
}

// Configuration keys read by OptionsFromConfig.
const (
	ConfTracking   = "bigbuf.tracking"   // "all" or "none"
	ConfReadOnly   = "bigbuf.readonly"   // boolean
	ConfMaxUndo    = "bigbuf.maxundo"    // integer
	ConfFindWindow = "bigbuf.findwindow" // integer
)

// OptionsFromConfig reads buffer options from an application configuration.
// Keys not set leave the respective option at its zero value.
func OptionsFromConfig(conf schuko.Configuration) Options {
	var opts Options
	if conf == nil {
		return opts
	}
	if conf.IsSet(ConfTracking) {
		switch p := strings.ToLower(conf.GetString(ConfTracking)); p {
		case "none", "off":
			opts.Tracking = TrackNone
		case "all", "on":
			opts.Tracking = TrackAll
		default:
			tracer().Errorf("unknown tracking policy %q, tracking all edits", p)
		}
	}
	if conf.IsSet(ConfReadOnly) {
		opts.ReadOnly = conf.GetBool(ConfReadOnly)
	}
	if conf.IsSet(ConfMaxUndo) {
		opts.MaxUndo = max(0, conf.GetInt(ConfMaxUndo))
	}
	if conf.IsSet(ConfFindWindow) {
		opts.FindWindow = max(0, conf.GetInt(ConfFindWindow))
	}
	return opts
}

func (opts Options) window() int {
	if opts.FindWindow <= 0 {
		return DefaultFindWindow
	}
	return opts.FindWindow
}

func (opts Options) matcher() Matcher {
	if opts.Matcher == nil {
		return IndexMatcher{}
	}
	return opts.Matcher
}

// Matcher is an exact-match substring search primitive.
//
// Index returns the index of the first occurrence of pattern in data, or -1.
// LastIndex returns the index of the last occurrence, or -1.
type Matcher interface {
	Index(data, pattern []byte) int
	LastIndex(data, pattern []byte) int
}

// IndexMatcher is the default Matcher, delegating to package bytes.
type IndexMatcher struct{}

// Index calls bytes.Index.
func (IndexMatcher) Index(data, pattern []byte) int {
	return bytes.Index(data, pattern)
}

// LastIndex calls bytes.LastIndex.
func (IndexMatcher) LastIndex(data, pattern []byte) int {
	return bytes.LastIndex(data, pattern)
}
