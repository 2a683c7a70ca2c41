package langpack

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// ErrUnsupportedCulture is returned when no registered pack matches a culture.
var ErrUnsupportedCulture = errors.New("unsupported culture")

// Registry resolves culture names to packs using BCP 47 matching, so a
// request for en-GB is served by an en-US pack.
type Registry struct {
	mu      sync.RWMutex
	tags    []language.Tag
	packs   []*Pack
	matcher language.Matcher
}

// NewRegistry creates a registry holding the given packs. The first pack is
// the default.
func NewRegistry(packs ...*Pack) *Registry {
	r := &Registry{}
	for _, p := range packs {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the pack for its culture.
func (r *Registry) Register(p *Pack) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, tag := range r.tags {
		if tag == p.Culture {
			r.packs[i] = p
			return
		}
	}
	r.tags = append(r.tags, p.Culture)
	r.packs = append(r.packs, p)
	r.matcher = language.NewMatcher(r.tags)
}

// Lookup returns the pack that best serves culture. An empty culture selects
// the default pack.
func (r *Registry) Lookup(culture string) (*Pack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.packs) == 0 {
		return nil, errors.Wrap(ErrUnsupportedCulture, "no language packs registered")
	}
	if culture == "" {
		return r.packs[0], nil
	}
	tag, err := language.Parse(culture)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedCulture, "%q: %v", culture, err)
	}
	_, index, confidence := r.matcher.Match(tag)
	if confidence == language.No {
		return nil, errors.Wrapf(ErrUnsupportedCulture, "%q", culture)
	}
	return r.packs[index], nil
}

// Cultures lists the registered culture tags.
func (r *Registry) Cultures() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.tags))
	for i, tag := range r.tags {
		out[i] = tag.String()
	}
	return out
}

// DefaultRegistry returns a registry with the embedded packs.
func DefaultRegistry() (*Registry, error) {
	en, err := NewEnglish()
	if err != nil {
		return nil, err
	}
	return NewRegistry(en), nil
}
