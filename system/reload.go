package system

import (
	"fmt"

	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/levels"
)

// ReloadCatalog parses data and installs it as the level catalog. It reports
// false when data matches the active or queued catalog. An idle session
// replays at once, otherwise the catalog waits for the next replay.
func (s *Session) ReloadCatalog(data []byte) (bool, error) {
	sum := levels.Fingerprint(data)
	current := s.catalog
	if s.next != nil {
		current = s.next
	}
	if sum == current.Fingerprint() {
		return false, nil
	}

	c, err := levels.Parse(data)
	if err != nil {
		return false, fmt.Errorf("system: reload catalog: %w", err)
	}
	if err := s.ReplaceCatalog(c); err != nil {
		return false, err
	}
	if s.phase == component.PhaseIdle {
		s.replay(true)
	}
	return true, nil
}
