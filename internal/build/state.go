package build

import (
	"fmt"
	"sync"
)

// Progress of one (package, platform) pair.
type Phase int

const (
	Pending   Phase = iota // No SDK started.
	Archiving              // At least one SDK started, not all finished.
	Archived               // Every SDK archived.
	Failed                 // Every SDK finished, at least one failed.
	Cancelled              // Halted before every SDK finished.
)

func (p Phase) String() string {
	switch p {
	case Archiving:
		return "archiving"
	case Archived:
		return "archived"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "pending"
}

// Implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Snapshot of one (package, platform) pair.
type State struct {
	Package    string   `yaml:"package"`
	Platform   string   `yaml:"platform"`
	Phase      Phase    `yaml:"phase"`
	Archives   []string `yaml:"archives,omitempty"`    // Successful archives, in SDK order.
	FailedSDKs []string `yaml:"failed_sdks,omitempty"` // SDKs whose archive failed, in SDK order.
}

// Mutable record behind a [State].
type pairState struct {
	pkg      string
	platform string
	phase    Phase
	sdks     []string // SDK names, in table order.
	archives []string // Archive path per SDK index, "" until archived.
	failed   []bool   // Failure flag per SDK index.
	done     int      // Finished SDKs.
}

// Tracks every (package, platform) pair of a run.
//
// Workers report per-SDK outcomes concurrently. Each pair moves from pending
// through archiving to archived or failed once all of its SDKs finished, or
// to cancelled when the run halts first.
type tracker struct {
	mu    sync.Mutex
	pairs map[string]*pairState
	order []string
}

func newTracker() *tracker {
	return &tracker{pairs: make(map[string]*pairState)}
}

func pairKey(pkg, platform string) string {
	return pkg + "\x00" + platform
}

// Registers a pair with its SDKs in table order.
func (t *tracker) add(pkg, platform string, sdks []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := pairKey(pkg, platform)
	if _, ok := t.pairs[key]; ok {
		return
	}
	t.pairs[key] = &pairState{
		pkg:      pkg,
		platform: platform,
		sdks:     sdks,
		archives: make([]string, len(sdks)),
		failed:   make([]bool, len(sdks)),
	}
	t.order = append(t.order, key)
}

// Marks an SDK of a pair as started.
func (t *tracker) begin(pkg, platform string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s := t.pairs[pairKey(pkg, platform)]; s != nil && s.phase == Pending {
		s.phase = Archiving
	}
}

// Records a successful archive for an SDK of a pair.
func (t *tracker) succeed(pkg, platform string, sdk int, archivePath string) {
	t.finish(pkg, platform, sdk, func(s *pairState) {
		s.archives[sdk] = archivePath
	})
}

// Records a failed archive for an SDK of a pair.
func (t *tracker) fail(pkg, platform string, sdk int) {
	t.finish(pkg, platform, sdk, func(s *pairState) {
		s.failed[sdk] = true
	})
}

func (t *tracker) finish(pkg, platform string, sdk int, record func(*pairState)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.pairs[pairKey(pkg, platform)]
	if s == nil || sdk < 0 || sdk >= len(s.sdks) {
		panic(fmt.Sprintf("build: unknown variant %s/%s#%d", pkg, platform, sdk))
	}

	record(s)
	s.done++
	if s.done < len(s.sdks) {
		s.phase = Archiving
		return
	}

	s.phase = Archived
	for _, f := range s.failed {
		if f {
			s.phase = Failed
			break
		}
	}
}

// Moves every unfinished pair to cancelled.
func (t *tracker) cancelUnfinished() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.pairs {
		if s.done < len(s.sdks) {
			s.phase = Cancelled
		}
	}
}

// Returns the successful archives of a pair, in SDK order.
func (t *tracker) archives(pkg, platform string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.pairs[pairKey(pkg, platform)]
	if s == nil {
		return nil
	}
	var out []string
	for _, a := range s.archives {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Returns a snapshot of every pair, in registration order.
func (t *tracker) snapshot() []State {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]State, 0, len(t.order))
	for _, key := range t.order {
		s := t.pairs[key]
		st := State{Package: s.pkg, Platform: s.platform, Phase: s.phase}
		for i, a := range s.archives {
			if a != "" {
				st.Archives = append(st.Archives, a)
			}
			if s.failed[i] {
				st.FailedSDKs = append(st.FailedSDKs, s.sdks[i])
			}
		}
		out = append(out, st)
	}
	return out
}
