package viz

import (
	"sync"
	"time"

	"github.com/san-kum/dronesim/internal/control"
)

// Keyboard is an input device fed by terminal key events. Terminals send
// repeats while a key is down but never a release, so a key stays held
// for Window after its most recent event.
type Keyboard struct {
	Window time.Duration

	mu   sync.Mutex
	last map[control.Key]time.Time
	now  func() time.Time
}

func NewKeyboard(window time.Duration) *Keyboard {
	return &Keyboard{
		Window: window,
		last:   make(map[control.Key]time.Time),
		now:    time.Now,
	}
}

// Press records a key event at the current time.
func (k *Keyboard) Press(key control.Key) {
	k.mu.Lock()
	k.last[key] = k.now()
	k.mu.Unlock()
}

func (k *Keyboard) ReleaseAll() {
	k.mu.Lock()
	clear(k.last)
	k.mu.Unlock()
}

func (k *Keyboard) Poll() control.InputState {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	held := make(control.KeySet, len(k.last))
	for key, at := range k.last {
		if now.Sub(at) < k.Window {
			held[key] = true
		} else {
			delete(k.last, key)
		}
	}
	return control.InputState{Held: held}
}
