package engine

import (
	"context"
	"time"
)

// StartAutoSave persists the state every interval until StopAutoSave or
// Close. Calling it again replaces the running schedule.
func (e *Engine) StartAutoSave(interval time.Duration) {
	if interval <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAutoSaveLocked()
	e.autoEvery = interval
	e.scheduleAutoSaveLocked()
}

// StopAutoSave cancels the auto-save schedule.
func (e *Engine) StopAutoSave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAutoSaveLocked()
}

func (e *Engine) stopAutoSaveLocked() {
	if e.autoTimer != nil {
		e.autoTimer.Stop()
		e.autoTimer = nil
	}
	e.autoGen++
}

// scheduleAutoSaveLocked arms the next tick. A tick from an older schedule
// sees a different generation and does nothing.
func (e *Engine) scheduleAutoSaveLocked() {
	gen := e.autoGen
	e.autoTimer = e.clk.AfterFunc(e.autoEvery, func() { e.autoSaveTick(gen) })
}

func (e *Engine) autoSaveTick(gen int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.autoGen || e.autoTimer == nil {
		return
	}
	if err := e.persistLocked(context.Background()); err == nil {
		e.log.Debug().Msg("auto-saved")
	}
	e.scheduleAutoSaveLocked()
}

// Flush persists the current state now.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked(ctx)
}

// Close stops the auto-save schedule and performs a final synchronous save.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAutoSaveLocked()
	return e.persistLocked(ctx)
}
