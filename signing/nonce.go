package signing

import (
	"sync/atomic"
	"time"
)

// NonceHandler hands out strictly increasing nonces in millisecond
// timestamp space. The counter tracks the wall clock: when it falls more
// than 300ms behind it jumps forward to now, otherwise it increments, so
// bursts of concurrent callers still get unique nonces inside the
// exchange's accepted window.
type NonceHandler struct {
	next atomic.Uint64
}

func NewNonceHandler() *NonceHandler {
	h := &NonceHandler{}
	h.next.Store(uint64(time.Now().UnixMilli()))
	return h
}

// Next returns the next nonce. Safe for concurrent use.
func (h *NonceHandler) Next() uint64 {
	now := uint64(time.Now().UnixMilli())
	for {
		cur := h.next.Load()
		if now <= cur+300 || h.next.CompareAndSwap(cur, now) {
			break
		}
	}

	return h.next.Add(1) - 1
}
