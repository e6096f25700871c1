package streaks

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// Fingerprint identifies the inputs of a scan: the habit definition version
// and the per-day totals of its events. Two calls that would produce the same
// statistics for a given day share a fingerprint, whatever the event order.
func Fingerprint(h *domain.Habit, events []domain.ProgressEvent) uint64 {
	totals := collect(h, events)
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := xxhash.New()
	var buf [8]byte

	_, _ = d.WriteString(h.ID)
	binary.LittleEndian.PutUint64(buf[:], uint64(h.Version))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(h.UpdatedAt.UnixNano()))
	_, _ = d.Write(buf[:])

	for _, k := range keys {
		_, _ = d.WriteString(k)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(totals[k]))
		_, _ = d.Write(buf[:])
	}

	return d.Sum64()
}
