package draft_booking

import "time"

// dedupGuard отметка последнего перехода PendingCreate/Created
type dedupGuard struct {
	key string
	at  time.Time
}

// dedupKey ключ жеста: начало, округленное до минуты
func dedupKey(start time.Time) string {
	return start.UTC().Truncate(time.Minute).Format(time.RFC3339)
}

// blocks возвращает true, если жест с ключом key в момент now нужно проигнорировать
func (g *dedupGuard) blocks(key string, now time.Time) bool {
	if g.key == "" || g.key != key {
		return false
	}
	return now.Sub(g.at) < DedupWindow
}

func (g *dedupGuard) mark(key string, now time.Time) {
	g.key = key
	g.at = now
}

func (g *dedupGuard) clear() {
	g.key = ""
	g.at = time.Time{}
}
