// Package clock: источник времени. В работе передаётся Real(), в тестах
// Fake, чтобы срок токена и очистку броней можно было двигать вручную.
package clock

import "time"

type Clock interface {
	Now() time.Time

	// NewTicker паникует при d <= 0, как и time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker: периодический таймер. Буфер C на один тик; если читатель
// отстаёт, лишние тики теряются.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop выключает тикер. C не закрывается.
func (t *Ticker) Stop() { t.stopFunc() }

// Real возвращает часы на пакете time.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) *Ticker {
	ticker := time.NewTicker(d)
	return &Ticker{C: ticker.C, stopFunc: ticker.Stop}
}
