// Package sweeper периодически освобождает пространства, у которых окно
// брони уже прошло. Пространство может оставаться занятым до одного
// интервала после конца брони: это уборка, а не точное истечение.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Leganyst/space-booking/internal/clock"
	"github.com/Leganyst/space-booking/internal/model"
)

var (
	ErrAlreadyRunning  = errors.New("sweeper already running")
	ErrInvalidInterval = errors.New("sweep interval must be positive")
)

// Expirer удаляет брони, закончившиеся до now, и освобождает их пространства.
type Expirer interface {
	ExpireElapsed(ctx context.Context, now time.Time) ([]model.Booking, error)
}

type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	clock    clock.Clock
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(expirer Expirer, interval time.Duration, clk clock.Clock, log *slog.Logger) *Sweeper {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		clock:    clk,
		log:      log.With("component", "sweeper"),
	}
}

// Start запускает цикл очистки. Первый проход через один интервал после
// Start. Цикл завершается по Stop или при отмене ctx.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	// Тикер создаётся до возврата из Start, иначе тики сразу после
	// запуска потеряются.
	ticker := s.clock.NewTicker(s.interval)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, ticker, done)

	s.log.Info("sweeper started", "interval", s.interval)
	return nil
}

func (s *Sweeper) loop(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Ошибка уже в логе, следующий тик повторит.
			_, _ = s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Stop останавливает цикл и ждёт завершения текущего прохода.
// Повторный вызов и вызов без Start ничего не делают.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("sweeper stopped")
}

// RunOnce делает один проход на текущем времени часов и возвращает
// число истёкших броней.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.clock.Now()
	expired, err := s.expirer.ExpireElapsed(ctx, now)
	if err != nil {
		s.log.ErrorContext(ctx, "sweep failed", "err", err, "expired", len(expired))
		return len(expired), err
	}
	if len(expired) > 0 {
		s.log.InfoContext(ctx, "expired bookings released", "count", len(expired))
	} else {
		s.log.DebugContext(ctx, "sweep found nothing to expire")
	}
	return len(expired), nil
}
