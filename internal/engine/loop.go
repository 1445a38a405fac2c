package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var ErrLoopStopped = errors.New("ui loop stopped")

// Scheduler: то, что контроллерам нужно от UI-цикла:
// Go уводит сетевой вызов из цикла, Post возвращает его завершение обратно.
type Scheduler interface {
	Go(task func())
	Post(task func()) bool
}

// Loop: единственная горутина, которая владеет документом, реестром графиков и
// состоянием контроллеров. Задачи выполняются строго по одной, в порядке поступления.
// Блокировок вокруг UI-состояния нет: весь доступ к нему идет через Post/Do.
type Loop struct {
	tasks   chan func()
	quit    chan struct{}
	done    chan struct{}
	logger  *zap.Logger
	metrics *Metrics

	stopOnce sync.Once
	running  atomic.Bool
	inflight sync.WaitGroup
}

func NewLoop(buffer int, logger *zap.Logger, metrics *Metrics) *Loop {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Loop{
		tasks:   make(chan func(), max(1, buffer)),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		logger:  logger.Named("ui-loop"),
		metrics: metrics,
	}
}

func (l *Loop) Start() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	go l.worker()
}

// Stop перестает принимать задачи, дорабатывает очередь (Drain Pattern)
// и ждет фоновые вызовы, запущенные через Go.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.logger.Info("stopping ui loop: draining queue...")
		close(l.quit)
		if l.running.Load() {
			<-l.done
		}
		l.inflight.Wait()
		l.logger.Info("ui loop stopped gracefully")
	})
}

// Post ставит задачу в очередь. Блокируется, пока очередь полна;
// false: цикл уже остановлен, задача не будет выполнена.
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.quit:
		l.logger.Warn("ui task dropped: loop is stopping")
		return false
	default:
	}

	select {
	case l.tasks <- task:
		l.metrics.LoopQueueDepth.Set(float64(len(l.tasks)))
		return true
	case <-l.quit:
		l.logger.Warn("ui task dropped: loop is stopping")
		return false
	}
}

// Do выполняет задачу в цикле и ждет ее завершения.
// Нельзя вызывать из задачи самого цикла: это дедлок.
func (l *Loop) Do(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		task()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Воркер закрывает done только после дренажа: если задача не выполнена к этому
		// моменту, она проскочила в очередь уже после остановки и не выполнится никогда.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go запускает работу вне цикла (сетевые вызовы). Stop дожидается таких задач.
func (l *Loop) Go(task func()) {
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		task()
	}()
}

func (l *Loop) worker() {
	defer close(l.done)

	for {
		select {
		case task := <-l.tasks:
			l.run(task)
		case <-l.quit:
			// Вычитываем то, что успели поставить до остановки
			for {
				select {
				case task := <-l.tasks:
					l.run(task)
				default:
					l.metrics.LoopQueueDepth.Set(0)
					l.logger.Info("ui loop worker finished")
					return
				}
			}
		}
	}
}

// run изолирует панику одной задачи: цикл продолжает обслуживать остальные.
func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.metrics.LoopPanics.Inc()
			l.logger.Error("ui task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	task()
	l.metrics.LoopQueueDepth.Set(float64(len(l.tasks)))
}
