package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-admin/pkg/logger"
)

// allClosed — индекс, возвращаемый gracefulClose, когда все ресурсы закрыты без прерывания
const allClosed = -1

// Closer закрывает зарегистрированные ресурсы в обратном порядке (LIFO).
type Closer struct {
	items         []item
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
	logger        logger.Logger
}

// Func — сигнатура функции закрытия ресурса.
type Func func(ctx context.Context) error

type item struct {
	name string
	fn   Func
}

// NewCloser создает новый экземпляр Closer.
// forcedTimeout задаёт время на принудительное закрытие ресурсов, не успевших закрыться до отмены контекста.
// Каждый шаг остановки пишется в log с именем ресурса и длительностью.
func NewCloser(forcedTimeout time.Duration, log logger.Logger) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout, logger: log}
}

// Add регистрирует ресурс. name попадает в текст ошибки, если закрытие не удалось.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item{name: name, fn: f})
}

// AddSync регистрирует ресурс, закрытие которого не возвращает ошибку
// и не зависит от контекста (пул соединений, отмена фоновых задач).
func (c *Closer) AddSync(name string, f func()) {
	c.Add(name, func(context.Context) error {
		f()
		return nil
	})
}

// Close закрывает ресурсы в порядке LIFO. Повторные вызовы ничего не делают.
// Если ctx отменяется раньше, оставшиеся ресурсы закрываются параллельно с forcedTimeout.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		items := c.items
		c.mu.Unlock()

		stopIdx, errs := c.gracefulClose(ctx, items)
		if stopIdx == allClosed {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		errs = append(errs, c.forcedClose(items[:stopIdx+1])...)
		err = fmt.Errorf(
			"shutdown interrupted after %d/%d funcs:\n%s",
			len(items)-1-stopIdx,
			len(items),
			strings.Join(errs, "\n"),
		)
	})

	return err
}

func (c *Closer) gracefulClose(ctx context.Context, items []item) (int, []string) {
	var errs []string
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		done := make(chan error, 1)

		start := time.Now()
		go func() {
			done <- it.fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				c.logger.Warnf("shutdown: %s failed after %s: %v", it.name, time.Since(start), err)
				errs = append(errs, fmt.Sprintf("[!] %s: %v", it.name, err))
				continue
			}
			c.logger.Infof("shutdown: %s closed in %s", it.name, time.Since(start))
		case <-ctx.Done():
			c.logger.Warnf("shutdown: deadline reached while closing %s, forcing %d remaining", it.name, i+1)
			return i, errs
		}
	}

	return allClosed, errs
}

func (c *Closer) forcedClose(items []item) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, it := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := it.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", it.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
