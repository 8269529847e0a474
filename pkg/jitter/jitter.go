// Package jitter добавляет случайность к интервалам повторов, чтобы параллельные
// повторы (например, очистка файлов после отката) не били в хранилище одновременно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter: стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

// Duration возвращает d с джиттером в диапазоне [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// ExponentialBackoff вычисляет задержку перед попыткой attempt (с нуля):
// base удваивается на каждой попытке, но не превышает max; затем применяется джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, factor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= max {
			backoff = max
			break
		}
	}

	return Duration(backoff, factor)
}
