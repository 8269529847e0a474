package domain

// FirstFreeID возвращает первый свободный id после занятого: наименьшее n, такое что n-1 есть
// среди ids, а n нет. Для пустого списка возвращается 1. Пропуск перед наименьшим id не
// заполняется: для {2, 3} результат 4.
// ids должны быть отсортированы по возрастанию; значения <= 0 пропускаются.
// Результат носит рекомендательный характер: id не резервируется, и параллельная
// вставка с тем же id завершится нарушением уникальности.
func FirstFreeID(ids []int64) int64 {
	var last int64
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if last > 0 && id != last+1 {
			return last + 1
		}
		last = id
	}

	return last + 1
}
