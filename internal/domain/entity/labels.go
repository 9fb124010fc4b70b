package entity

import "fmt"

// Labels таблица имён классов модели, индекс совпадает с номером класса.
type Labels []string

// Name возвращает имя класса и признак того, что индекс существует.
func (l Labels) Name(classID int) (string, bool) {
	if classID < 0 || classID >= len(l) {
		return "", false
	}
	return l[classID], true
}

// Len число классов.
func (l Labels) Len() int {
	return len(l)
}

// IndexLabels строит таблицу вида "0", "1", ... для модели без файла имён.
func IndexLabels(n int) Labels {
	labels := make(Labels, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i)
	}
	return labels
}
