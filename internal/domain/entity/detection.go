package entity

// BoundingBox прямоугольник объекта в пикселях исходного изображения
type BoundingBox struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
}

// Center возвращает координаты центра рамки
func (b BoundingBox) Center() (x, y int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Area возвращает площадь рамки
func (b BoundingBox) Area() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Detection один найденный объект
type Detection struct {
	ClassID    int         // индекс класса в таблице меток модели
	Name       string      // человекочитаемое имя класса
	Confidence float64     // уверенность в диапазоне [0,1]
	Box        BoundingBox // рамка объекта
}

// ClampConfidence приводит значение уверенности к диапазону [0,1].
func ClampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
