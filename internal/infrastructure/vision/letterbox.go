package vision

import (
	"math"

	"detect-runner/internal/domain/entity"
)

// PadValue цвет полей при вписывании изображения во вход сети.
const PadValue = 114

// Letterbox описывает вписывание изображения в квадратный вход сети с сохранением пропорций.
type Letterbox struct {
	SrcWidth  int
	SrcHeight int
	Size      int     // сторона входа сети
	Scale     float64 // коэффициент масштабирования исходника
	NewWidth  int     // размер после масштабирования
	NewHeight int
	PadLeft   int
	PadTop    int
	PadRight  int
	PadBottom int
}

// NewLetterbox рассчитывает масштаб и поля для изображения srcW x srcH.
func NewLetterbox(srcW, srcH, size int) Letterbox {
	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	newW := int(math.Round(float64(srcW) * scale))
	newH := int(math.Round(float64(srcH) * scale))
	padW := size - newW
	padH := size - newH

	return Letterbox{
		SrcWidth:  srcW,
		SrcHeight: srcH,
		Size:      size,
		Scale:     scale,
		NewWidth:  newW,
		NewHeight: newH,
		PadLeft:   padW / 2,
		PadTop:    padH / 2,
		PadRight:  padW - padW/2,
		PadBottom: padH - padH/2,
	}
}

// ToSource переводит рамку из координат входа сети в пиксели исходника и обрезает её по краям.
func (l Letterbox) ToSource(x1, y1, x2, y2 float64) entity.BoundingBox {
	sx1 := clamp((x1-float64(l.PadLeft))/l.Scale, 0, float64(l.SrcWidth))
	sy1 := clamp((y1-float64(l.PadTop))/l.Scale, 0, float64(l.SrcHeight))
	sx2 := clamp((x2-float64(l.PadLeft))/l.Scale, 0, float64(l.SrcWidth))
	sy2 := clamp((y2-float64(l.PadTop))/l.Scale, 0, float64(l.SrcHeight))

	x := int(math.Round(sx1))
	y := int(math.Round(sy1))
	return entity.BoundingBox{
		X:      x,
		Y:      y,
		Width:  int(math.Round(sx2)) - x,
		Height: int(math.Round(sy2)) - y,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
