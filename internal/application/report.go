package app

import (
	"fmt"
	"io"
	"path/filepath"

	"detect-runner/internal/domain/entity"
)

const (
	msgModelLoaded    = "Modelo %s carregado com sucesso.\n"
	msgModelLoadError = "ERRO ao carregar o modelo: %v\n"
	msgModelLoadHint  = "Verifique se o arquivo %s está no diretório correto.\n"
	msgStart          = "Iniciando a detecção na imagem: %s\n"
	msgResultsHeader  = "\n--- Resultados da Detecção ---\n"
	msgTotal          = "Total de objetos detectados: %d\n"
	msgObject         = "- Objeto: %s, Confiança: %.2f\n"
	msgSaved          = "\nA imagem com as detecções foi salva na pasta '%s' no seu projeto.\n"
)

// Summarize печатает число объектов и по строке на каждый объект с именем класса и уверенностью.
// Имена берутся из таблицы модели; если индекс ей неизвестен, используется имя из самой детекции.
func Summarize(w io.Writer, result *entity.ResultSet, names entity.Labels) {
	fmt.Fprint(w, msgResultsHeader)
	fmt.Fprintf(w, msgTotal, result.Count())
	if result == nil {
		return
	}

	for _, d := range result.Detections {
		name, ok := names.Name(d.ClassID)
		if !ok {
			name = d.Name
		}
		fmt.Fprintf(w, msgObject, name, entity.ClampConfidence(d.Confidence))
	}
}

// SavedNotice печатает, в какой каталог сохранена размеченная картинка.
func SavedNotice(w io.Writer, savedPath string) {
	fmt.Fprintf(w, msgSaved, filepath.Dir(savedPath)+string(filepath.Separator))
}
