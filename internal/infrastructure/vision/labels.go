package vision

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"detect-runner/internal/domain/entity"
)

// datasetFile часть data.yaml, описывающая классы.
type datasetFile struct {
	Names yaml.Node `yaml:"names"`
}

// LoadLabels читает имена классов из data.yaml (список или словарь индекс: имя)
// либо из текстового файла, по одному имени на строку.
func LoadLabels(path string) (entity.Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseDatasetYAML(data)
	default:
		return parseLabelLines(data)
	}
}

func parseDatasetYAML(data []byte) (entity.Labels, error) {
	var ds datasetFile
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse labels yaml: %w", err)
	}

	switch ds.Names.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := ds.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("decode names list: %w", err)
		}
		if len(names) == 0 {
			return nil, errors.New("names list is empty")
		}
		return entity.Labels(names), nil

	case yaml.MappingNode:
		var byIndex map[int]string
		if err := ds.Names.Decode(&byIndex); err != nil {
			return nil, fmt.Errorf("decode names map: %w", err)
		}
		labels := make(entity.Labels, len(byIndex))
		for idx, name := range byIndex {
			if idx < 0 || idx >= len(labels) {
				return nil, fmt.Errorf("names map is not contiguous: index %d of %d", idx, len(labels))
			}
			labels[idx] = name
		}
		if len(labels) == 0 {
			return nil, errors.New("names map is empty")
		}
		return labels, nil

	default:
		return nil, errors.New("labels yaml has no names")
	}
}

func parseLabelLines(data []byte) (entity.Labels, error) {
	var labels entity.Labels
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			labels = append(labels, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, errors.New("labels file is empty")
	}
	return labels, nil
}
