package block

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlBlockFile - формат файла с дополнительными определениями блоков
//
//	namespace: mymod
//	blocks:
//	  - name: glass
//	    solid: true
//	    hardness: 0.3
type yamlBlockFile struct {
	Namespace string `yaml:"namespace"`
	Blocks    []struct {
		Name     string  `yaml:"name"`
		Solid    bool    `yaml:"solid"`
		Hardness float64 `yaml:"hardness"`
	} `yaml:"blocks"`
}

// LoadYAML регистрирует блоки из YAML файла. Возвращает число добавленных блоков.
func LoadYAML(r *Registry, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return LoadYAMLBytes(r, data)
}

// LoadYAMLBytes регистрирует блоки из YAML документа
func LoadYAMLBytes(r *Registry, data []byte) (int, error) {
	var file yamlBlockFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("block definitions: %w", err)
	}

	ns := file.Namespace
	if ns == "" {
		ns = Namespace
	}

	added := 0
	for _, b := range file.Blocks {
		if _, err := r.Register(Definition{Namespace: ns, Name: b.Name, Solid: b.Solid, Hardness: b.Hardness}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
