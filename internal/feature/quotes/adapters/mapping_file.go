package adapters

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"market_backend/internal/feature/quotes/domain/entity"
)

// mappingFile は SYMBOL_MAPPING_FILE の形式です。
//
//	providers:
//	  finnhub:
//	    SPX: "^GSPC"
type mappingFile struct {
	Providers map[string]map[string]string `yaml:"providers"`
}

// LoadSymbolMapping は既定のマッピングに YAML ファイルの内容を上書きして返します。
// path が空の場合は既定のマッピングのみを返します。
func LoadSymbolMapping(path string) (entity.SymbolMapping, error) {
	base := entity.DefaultSymbolMapping()
	if path == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbol mapping %s: %w", path, err)
	}
	var f mappingFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse symbol mapping %s: %w", path, err)
	}
	return base.Merge(f.Providers), nil
}
