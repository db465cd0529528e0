package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override (GAA_SOURCE_KIND...).
const EnvPrefix = "GAA"

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	validate *validator.Validate
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{validate: validator.New()}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON sobre os valores padrão.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	config := types.DefaultConfig()
	if filePath == "" {
		return config, nil
	}

	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return config, nil
}

// ApplyEnvironment sobrescreve a configuração com variáveis GAA_*.
func (r *ConfigRepositoryImpl) ApplyEnvironment(cfg *types.Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}
	return nil
}

// Validate verifica a configuração final e lista todos os campos inválidos.
func (r *ConfigRepositoryImpl) Validate(cfg *types.Config) error {
	err := r.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", types.ErrInvalidConfig, strings.Join(problems, "; "))
}
