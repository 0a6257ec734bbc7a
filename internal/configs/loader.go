package configs

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig is the process-wide effective configuration, set once at
// startup by filex.LoadConfig from NewConfigFromTomlFile's result.
var AppConfig *Config

// NewConfigFromTomlFile loads TOML configuration at tomlPath over top of
// NewDefaultConfig's defaults. A missing file is not an error: the
// defaults apply as-is (the caller is expected to have already written the
// embedded default template on first run).
func NewConfigFromTomlFile(tomlPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(NewDefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("configs: loading defaults: %w", err)
	}

	if err := k.Load(file.Provider(tomlPath), toml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("configs: loading TOML file %q: %w", tomlPath, err)
		}
	}

	cfg := &Config{}
	unmarshalConf := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result: cfg,
		},
	}
	if err := k.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("configs: unmarshalling config: %w", err)
	}

	return cfg, nil
}
