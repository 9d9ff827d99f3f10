package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type BaseShader int

const (
	ShaderEmission BaseShader = iota
	ShaderPrincipled
	ShaderExperimental
)

func ParseBaseShader(name string) (BaseShader, error) {
	switch name {
	case "", "Emission":
		return ShaderEmission, nil
	case "Principled":
		return ShaderPrincipled, nil
	case "Experimental":
		return ShaderExperimental, nil
	default:
		return ShaderEmission, errors.Errorf("Unknown base shader %q", name)
	}
}

func (s BaseShader) String() string {
	switch s {
	case ShaderPrincipled:
		return "Principled"
	case ShaderExperimental:
		return "Experimental"
	default:
		return "Emission"
	}
}

// Settings are the knobs of one import run.
type Settings struct {
	MergeVerts     bool    `yaml:"mergeVerts"`
	MergeDistance  float32 `yaml:"mergeDistance"`
	MakeQuads      bool    `yaml:"makeQuads"`
	QuadAngle      float32 `yaml:"quadAngle"`
	UseCollections bool    `yaml:"useCollections"`
	BaseShader     string  `yaml:"baseShader"`
	Encoding       string  `yaml:"encoding"`
}

func DefaultSettings() Settings {
	return Settings{
		MergeDistance:  0.00001,
		QuadAngle:      5.0,
		UseCollections: true,
		BaseShader:     ShaderEmission.String(),
	}
}

var currentSettings = DefaultSettings()

func GetSettings() Settings {
	return currentSettings
}

func SetSettings(s Settings) {
	currentSettings = s
}

func LoadSettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to read settings %q", path)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return errors.Wrapf(err, "Failed to parse settings %q", path)
	}
	if s.Encoding != "" {
		if err := SetEncoding(s.Encoding); err != nil {
			return err
		}
	}
	currentSettings = s
	return nil
}
