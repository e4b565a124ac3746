package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
)

// ConfigurationLoaderSettings describes how configuration files and environment overrides are discovered.
type ConfigurationLoaderSettings struct {
	ConfigurationName string
	ConfigurationType string
	EnvironmentPrefix string
	SearchPaths       []string
}

// ConfigurationLoader wraps Viper to load structured configuration files and environment overrides.
type ConfigurationLoader struct {
	settings              ConfigurationLoaderSettings
	keyReplacer           *strings.Replacer
	embeddedConfiguration []byte
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader honoring the provided settings.
func NewConfigurationLoader(settings ConfigurationLoaderSettings) *ConfigurationLoader {
	duplicatedSearchPaths := make([]string, len(settings.SearchPaths))
	copy(duplicatedSearchPaths, settings.SearchPaths)
	settings.SearchPaths = duplicatedSearchPaths

	return &ConfigurationLoader{
		settings:    settings,
		keyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// SetEmbeddedConfiguration stores embedded configuration data merged before user-provided configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// LoadConfiguration populates targetConfiguration using configuration files, defaults, and environment variables.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.settings.ConfigurationName)
	viperInstance.SetConfigType(loader.settings.ConfigurationType)

	if len(loader.embeddedConfiguration) > 0 {
		mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration))
		if mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
	}

	for _, searchPath := range loader.settings.SearchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.settings.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(loader.keyReplacer)
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	if readError != nil {
		if _, isNotFound := readError.(viper.ConfigFileNotFoundError); !isNotFound {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	unmarshalError := viperInstance.Unmarshal(targetConfiguration)
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
