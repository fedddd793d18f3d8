// Settings loading for the screenforge CLI.
package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings keys in .screenforge.yaml. Flags with the same meaning override
// whatever the file says.
const (
	cfgKeySpec        = "spec"
	cfgKeyOutput      = "output"
	cfgKeyProjectDir  = "project_dir"
	cfgKeyPreviewAddr = "preview_addr"
	cfgKeyHistoryDB   = "history_db"
)

// loadSettings reads .screenforge.yaml from the working directory (or the
// file named by --config). A missing file is not an error; defaults apply.
func loadSettings() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeySpec, "openapi.json")
	v.SetDefault(cfgKeyOutput, "screens")
	v.SetDefault(cfgKeyProjectDir, ".")
	v.SetDefault(cfgKeyPreviewAddr, ":8637")
	v.SetDefault(cfgKeyHistoryDB, "screens/history.db")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".screenforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		if configFile == "" {
			// No explicit file requested; treat any read failure of the
			// conventional path as absence.
			return v, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return v, nil
}
