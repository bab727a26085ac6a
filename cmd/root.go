// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/poolhttpd/poolhttpd/cfg"
	"github.com/poolhttpd/poolhttpd/common"
	"github.com/poolhttpd/poolhttpd/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd accepts the serve function and returns the cobra command
// corresponding to the root command. serveFn is called with the validated
// and rationalized config.
func NewRootCmd(serveFn func(*cfg.Config) error) (*cobra.Command, error) {
	var (
		configObj cfg.Config
		cfgFile   string
		v         = viper.New()
	)

	rootCmd := &cobra.Command{
		Use:   "poolhttpd [flags]",
		Short: "Serve static files from a fixed-size pool of workers",
		Long: `poolhttpd accepts TCP connections and hands each one to a fixed-size
pool of workers. Every worker answers a single request line with the index
or not-found page from its document root.`,
		Version:      common.GetVersion(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(v, cfgFile, &configObj); err != nil {
				return err
			}
			return serveFn(&configObj)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "The path to the yaml config file. Flags take precedence over values in the file.")
	if err := cfg.BindFlags(v, rootCmd.PersistentFlags()); err != nil {
		return nil, fmt.Errorf("error while binding flags: %w", err)
	}

	return rootCmd, nil
}

func resolveConfig(v *viper.Viper, cfgFile string, c *cfg.Config) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error while reading the config file: %w", err)
		}
	}

	err := v.Unmarshal(c, viper.DecodeHook(cfg.DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})
	if err != nil {
		return fmt.Errorf("error while unmarshaling the config: %w", err)
	}

	if err := cfg.ValidateConfig(c); err != nil {
		return fmt.Errorf("error while validating the config: %w", err)
	}

	if err := cfg.Rationalize(c); err != nil {
		return fmt.Errorf("error while rationalizing the config: %w", err)
	}
	return nil
}

func Execute() {
	rootCmd, err := NewRootCmd(runServer)
	if err != nil {
		logger.Fatal("Error while creating the root command: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
