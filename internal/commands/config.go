/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/microsoft/pydevd-adapter/internal/pydevd"
)

const (
	PYDEVD_ADDRESS         = "PYDEVD_ADDRESS"
	PYDEVD_REQUEST_TIMEOUT = "PYDEVD_REQUEST_TIMEOUT"

	defaultAddress = "127.0.0.1:5678"

	addressFlagName        = "address"
	requestTimeoutFlagName = "request-timeout"
	envFileFlagName        = "env-file"
)

var configEnvVars = []string{PYDEVD_ADDRESS, PYDEVD_REQUEST_TIMEOUT}

// readEnvironment returns the configuration variables from the env files, overridden by
// the process environment.
func readEnvironment(envFiles []string) (map[string]string, error) {
	env := map[string]string{}
	if len(envFiles) > 0 {
		fileEnv, err := godotenv.Read(envFiles...)
		if err != nil {
			return nil, fmt.Errorf("could not read env files %v: %w", envFiles, err)
		}
		env = fileEnv
	}

	for _, name := range configEnvVars {
		if value, found := os.LookupEnv(name); found {
			env[name] = value
		}
	}
	return env, nil
}

type connectConfig struct {
	Address        string
	RequestTimeout time.Duration
}

// resolveConnectConfig applies explicitly set flags first, then environment values, then defaults.
func resolveConnectConfig(flags *pflag.FlagSet, env map[string]string) (connectConfig, error) {
	cfg := connectConfig{
		Address:        defaultAddress,
		RequestTimeout: pydevd.DefaultRequestTimeout,
	}

	if value := env[PYDEVD_ADDRESS]; value != "" {
		cfg.Address = value
	}
	if value := env[PYDEVD_REQUEST_TIMEOUT]; value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s value %q: %w", PYDEVD_REQUEST_TIMEOUT, value, err)
		}
		cfg.RequestTimeout = timeout
	}

	if flags.Changed(addressFlagName) {
		address, err := flags.GetString(addressFlagName)
		if err != nil {
			return cfg, err
		}
		cfg.Address = address
	}
	if flags.Changed(requestTimeoutFlagName) {
		timeout, err := flags.GetDuration(requestTimeoutFlagName)
		if err != nil {
			return cfg, err
		}
		cfg.RequestTimeout = timeout
	}

	if cfg.RequestTimeout <= 0 {
		return cfg, fmt.Errorf("request timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return cfg, nil
}
