// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package check

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pocketsignal/toolkit/psdev/cmd"
)

// requiredDotEnvKeys are the secrets the bot cannot start without.
var requiredDotEnvKeys = []string{"SSID", "PO_EMAIL", "PO_PASSWORD"}

type dotenvChecker struct{}

func (dotenvChecker) Name() string {
	return "dotenv"
}

func (dotenvChecker) Description() string {
	return "Check that the workspace's .env file carries the bot's credentials"
}

func (dotenvChecker) Check(env *cmd.WorkspaceEnv) CheckResult {
	dotEnvPath := env.DotEnvPath()

	presentKeys, err := readDotEnvKeys(dotEnvPath)
	if err != nil {
		return CheckResult{
			Status: CheckFailed,
			Detail: fmt.Sprintf("could not read %s", dotEnvPath),
			Error:  err,
		}
	}

	var missingKeys []string
	for _, required := range requiredDotEnvKeys {
		if !presentKeys[required] {
			missingKeys = append(missingKeys, required)
		}
	}

	if len(missingKeys) > 0 {
		return CheckResult{
			Status: CheckFailed,
			Detail: fmt.Sprintf("%s is missing keys: %s", dotEnvPath, strings.Join(missingKeys, ", ")),
		}
	}

	return CheckResult{
		Status: CheckSucceeded,
		Detail: dotEnvPath,
	}
}

// readDotEnvKeys collects the key names assigned in a dotenv file. Values
// are deliberately discarded; they are credentials.
func readDotEnvKeys(dotEnvPath string) (map[string]bool, error) {
	f, err := os.Open(dotEnvPath)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	keys := map[string]bool{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if key != "" && strings.TrimSpace(value) != "" {
			keys[key] = true
		}
	}

	return keys, scanner.Err()
}

func init() {
	registerChecker(dotenvChecker{})
}
