package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const dotEnvSearchDepth = 6

// LoadDotEnv exports KEY=VALUE pairs from the nearest .env file in the
// working directory or its parents and returns its path. Variables already set
// in the environment win. It returns an empty path when there is no file.
func LoadDotEnv() (string, error) {
	path := findDotEnv()
	if path == "" {
		return "", nil
	}

	file, err := os.Open(path)
	if err != nil {
		return path, err
	}
	defer file.Close()

	if _, err := applyDotEnv(file, os.LookupEnv, os.Setenv); err != nil {
		return path, err
	}
	return path, nil
}

func findDotEnv() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for i := 0; i < dotEnvSearchDepth; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// applyDotEnv returns how many variables it set.
func applyDotEnv(r io.Reader, lookup func(string) (string, bool), set func(string, string) error) (int, error) {
	scanner := bufio.NewScanner(r)
	first := true
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		if _, exists := lookup(key); exists {
			continue
		}
		if err := set(key, unquote(strings.TrimSpace(value))); err != nil {
			return n, err
		}
		n++
	}
	return n, scanner.Err()
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
