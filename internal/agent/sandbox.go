package agent

import "os"

const containerWorkdir = "/workspace"

// sandboxCommand wraps the agent binary and its args in a container invocation:
// mounts workingDirectory at /workspace, sets -w, forwards the
// agent's API-key env var (discovered from the environment or an
// agent-specific credentials file), and uses --rm.
func sandboxCommand(kind Kind, workingDirectory string, args []string) (string, []string) {
	dockerArgs := []string{
		"run", "--rm",
		"-v", workingDirectory + ":" + containerWorkdir,
		"-w", containerWorkdir,
	}

	if envName := kind.apiKeyEnvName(); envName != "" {
		if val := discoverAPIKey(kind, envName); val != "" {
			dockerArgs = append(dockerArgs, "-e", envName+"="+val)
		}
	}

	dockerArgs = append(dockerArgs, kind.binaryName())
	dockerArgs = append(dockerArgs, args...)
	return "docker", dockerArgs
}

// discoverAPIKey looks up the agent's API key in the environment first,
// falling back to an agent-specific credentials file under the user's
// config directory (e.g. ~/.claude/credentials for claude).
func discoverAPIKey(kind Kind, envName string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := home + "/." + string(kind) + "/credentials"
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return trimNewline(string(data))
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
