package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MCP client flavours understood by ClientConfig.
const (
	ClientClaudeDesktop = "claude-desktop"
	ClientStandard      = "standard"
)

// DefaultServerName is the key specforge registers under in client configs.
const DefaultServerName = "specforge"

// ServerEntry is one MCP server launch definition.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
}

// ClientConfig builds the JSON document a client expects. Claude Desktop keys
// servers under "mcpServers"; the standard layout uses "servers" plus a
// logging block.
func ClientConfig(client, name string, entry ServerEntry) (map[string]interface{}, error) {
	if entry.Args == nil {
		entry.Args = []string{}
	}
	switch client {
	case ClientClaudeDesktop:
		return map[string]interface{}{
			"mcpServers": map[string]ServerEntry{name: entry},
		}, nil
	case ClientStandard:
		return map[string]interface{}{
			"servers": map[string]ServerEntry{name: entry},
			"logging": map[string]string{"level": "info"},
		}, nil
	default:
		return nil, fmt.Errorf("config: unknown MCP client %q", client)
	}
}

// ClientConfigLocations lists where a client keeps its config on goos, most
// specific first.
func ClientConfigLocations(client, goos, home string, getenv func(string) string) []string {
	switch client {
	case ClientClaudeDesktop:
		switch goos {
		case "windows":
			if appdata := getenv("APPDATA"); appdata != "" {
				return []string{filepath.Join(appdata, "Claude", "claude_desktop_config.json")}
			}
			return nil
		case "darwin":
			return []string{filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")}
		default:
			return []string{
				filepath.Join(home, ".config", "claude", "claude_desktop_config.json"),
				filepath.Join(home, ".claude", "claude_desktop_config.json"),
			}
		}
	case ClientStandard:
		return []string{
			filepath.Join(home, ".mcp", "config.json"),
			filepath.Join(home, ".config", "mcp", "config.json"),
		}
	}
	return nil
}

// ClientCheck reports whether a client config file registers a server.
type ClientCheck struct {
	Path       string
	Found      bool
	ServerName string
	Entry      *ServerEntry
}

// VerifyClientConfig reads a client config at path and looks for name under
// the key the client uses.
func VerifyClientConfig(client, path, name string) (*ClientCheck, error) {
	key := "servers"
	switch client {
	case ClientClaudeDesktop:
		key = "mcpServers"
	case ClientStandard:
	default:
		return nil, fmt.Errorf("config: unknown MCP client %q", client)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	check := &ClientCheck{Path: path}
	raw, ok := doc[key]
	if !ok {
		return check, nil
	}
	var servers map[string]ServerEntry
	if err := json.Unmarshal(raw, &servers); err != nil {
		return nil, fmt.Errorf("config: parse %s %q: %w", path, key, err)
	}
	if entry, ok := servers[name]; ok {
		check.Found = true
		check.ServerName = name
		check.Entry = &entry
	}
	return check, nil
}
