package settings

import (
	"bufio"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var Settings *AppSettings

func NewSettings() *AppSettings {
	settings := AppSettings{
		Domain:         getEnvOrDefault("TAGSHIP_DOMAIN", "localhost"),
		Port:           getEnvOrDefault("TAGSHIP_PORT", ":8080"),
		SQLiteDatabase: getEnvOrDefault("TAGSHIP_DB_PATH", "file:.///db.sqlite"),
		WorkspaceRoot:  getEnvOrDefault("TAGSHIP_WORKSPACE_ROOT", "workspaces"),
		WebhookKey:     os.Getenv("TAGSHIP_WEBHOOK_KEY"),
		GitHubToken:    os.Getenv("TAGSHIP_GITHUB_TOKEN"),
		GitSSHKeyPath:  os.Getenv("TAGSHIP_GIT_SSH_KEY"),
		GitSSHUser:     getEnvOrDefault("TAGSHIP_GIT_SSH_USER", "git"),
		RetentionHost:  os.Getenv("TAGSHIP_RETENTION_HOST"),
		RetentionUser:  os.Getenv("TAGSHIP_RETENTION_USER"),
		RetentionKey:   os.Getenv("TAGSHIP_RETENTION_KEY"),
		RetentionDir:   getEnvOrDefault("TAGSHIP_RETENTION_DIR", "artifacts"),
	}
	if !strings.HasPrefix(settings.Port, ":") {
		settings.Port = ":" + settings.Port
	}
	return &settings
}

func getEnvOrDefault(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

type AppSettings struct {
	SQLiteDatabase string
	Domain         string
	Port           string
	WorkspaceRoot  string
	WebhookKey     string
	GitHubToken    string
	GitSSHKeyPath  string
	GitSSHUser     string
	RetentionHost  string
	RetentionUser  string
	RetentionKey   string
	RetentionDir   string
}

func (as *AppSettings) BaseURL() string {
	if as.Domain == "localhost" {
		return fmt.Sprintf("http://%s%s", as.Domain, as.Port)
	} else {
		return fmt.Sprintf("https://%s", as.Domain)
	}
}

func (as *AppSettings) SQLiteDbString(readonly bool) string {
	params := make(url.Values)
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	params.Add("_synchronous", "NORMAL")
	params.Add("_cache_size", "-20000")
	params.Add("_foreign_keys", "ON")
	if readonly {
		params.Add("mode", "ro")
	} else {
		params.Add("_txlock", "IMMEDIATE")
		params.Add("mode", "rwc")
	}

	return as.SQLiteDatabase + "?" + params.Encode()
}

func ReadDotenv(path string) {
	re := regexp.MustCompile(`^[^0-9][A-Z0-9_]+=.+$`)
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] != '#' && re.Match(line) {
			split := strings.Split(string(line), "=")
			name := strings.TrimSpace(split[0])
			value := strings.TrimSpace(split[1])
			value = strings.Trim(value, `"`)
			if err := os.Setenv(name, value); err != nil {
				log.Println("err setting env variable: ", err)
			}
		}
	}
}
