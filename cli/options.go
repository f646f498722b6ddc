package cli

import (
	"os"
	"path/filepath"
)

// Options defines the command line of the pollbase tool.
type Options struct {
	URL         string `short:"u" long:"url" description:"pollbase project url"`
	APIKey      string `short:"k" long:"api-key" description:"pollbase project api key"`
	Credentials string `short:"c" long:"credentials" description:"oauth2 client config file"`
	Key         string `long:"key" description:"encryption key"`
	SessionFile string `short:"s" long:"session-file" description:"where to persist the session"`
	Email       string `short:"e" long:"email" description:"account email"`
	Password    string `short:"p" long:"password" description:"account password"`
	Port        int    `long:"port" description:"port for the serve command" default:"8787"`

	Args struct {
		Command string `positional-arg-name:"command" description:"register | login | logout | whoami | watch | polls | serve"`
	} `positional-args:"yes" required:"yes"`
}

// EnvConfig carries settings read from the process environment, usually
// loaded from a .env file.
type EnvConfig struct {
	URL         string `env:"POLLBASE_URL"`
	APIKey      string `env:"POLLBASE_API_KEY"`
	Credentials string `env:"POLLBASE_CREDENTIALS_URL"`
	SessionFile string `env:"POLLBASE_SESSION_FILE"`
}

// applyEnv fills options the command line left empty and defaults the
// session file to the user's home directory.
func (o *Options) applyEnv(cfg *EnvConfig) {
	if o.URL == "" {
		o.URL = cfg.URL
	}
	if o.APIKey == "" {
		o.APIKey = cfg.APIKey
	}
	if o.Credentials == "" {
		o.Credentials = cfg.Credentials
	}
	if o.SessionFile == "" {
		o.SessionFile = cfg.SessionFile
	}
	if o.SessionFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			o.SessionFile = filepath.Join(home, ".pollbase", "session.json")
		}
	}
}
