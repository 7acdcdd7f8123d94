package config

import (
	"github.com/estatedesk/estatedesk/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Assets    Assets
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string // domain name for the webserver
	Port         int    // listening port for the webserver
	ShutDownTime int    // wait time for shutdown
	URL          string // base url for the webserver
}

// Auth holds token authentication settings.
type Auth struct {
	Secret        string // HMAC secret used to sign bearer tokens
	TokenTTLHours int    // token lifetime in hours
}

// Assets holds file upload settings.
type Assets struct {
	Root string // root directory for uploaded files, served under /uploads
}
