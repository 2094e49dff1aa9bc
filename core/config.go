package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the application, loaded once at start up.
type Config struct {
	Env              string
	Debug            bool
	TestMode         bool
	AppName          string
	Build            string
	WorkDir          string
	SecretKey        string
	FrontendBaseURL  string
	RollbarToken     string
	SendgridApiKey   string
	NotifyTeams      bool
	defaultFromEmail string

	Server struct {
		Host               string
		DebugHost          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		OverdueSweep       time.Duration
	}

	Database struct {
		Engine     string // memory | firestore | postgres
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}

	Identity struct {
		Provider       string // firebase | google | static
		GoogleClientID string
	}

	Redis struct {
		Address  string
		Password string
		DB       int
	}

	Overlay struct {
		TTL time.Duration
	}

	Sync struct {
		BaseURL string
	}
}

// DefaultFromEmail parses the configured sender address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

// DatabaseAddress returns the postgres host:port pair.
func (c *Config) DatabaseAddress() string {
	return c.Database.Host + ":" + c.Database.Port
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "collaBoard")
	conf.SetDefault("build", "develop")
	conf.SetDefault("secretKey", "k1x#v9-q)2m@hd7s!wq0=ye4%b*r8u6t^j3$zl5&nc+gp")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "collaBoard <noreply@localhost>")
	conf.SetDefault("notifyTeams", false)
	conf.SetDefault("server.host", ":5000")
	conf.SetDefault("server.debugHost", ":5001")
	conf.SetDefault("server.jwtExpirationDelta", 12*time.Hour)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.overdueSweep", 15*time.Minute)
	conf.SetDefault("database.engine", "memory")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "collaboard")
	conf.SetDefault("database.user", "postgres")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("firebase.projectID", "")
	conf.SetDefault("firebase.credentialsFile", "")
	conf.SetDefault("identity.provider", "static")
	conf.SetDefault("identity.googleClientID", "")
	conf.SetDefault("redis.address", "")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)
	conf.SetDefault("overlay.ttl", 8*time.Hour)
	conf.SetDefault("sync.baseURL", "wss://sync.collaboard.local/connect")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		WorkDir:          wd,
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		NotifyTeams:      conf.GetBool("notifyTeams"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
	}

	c.Server.Host = conf.GetString("server.host")
	c.Server.DebugHost = conf.GetString("server.debugHost")
	c.Server.JWTExpirationDelta = conf.GetDuration("server.jwtExpirationDelta")
	c.Server.ShutdownTimeout = conf.GetDuration("server.shutdownTimeout")
	c.Server.OverdueSweep = conf.GetDuration("server.overdueSweep")

	c.Database.Engine = conf.GetString("database.engine")
	c.Database.Host = conf.GetString("database.host")
	c.Database.Port = conf.GetString("database.port")
	c.Database.Name = conf.GetString("database.name")
	c.Database.User = conf.GetString("database.user")
	c.Database.Password = conf.GetString("database.password")
	c.Database.DisableTLS = conf.GetBool("database.disableTLS")

	c.Firebase.ProjectID = conf.GetString("firebase.projectID")
	c.Firebase.CredentialsFile = conf.GetString("firebase.credentialsFile")

	c.Identity.Provider = conf.GetString("identity.provider")
	c.Identity.GoogleClientID = conf.GetString("identity.googleClientID")

	c.Redis.Address = conf.GetString("redis.address")
	c.Redis.Password = conf.GetString("redis.password")
	c.Redis.DB = conf.GetInt("redis.db")

	c.Overlay.TTL = conf.GetDuration("overlay.ttl")
	c.Sync.BaseURL = conf.GetString("sync.baseURL")

	return c
}
