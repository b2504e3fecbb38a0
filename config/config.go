package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Server is the API process configuration.
type Server struct {
	Port string `envconfig:"PORT" default:"8080"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"mysql"`
	MySQLURL   string `envconfig:"MYSQL_URL"`
	DBURL      string `envconfig:"DATABASE_URL"`
	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPass     string `envconfig:"DB_PASS"`
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBName     string `envconfig:"DB_NAME" default:"retreat"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"retreat.db"`
	DBLogLevel string `envconfig:"DB_LOG_LEVEL" default:"warn"`

	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"12h"`

	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin@retreat.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"retreat.bookings"`
}

// Client configures retreatctl and any other API consumer. Variables carry the
// RETREAT_ prefix, e.g. RETREAT_API_URL.
type Client struct {
	APIURL        string        `envconfig:"API_URL" default:"http://localhost:5000/api"`
	Token         string        `envconfig:"TOKEN"`
	TokenFile     string        `envconfig:"TOKEN_FILE"`
	Timeout       time.Duration `envconfig:"TIMEOUT" default:"30s"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"1"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
}

// ReadDotEnv loads .env from the working directory into the environment;
// variables already set win. A missing file yields an fs.ErrNotExist error.
func ReadDotEnv() error {
	return godotenv.Load()
}

// LoadDotEnv reads .env when present and only logs when it cannot.
func LoadDotEnv() {
	if err := ReadDotEnv(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}
}

func LoadServer() (Server, error) {
	var c Server
	err := envconfig.Process("", &c)
	return c, err
}

func LoadClient() (Client, error) {
	var c Client
	err := envconfig.Process("retreat", &c)
	return c, err
}
