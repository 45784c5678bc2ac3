package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pos-billing/internal/catalog"
)

type DB struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Pass     string `yaml:"password"`
	Name     string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type MQ struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	User  string `yaml:"user"`
	Pass  string `yaml:"password"`
	VHost string `yaml:"vhost"`
}

type HTTP struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// Storage points at an S3-compatible bucket (AWS, R2, MinIO) for receipts.
// Archiving is disabled when Bucket is empty.
type Storage struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type Auth struct {
	JWTSecret     string `yaml:"jwt_secret"`
	AdminUser     string `yaml:"admin_user"`
	AdminPassword string `yaml:"admin_password"`
}

// Shop is the header printed on every bill.
type Shop struct {
	CompanyName string `yaml:"company_name"`
	ShopName    string `yaml:"shop_name"`
	Address     string `yaml:"address"`
	Mobile      string `yaml:"mobile"`
	Mobile2     string `yaml:"mobile2"`
}

type Terminal struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	Location string `yaml:"location"`
}

type App struct {
	HTTP           HTTP           `yaml:"http"`
	Database       DB             `yaml:"database"`
	Rabbit         MQ             `yaml:"rabbitmq"`
	Storage        Storage        `yaml:"storage"`
	Auth           Auth           `yaml:"auth"`
	Shop           Shop           `yaml:"shop"`
	CurrencySymbol string         `yaml:"currency_symbol"`
	Terminal       Terminal       `yaml:"terminal"`
	Menu           catalog.Config `yaml:"menu"`
}

// Load reads the YAML file at path, overlays .env and POS_* variables and
// fills defaults. A missing menu section falls back to catalog.Default().
func Load(path string) (App, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (App, error) {
	_ = godotenv.Load()

	var a App
	if err := yaml.Unmarshal(b, &a); err != nil {
		return App{}, fmt.Errorf("failed to parse config: %w", err)
	}
	applyEnv(&a)
	applyDefaults(&a)
	return a, nil
}

// Defaults returns a configuration usable without any file, e.g. for the
// terminal pointed at a local billing service.
func Defaults() App {
	_ = godotenv.Load()
	var a App
	applyEnv(&a)
	applyDefaults(&a)
	return a
}

func applyDefaults(a *App) {
	if a.HTTP.Port == 0 {
		a.HTTP.Port = 8080
	}
	if a.Database.Port == 0 {
		a.Database.Port = 5432
	}
	if a.Database.SSLMode == "" {
		a.Database.SSLMode = "disable"
	}
	if a.Database.MaxConns == 0 {
		a.Database.MaxConns = 10
	}
	if a.Rabbit.Port == 0 {
		a.Rabbit.Port = 5672
	}
	if a.Rabbit.VHost == "" {
		a.Rabbit.VHost = "/"
	}
	if a.Storage.Region == "" {
		a.Storage.Region = "auto"
	}
	if a.Auth.AdminUser == "" {
		a.Auth.AdminUser = "admin"
	}
	if a.Shop == (Shop{}) {
		a.Shop = Shop{
			CompanyName: "ICEBERG",
			ShopName:    "Sri Krishna Bakery",
			Address:     "Your Shop Address here...",
			Mobile:      "9876543210",
		}
	}
	if a.CurrencySymbol == "" {
		a.CurrencySymbol = "₹"
	}
	if a.Terminal.Endpoint == "" {
		a.Terminal.Endpoint = "http://localhost:" + strconv.Itoa(a.HTTP.Port)
	}
	if len(a.Menu.Items) == 0 && len(a.Menu.Pickers) == 0 {
		a.Menu = catalog.DefaultConfig()
	}
}

func applyEnv(a *App) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&a.Database.Pass, "POS_DB_PASSWORD")
	set(&a.Rabbit.Pass, "POS_RABBIT_PASSWORD")
	set(&a.Auth.JWTSecret, "POS_JWT_SECRET")
	set(&a.Auth.AdminPassword, "POS_ADMIN_PASSWORD")
	set(&a.Storage.AccessKey, "POS_STORAGE_ACCESS_KEY")
	set(&a.Storage.SecretKey, "POS_STORAGE_SECRET_KEY")
	set(&a.Terminal.Token, "POS_API_TOKEN")
	set(&a.Terminal.Endpoint, "POS_API_ENDPOINT")
}

// ValidateService checks what billing-service needs to start.
func (a App) ValidateService() error {
	if a.Database.Host == "" || a.Database.User == "" || a.Database.Name == "" {
		return errors.New("invalid config: database host/user/database are required")
	}
	return nil
}

// ValidateSubscriber checks what notification-subscriber needs to start.
func (a App) ValidateSubscriber() error {
	if a.Rabbit.Host == "" || a.Rabbit.User == "" {
		return errors.New("invalid config: rabbitmq host/user are required")
	}
	return nil
}

func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
