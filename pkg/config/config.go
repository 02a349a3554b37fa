package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del cliente (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	API     APIConfig
	Pagos   PagosConfig
	Storage StorageConfig
	Polling PollingConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// APIConfig apunta al backend REST de la ferretería.
type APIConfig struct {
	BaseURL         string        // ej. http://127.0.0.1:8000/api
	CheckoutTimeout time.Duration // timeout dedicado del checkout (el resto de llamadas no lo llevan)
}

// PagosConfig identificadores de terceros para los flujos de pago e identidad federada.
// El cliente solo transporta estos IDs; la captura PayPal y la verificación Google
// ocurren en los servicios externos.
type PagosConfig struct {
	PayPalClientID string
	GoogleClientID string
}

// StorageConfig almacenamiento local durable (token, perfil y carrito de invitado).
type StorageConfig struct {
	Dir string
}

// PollingConfig intervalos de los refrescadores de fondo.
type PollingConfig struct {
	MonitorPedidos time.Duration // alerta de pedidos nuevos en el panel
	Dashboard      time.Duration // métricas del dashboard
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo .env).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, STORAGE_DIR, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "ferreteria-cliente"),
		},
		API: APIConfig{
			BaseURL:         getString(v, "API_BASE_URL", "http://127.0.0.1:8000/api"),
			CheckoutTimeout: getDuration(v, "API_CHECKOUT_TIMEOUT_SECONDS", 15*time.Second),
		},
		Pagos: PagosConfig{
			PayPalClientID: getString(v, "PAYPAL_CLIENT_ID", ""),
			GoogleClientID: getString(v, "GOOGLE_CLIENT_ID", ""),
		},
		Storage: StorageConfig{
			Dir: getString(v, "STORAGE_DIR", defaultStorageDir()),
		},
		Polling: PollingConfig{
			MonitorPedidos: getDuration(v, "POLL_MONITOR_SECONDS", 30*time.Second),
			Dashboard:      getDuration(v, "POLL_DASHBOARD_SECONDS", 60*time.Second),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: API_BASE_URL vacío")
	}

	return cfg, nil
}

func defaultStorageDir() string {
	return ".ferreteria"
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return time.Duration(v.GetInt(key)) * time.Second
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return time.Duration(n) * time.Second
		default:
			return time.Duration(v.GetInt(key)) * time.Second
		}
	}
	return def
}
