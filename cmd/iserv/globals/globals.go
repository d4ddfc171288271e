package globals

import (
	"context"
	"iserv-client/internal/components/telemetry"
)

type SmtpConfig struct {
	Server string `json:"server"`
	Port   int    `json:"port"`
	// Security is one of "tls", "starttls" or "none".
	Security string `json:"security"`
}

type WebdavConfig struct {
	Host string `json:"host"`
	Root string `json:"root"`
}

type Config struct {
	Host     string `json:"host"`
	Username string `json:"username"`
	// Password is looked up in the keyring when empty.
	Password          string  `json:"password"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	// Timeout in seconds of every portal request.
	Timeout    int    `json:"timeout"`
	Timezone   string `json:"timezone"`
	KeyringDir string `json:"keyring_dir"`

	Smtp      SmtpConfig       `json:"smtp"`
	Webdav    WebdavConfig     `json:"webdav"`
	Telemetry telemetry.Config `json:"telemetry"`
}

type ctxKey int

const key ctxKey = 0

type Value struct {
	Config Config
	Tel    telemetry.API
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key).(*Value)
}
