package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	RedisAddr string `env:"REDIS_ADDR"`
	AmqpURL   string `env:"AMQP_URL"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" default:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM" default:"Home Rental <no-reply@homerental.local>"`

	UploadDir string `env:"UPLOAD_DIR" default:"uploads"`
}
