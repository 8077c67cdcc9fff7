package config

// EnvPrefix is the envconfig prefix shared by every BAWASA process.
const EnvPrefix = "bawasa"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BAWASA_DB_DSN"
	EnvDBHost = "BAWASA_DB_HOST"
	EnvDBUser = "BAWASA_DB_USER"
	EnvDBName = "BAWASA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
