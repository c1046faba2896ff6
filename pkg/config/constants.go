package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "DISTRIGAS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DISTRIGAS_DB_DSN"
	EnvDBHost = "DISTRIGAS_DB_HOST"
	EnvDBUser = "DISTRIGAS_DB_USER"
	EnvDBName = "DISTRIGAS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
