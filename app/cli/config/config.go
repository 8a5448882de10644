package config

type Config struct {
	IsProd                bool   // production mode: json logs
	DBConnectionString    string // Postgres connection string
	RedisConnectionString string // Redis URL, shares the server's profile cache
}
