// Package config loads env-tagged structs from the process environment, with
// an optional .env bootstrap for local development. Each config type is
// parsed once and cached, so packages can declare their own Config struct
// and call Load without coordinating startup order.
//
//	type Config struct {
//		ConnURL string `env:"PG_CONN_URL,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
package config
