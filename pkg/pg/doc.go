// Package pg wires up the PostgreSQL layer: a pgxpool connection pool with
// retry on startup, goose schema migrations, a health check closure, and
// error classification helpers for the stores built on top.
//
// Configuration comes from environment variables via the Config struct:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		panic(err)
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		panic(err)
//	}
//	defer pool.Close()
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		panic(err)
//	}
package pg
