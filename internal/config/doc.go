// Package config загружает настройки процессов и определение дашборда.
//
// Настройки берутся из переменных окружения (env.go). Определение
// дашборда — из файла (.yaml/.yml/.json через yaml.v3, .hcl через gohcl)
// или из PostgreSQL, если источник задан как "db:<имя>".
//
//	settings, err := config.FromEnv()
//	def, err := config.LoadDefinition(ctx, settings.ConfigSource, store)
//	dash, err := engine.Resolve(def)
package config
