package main

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
}
