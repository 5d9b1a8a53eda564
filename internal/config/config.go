package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	APIBaseURL  string
	DBDSN       string
	LogFile     string
	HTTPTimeout int // seconds, outbound requests to the commerce API
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}
	api := os.Getenv("API_BASE_URL")
	if api == "" {
		api = "http://localhost:8080/api/v1"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "sentryhome.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./sentryhome.log" // default log sink in project root
	}
	timeout := 10
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}

	cfg := Config{Port: port, APIBaseURL: api, DBDSN: dsn, LogFile: logFile, HTTPTimeout: timeout}
	log.Printf("[config] PORT=%s API_BASE_URL=%s DB_DSN=%s LOG_FILE=%s HTTP_TIMEOUT=%ds",
		cfg.Port, cfg.APIBaseURL, cfg.DBDSN, cfg.LogFile, cfg.HTTPTimeout)
	return cfg
}
