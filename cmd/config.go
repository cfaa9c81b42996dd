package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	NotifySharedSecret   string        `env:"NOTIFY_SHARED_SECRET,required=true"`
	TokenSigningKey      string        `env:"TOKEN_SIGNING_KEY"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=128"`
	InboxTTL             time.Duration `env:"INBOX_TTL,default=720h"`
	StatsInterval        time.Duration `env:"STATS_INTERVAL,default=1m"`
	StorageGCInterval    time.Duration `env:"STORAGE_GC_INTERVAL,default=10m"`
}
